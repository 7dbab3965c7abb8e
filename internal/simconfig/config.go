// Package simconfig contains the configuration of the relay simulator.
// It follows the same shape as the teacher's probeconfig package: a plain
// Config struct, a Defaults value, and a TOML loader built on the teacher's
// own config-file library (github.com/naoina/toml).
package simconfig

import (
	"os"

	"github.com/naoina/toml"
)

// Protocol indexes the relay dispatch strategy, per spec.md §4.2 / §6.
type Protocol int

const (
	Standard Protocol = iota
	FiltersOnIncoming
	OutgoingFilters
	PreferredOut
	PreferredAll
	DandelionMapping
)

// ReconciliationMode indexes the reconciliation initiation strategy.
type ReconciliationMode int

const (
	ReconOff ReconciliationMode = iota
	TimeBased
	SetSizeBased
)

// Constants fixed by spec.md §6.
const (
	TxEmitters               = 200
	ReconMaxSetSize          = 1600
	DandelionRotationSeconds = 1000
	DiffsDistrSize           = 350
	ReconHop                 = 999
	TimeNotToCount           = 20.0 // seconds, warm-down window before t_stop
	Granularity              = 20   // latency-table steps, spec.md §6
)

// Config holds every option spec.md §6 recognizes, plus the ambient fields
// (transaction-rate table, partition count) that a runnable repo needs but
// the distilled spec leaves as an external "global mutable constant"
// (spec.md §9's design note on transactionRates[]).
type Config struct {
	Nodes               int `toml:"nodes"`
	MinConnections      int `toml:"minConnections"`
	MaxConnections      int `toml:"maxConnections"`
	SimulTime           uint64 `toml:"simulTime"`
	PublicIPNodes       int `toml:"publicIPNodes"`

	Protocol           Protocol           `toml:"protocol"`
	ReconciliationMode ReconciliationMode `toml:"reconciliationMode"`

	InvIntervalSeconds            int `toml:"invIntervalSeconds"`
	ReconciliationIntervalSeconds int `toml:"reconciliationIntervalSeconds"`

	BlackHoles int `toml:"blackHoles"`

	LowfanoutOrderOut       int `toml:"lowfanoutOrderOut"`
	LowfanoutOrderInPercent int `toml:"lowfanoutOrderInPercent"`

	LoopAccomodation    int     `toml:"loopAccomodation"`
	QEstimationMultiplier float64 `toml:"qEstimationMultiplier"`

	// BlackHoleDetection gates the TIME_BASED initiator's skip-black-hole-peer
	// behavior described in spec.md §4.3.
	BlackHoleDetection bool `toml:"blackHoleDetection"`

	// TransactionRates maps a simulation minute (floor(now/60)) to the
	// network-wide emission rate in tx/s, spec.md §4.4.
	TransactionRates map[int]float64 `toml:"-"`

	// Partitions is the number of scheduler workers the cross-partition
	// layer should run (spec.md §5); the core is oblivious to this value.
	Partitions int `toml:"partitions"`
}

// Defaults mirrors probeconfig.Defaults: a reasonable Config to start from.
var Defaults = Config{
	Nodes:          100,
	MinConnections: 8,
	MaxConnections: 12,
	SimulTime:      600,
	PublicIPNodes:  20,

	Protocol:           Standard,
	ReconciliationMode: ReconOff,

	InvIntervalSeconds:            5,
	ReconciliationIntervalSeconds: 8,

	BlackHoles: 0,

	LowfanoutOrderOut:       2,
	LowfanoutOrderInPercent: 2,

	LoopAccomodation:      0,
	QEstimationMultiplier: 3,

	BlackHoleDetection: true,
	Partitions:         1,
}

// RateAt returns the configured target emission rate for the given minute,
// falling back to the rate of the latest configured minute before it, or 0
// if no configured minute is at or before it.
func (c *Config) RateAt(minute int) float64 {
	if r, ok := c.TransactionRates[minute]; ok {
		return r
	}
	best := -1
	var rate float64
	for m, r := range c.TransactionRates {
		if m <= minute && m > best {
			best = m
			rate = r
		}
	}
	return rate
}

// Load reads a TOML config file and overlays it onto Defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
