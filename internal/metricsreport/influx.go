// Package metricsreport optionally exports a completed run's summary as
// InfluxDB line-protocol points, grounded on the teacher's own metrics
// stack (github.com/influxdata/influxdb/client/v2), used the way the
// teacher's metrics/influxdb.go pushes counters to an external time-series
// store rather than printing them.
package metricsreport

import (
	"time"

	client "github.com/influxdata/influxdb/client/v2"

	"github.com/txrelay/simnet/internal/report"
	"github.com/txrelay/simnet/log"
)

// Config holds the connection details for an optional InfluxDB exporter.
type Config struct {
	Addr     string
	Database string
	Username string
	Password string
}

// Exporter pushes Summary snapshots to an InfluxDB instance.
type Exporter struct {
	client client.Client
	db     string
}

// NewExporter opens an HTTP client against the configured InfluxDB server.
// It does not verify connectivity eagerly; the first Export call surfaces
// any connection error.
func NewExporter(cfg Config) (*Exporter, error) {
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	return &Exporter{client: c, db: cfg.Database}, nil
}

// Export writes one batch point for the run summary and one point per
// latency-histogram bucket, tagged with the run ID so multiple runs can
// share a database without clobbering each other. at is the wall-clock
// time the run finished; the simulator's own virtual clock has no relation
// to real time, so InfluxDB timestamps are derived from at rather than
// from any scheduler value.
func (e *Exporter) Export(s report.Summary, at time.Time) error {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{Database: e.db})
	if err != nil {
		return err
	}

	totals, err := client.NewPoint("run_totals", map[string]string{"run": s.RunID}, map[string]interface{}{
		"tx_created":         s.TxCreated,
		"inv_messages":       s.InvMessages,
		"useless_inv":        s.UselessInv,
		"recon_inv_messages": s.ReconInvMessages,
		"recon_useless_inv":  s.ReconUselessInv,
		"reconciliations":    s.Reconciliations,
		"bandwidth_bytes":    s.BandwidthBytes,
	}, at)
	if err != nil {
		return err
	}
	bp.AddPoint(totals)

	for i, count := range s.Latency {
		p, err := client.NewPoint("latency_histogram",
			map[string]string{"run": s.RunID, "bucket": itoa(i)},
			map[string]interface{}{"count": count},
			at.Add(time.Duration(i)*time.Second))
		if err != nil {
			return err
		}
		bp.AddPoint(p)
	}

	if err := e.client.Write(bp); err != nil {
		log.Error("metricsreport: failed to write batch", "err", err)
		return err
	}
	return nil
}

// Close releases the underlying HTTP client's resources.
func (e *Exporter) Close() error { return e.client.Close() }

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [12]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
