package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/txrelay/simnet/internal/scheduler"
	"github.com/txrelay/simnet/internal/simconfig"
)

func TestEmitterTickAlwaysFiresWhenRateEqualsEmitterCount(t *testing.T) {
	cfg := simconfig.Defaults
	cfg.TransactionRates = map[int]float64{0: float64(simconfig.TxEmitters)}
	sched := scheduler.New(1000)
	n := NewNode(1, TxEmitter, &cfg, sched, 0)

	n.emitterTick()

	assert.EqualValues(t, 1, n.stats.TxCreated)
	assert.EqualValues(t, 1, n.txSeq)
	assert.True(t, n.knownTx.Contains(NewTxID(1, 1)))
}

func TestEmitterTickNoEmissionWhenRateIsZero(t *testing.T) {
	cfg := simconfig.Defaults
	cfg.TransactionRates = map[int]float64{0: 0}
	sched := scheduler.New(1000)
	n := NewNode(1, TxEmitter, &cfg, sched, 0)

	n.emitterTick()

	assert.EqualValues(t, 0, n.stats.TxCreated)
}

func TestEmitterTickSkipsDuringWarmDown(t *testing.T) {
	cfg := simconfig.Defaults
	cfg.TransactionRates = map[int]float64{0: float64(simconfig.TxEmitters)}
	sched := scheduler.New(10) // now(0)+TimeNotToCount(20) > stopAt(10): warm-down from the start
	n := NewNode(1, TxEmitter, &cfg, sched, 0)

	n.emitterTick()

	assert.EqualValues(t, 0, n.stats.TxCreated)
}

func TestScheduleFirstEmitterTickStartsAtFive(t *testing.T) {
	cfg := simconfig.Defaults
	cfg.TransactionRates = map[int]float64{0: float64(simconfig.TxEmitters)}
	sched := scheduler.New(1000)
	n := NewNode(1, TxEmitter, &cfg, sched, 0)

	n.scheduleFirstEmitterTick()

	assert.Equal(t, 1, sched.Pending())

	// With rate == TxEmitters every tick emits, so the first tx's receive
	// time is the time of the first tick.
	sched.Run()
	if assert.NotEmpty(t, n.stats.TxReceivedTimes) {
		assert.Equal(t, 5.0, n.stats.TxReceivedTimes[0].TxTime)
	}
}
