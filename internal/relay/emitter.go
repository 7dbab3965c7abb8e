package relay

import (
	"math"

	"github.com/txrelay/simnet/internal/simconfig"
)

// scheduleFirstEmitterTick starts the per-second emission clock of spec.md
// §4.4 at t=5s.
func (n *Node) scheduleFirstEmitterTick() {
	delay := 5.0 - n.sched.Now()
	if delay < 0 {
		delay = 0
	}
	n.sched.Schedule(delay, n.emitterTick)
}

// emitterTick is the scheduled once-a-second decision of spec.md §4.4: emit
// a new transaction with probability r/E, where r is this minute's
// configured network-wide rate and E is the fixed emitter-population
// constant (simconfig.TxEmitters).
func (n *Node) emitterTick() {
	defer n.sched.Schedule(1.0, n.emitterTick)

	if n.warmDown() {
		// "A tx emitter stops emitting once it has entered its warm-down
		// window" (spec.md §4.4).
		return
	}

	minute := int(math.Floor(n.sched.Now() / 60))
	r := n.cfg.RateAt(minute)
	if r <= 0 {
		return
	}
	span := int(float64(simconfig.TxEmitters) / r)
	if span <= 0 {
		span = 1
	}
	if n.rng.Intn(span) != 0 {
		return
	}

	n.txSeq++
	tx := NewTxID(n.ID, n.txSeq)
	n.stats.TxCreated++
	n.recordNewTx(tx, "")
	n.advertiseInv(tx, "", 0)
}
