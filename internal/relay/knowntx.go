package relay

import (
	"github.com/txrelay/simnet/internal/gossip"
	"github.com/txrelay/simnet/internal/simconfig"
	"github.com/txrelay/simnet/log"
)

// recordNewTx is SaveTxData + AddToReconciliationSets from the original
// ns-3 model, spec.md §4.3's membership maintenance and §4.5 step 4: a
// TxId is inserted into known_tx at most once per node (spec.md §3's
// invariant) — violating that is a programming error and crashes.
func (n *Node) recordNewTx(tx gossip.TxID, from PeerID) {
	if n.knownTx.Contains(tx) {
		log.Crit("relay: tx recorded twice", "node", n.ID, "tx", hexTxID(tx))
	}
	n.knownTx.Add(tx)
	n.stats.TxReceived++
	n.stats.TxReceivedTimes = append(n.stats.TxReceivedTimes, TxReceivedTime{
		NodeID: int(n.ID),
		TxHash: tx,
		TxTime: n.sched.Now(),
	})
	if n.Mode == Spy && !n.spySeen {
		n.spySeen = true
		n.stats.FirstSpySuccess = n.sched.Now()
	}

	if n.cfg.ReconciliationMode == simconfig.ReconOff {
		// RECON_OFF: recon_set is never mutated (spec.md §8).
		return
	}
	if n.warmDown() {
		// Warm-down window: new txs are not added to reconciliation sets
		// (spec.md §4.3).
		return
	}
	fromMode := -1
	if from != "" {
		if p, ok := n.peers[from]; ok {
			fromMode = p.LearnedMode
		}
	}
	if fromMode == int(BlackHole) {
		// "On learning a new tx (from any source except black-hole
		// peers)" (spec.md §4.3) — a tx learned from a black hole still
		// gets recorded above, but does not seed reconciliation sets.
		return
	}
	for addr, p := range n.peers {
		if addr == from {
			continue
		}
		if p.LearnedMode == int(BlackHole) {
			continue
		}
		p.ReconSet.Add(tx)
	}
}
