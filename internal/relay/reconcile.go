package relay

import (
	"container/list"
	"math"

	"github.com/txrelay/simnet/internal/gossip"
	"github.com/txrelay/simnet/internal/simconfig"
)

// reconcileInterval is the node-local reconciliation period of spec.md
// §4.3: reconciliationIntervalSeconds × (|peers| / |out_peers|).
func (n *Node) reconcileInterval() float64 {
	total := len(n.outPeers) + len(n.inPeers)
	if len(n.outPeers) == 0 {
		return float64(n.cfg.ReconciliationIntervalSeconds)
	}
	return float64(n.cfg.ReconciliationIntervalSeconds) * float64(total) / float64(len(n.outPeers))
}

func (n *Node) scheduleFirstReconciliation() {
	delay := 10.0 - n.sched.Now()
	if delay < 0 {
		delay = 0
	}
	n.sched.Schedule(delay, n.initiateReconciliation)
}

// initiateReconciliation is spec.md §4.3's scheduled initiator: it fires
// once per reconcileInterval and always reschedules itself; the scheduler
// drops the rescheduled event once it would land at or after t_stop.
func (n *Node) initiateReconciliation() {
	defer n.sched.Schedule(n.reconcileInterval(), n.initiateReconciliation)

	switch n.cfg.ReconciliationMode {
	case simconfig.TimeBased:
		n.initiateTimeBased()
	case simconfig.SetSizeBased:
		n.initiateSetSizeBased()
	default:
		// RECON_OFF: nothing to do here, but keep the rescheduling loop
		// alive in case the mode changes mid-run is ever supported.
		// recordNewTx, handleIncomingInv and sendInv all guard their
		// ReconSet mutations on ReconciliationMode != ReconOff, so
		// recon_set stays empty for the whole run (spec.md §8).
	}
}

// initiateTimeBased is the TIME_BASED branch of spec.md §4.3.
func (n *Node) initiateTimeBased() {
	if n.reconcilePeers.Len() == 0 {
		return
	}
	n.lastRotationHead = n.reconcilePeers.Front().Value.(PeerID)
	n.lastRotationTail = n.reconcilePeers.Back().Value.(PeerID)

	elem := n.reconcilePeers.Front()
	peer := n.popRotate(elem)
	if n.cfg.BlackHoleDetection {
		tries := n.reconcilePeers.Len()
		for n.peers[peer] != nil && n.peers[peer].LearnedMode == int(BlackHole) && tries > 0 {
			elem = n.reconcilePeers.Front()
			peer = n.popRotate(elem)
			tries--
		}
	}
	n.sendReconcileReq(peer)
}

// popRotate removes elem from the head of reconcilePeers and pushes its
// value back to the tail, returning the peer id.
func (n *Node) popRotate(elem *list.Element) PeerID {
	peer := elem.Value.(PeerID)
	n.reconcilePeers.Remove(elem)
	n.reconcileElem[peer] = n.reconcilePeers.PushBack(peer)
	return peer
}

// initiateSetSizeBased is the SET_SIZE_BASED branch of spec.md §4.3.
func (n *Node) initiateSetSizeBased() {
	for e := n.reconcilePeers.Front(); e != nil; e = e.Next() {
		peer := e.Value.(PeerID)
		p := n.peers[peer]
		if p != nil && p.ReconSet.Len() > simconfig.ReconMaxSetSize {
			n.sendReconcileReq(peer)
			return
		}
	}
	// No peer exceeds the threshold: reschedule (handled by the caller's
	// defer) and send nothing.
}

func (n *Node) sendReconcileReq(peer PeerID) {
	p, ok := n.peers[peer]
	if !ok {
		return
	}
	msg := gossip.ReconcileReqMessage(p.ReconSet.Len())
	p.send(msg, n.selfAddr(), n.stats)
}

// handleReconcileReq is the responder of spec.md §4.3.
func (n *Node) handleReconcileReq(from PeerID, p *PeerRecord, setSize int) {
	_ = setSize
	delay := n.poissonSample(2)
	n.sched.Schedule(delay, func() { n.respond(from, p) })
}

func (n *Node) respond(from PeerID, p *PeerRecord) {
	txs := p.ReconSet.Snapshot()
	msg := gossip.ReconcileRespMessage(txs)
	if err := p.send(msg, n.selfAddr(), n.stats); err != nil {
		return
	}
	for _, tx := range txs {
		p.KnownByPeer.Add(tx)
	}
	p.ReconSet.Clear()
}

// handleReconcileResp is the initiator-on-response of spec.md §4.3.
func (n *Node) handleReconcileResp(from PeerID, p *PeerRecord, resp []gossip.TxID) {
	a := p.ReconSet.Snapshot()
	aSet := make(map[gossip.TxID]struct{}, len(a))
	for _, tx := range a {
		aSet[tx] = struct{}{}
	}
	bSet := make(map[gossip.TxID]struct{}, len(resp))
	for _, tx := range resp {
		bSet[tx] = struct{}{}
	}

	var iMiss, heMiss []gossip.TxID
	for _, tx := range resp {
		if _, inA := aSet[tx]; !inA && !n.knownTx.Contains(tx) {
			iMiss = append(iMiss, tx)
		}
	}
	for _, tx := range a {
		if _, inB := bSet[tx]; !inB {
			heMiss = append(heMiss, tx)
		}
	}

	for _, tx := range iMiss {
		n.recordNewTx(tx, from)
	}
	for _, tx := range heMiss {
		txCopy := tx
		n.sched.Schedule(0.1, func() { n.sendInv(from, txCopy, simconfig.ReconHop) })
	}
	p.ReconSet.Clear()

	sA, sB := len(a), len(resp)
	diffSize := len(iMiss) + len(heMiss)
	estimate := estimateDifference(sA, sB, n.prevA) + n.cfg.QEstimationMultiplier

	if sA*sB != 0 && estimate >= float64(sA+sB) {
		n.prevA = (float64(diffSize) - math.Abs(float64(sA-sB))) / math.Min(float64(sA), float64(sB))
	}

	if !n.warmDown() {
		n.stats.recordReconcil(ReconcilRecord{
			NodeID:        int(n.ID),
			SetInSize:     sB,
			SetOutSize:    sA,
			DiffSize:      diffSize,
			EstimatedDiff: int(math.Round(estimate)),
		})
	}
}

// estimateDifference is approx(sA,sB,a) = |sA-sB| + a*min(sA,sB) of
// spec.md §4.3.
func estimateDifference(sA, sB int, a float64) float64 {
	return math.Abs(float64(sA-sB)) + a*math.Min(float64(sA), float64(sB))
}
