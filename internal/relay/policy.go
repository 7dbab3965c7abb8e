package relay

import (
	"math"

	"github.com/txrelay/simnet/internal/gossip"
	"github.com/txrelay/simnet/internal/simconfig"
)

// advertiseInv is on_first_sighting(tx, from_peer, hop) of spec.md §4.2: it
// dispatches according to the configured protocol.
func (n *Node) advertiseInv(tx gossip.TxID, from PeerID, hop int) {
	switch n.cfg.Protocol {
	case simconfig.PreferredOut:
		n.selectAndSchedule(from, tx, hop, n.outPeers, n.cfg.LowfanoutOrderOut)

	case simconfig.PreferredAll:
		n.selectAndSchedule(from, tx, hop, n.outPeers, n.cfg.LowfanoutOrderOut)
		n.selectAndSchedule(from, tx, hop, n.inPeers, n.cfg.LowfanoutOrderInPercent)

	case simconfig.DandelionMapping:
		// Reserved no-op variant: the original ns-3 model never wired this
		// branch's logic either (SPEC_FULL.md §4, spec.md §9 Open
		// Questions). Kept distinct from Standard so callers can observe
		// the stub explicitly rather than silently behaving like Standard.

	case simconfig.FiltersOnIncoming, simconfig.OutgoingFilters:
		// No FILTER_REQUEST/bloom-filter logic exists in original_source/
		// either; per spec.md §9's "do not guess intent" directive these
		// fall back to Standard (SPEC_FULL.md §4). Unlike DandelionMapping,
		// which relays nothing, they do advertise the tx.
		n.advertiseInvStandard(tx, from, hop)

	default: // Standard
		n.advertiseInvStandard(tx, from, hop)
	}
}

func (n *Node) advertiseInvStandard(tx gossip.TxID, from PeerID, hop int) {
	for addr, p := range n.peers {
		if addr == from {
			continue
		}
		var d float64
		if p.Direction == Outbound {
			d = n.poissonIncoming(p, float64(n.cfg.InvIntervalSeconds)/2)
		} else {
			d = n.poissonSample(float64(n.cfg.InvIntervalSeconds))
		}
		delay := 0.1 + d
		addrCopy, hopCopy := addr, hop
		n.sched.Schedule(delay, func() { n.sendInv(addrCopy, tx, hopCopy) })
	}
}

// selectAndSchedule is select_and_schedule(from, tx, hop, candidates, k) of
// spec.md §4.2, grounded on the original model's
// AdvertiseNewTransactionInv/ChooseFromPeers: it picks up to k distinct
// peers from candidates (skipping from, peers already picked in this call,
// the peers at the ends of the reconcile_peers queue as of the last
// rotation, and peers already known to have tx), scheduling one send_inv per
// pick. It stops early, with fewer than k picks, once len(candidates) draws
// in a row have been skipped.
func (n *Node) selectAndSchedule(from PeerID, tx gossip.TxID, hop int, candidates []PeerID, k int) {
	if len(candidates) < k || k <= 0 {
		return
	}
	tries := len(candidates)
	toRelay := k
	picked := make(map[PeerID]bool, k)
	for toRelay > 0 {
		p := candidates[n.rng.Intn(len(candidates))]
		p2 := n.peers[p]
		skip := p == from || picked[p] ||
			p == n.lastRotationHead || p == n.lastRotationTail ||
			(p2 != nil && p2.KnownByPeer.Contains(tx))
		if skip {
			tries--
			if tries == 0 {
				return
			}
			continue
		}
		delay := 0.1 + n.poissonSample(float64(n.cfg.InvIntervalSeconds))
		addrCopy := p
		n.sched.Schedule(delay, func() { n.sendInv(addrCopy, tx, hop) })
		picked[p] = true
		toRelay--
		tries = len(candidates)
	}
}

// sendInv is send_inv(p, tx, hop) of spec.md §4.2, executed at the
// scheduled time.
func (n *Node) sendInv(addr PeerID, tx gossip.TxID, hop int) {
	p, ok := n.peers[addr]
	if !ok {
		return
	}
	if p.KnownByPeer.Contains(tx) {
		return // late de-duplication
	}
	if err := p.send(gossip.InvMessage([]gossip.TxID{tx}, hop), n.selfAddr(), n.stats); err != nil {
		return
	}
	p.KnownByPeer.Add(tx)
	if n.cfg.ReconciliationMode != simconfig.ReconOff {
		p.ReconSet.Remove(tx)
	}
}

// poissonSample draws round(-ln(1-u)*lambda) for u uniform on [0,1),
// spec.md §4.2.
func (n *Node) poissonSample(lambda float64) float64 {
	if lambda <= 0 {
		return 0
	}
	u := n.rng.Float64()
	d := math.Round(-math.Log1p(-u) * lambda)
	if d < 0 {
		d = 0
	}
	return d
}

// poissonIncoming enforces the per-outbound-edge monotonic pacing of
// spec.md §4.2: d = max(0, last_inv_scheduled[p] - now + PoissonSample(λ)),
// and then advances last_inv_scheduled[p].
func (n *Node) poissonIncoming(p *PeerRecord, lambda float64) float64 {
	now := n.sched.Now()
	d := p.lastInvScheduled - now + n.poissonSample(lambda)
	if d < 0 {
		d = 0
	}
	p.lastInvScheduled = now + d
	return d
}
