package relay

import (
	"github.com/txrelay/simnet/internal/gossip"
	"github.com/txrelay/simnet/internal/simconfig"
	"github.com/txrelay/simnet/log"
)

// ReceiveBytes implements Receiver: it feeds the sender's per-peer decode
// buffer and dispatches every complete record parsed out of it. This is the
// "on-receive handler" installed at Running entry (spec.md §4.5).
func (n *Node) ReceiveBytes(from PeerID, data []byte) {
	p, ok := n.peers[from]
	if !ok {
		log.Warn("relay: bytes from unknown peer", "node", n.ID, "from", from)
		return
	}
	if n.state != Running {
		return
	}
	for _, msg := range p.dec.Feed(data) {
		n.handleMessage(from, p, msg)
	}
}

func (n *Node) handleMessage(from PeerID, p *PeerRecord, msg gossip.Message) {
	switch msg.Tag {
	case gossip.ModeTag:
		p.LearnedMode = msg.Mode
		p.learnedMode = true

	case gossip.InvTag:
		if n.Mode == BlackHole {
			// A black hole never emits after startup, but it still may
			// receive INVs; per spec.md §3 it simply never re-relays. We
			// still perform the bookkeeping steps of spec.md §4.5 that
			// apply to every node, then stop short of dispatch.
			n.handleIncomingInv(from, p, msg, true)
			return
		}
		n.handleIncomingInv(from, p, msg, false)

	case gossip.ReqTag:
		if n.Mode == BlackHole {
			// Black holes never send RECONCILE_RESP after startup
			// (spec.md §3).
			return
		}
		n.handleReconcileReq(from, p, msg.SetSize)

	case gossip.RespTag:
		n.handleReconcileResp(from, p, msg.Transactions)
	}
}

// handleIncomingInv is spec.md §4.5's incoming-INV handler, applied per
// TxId in msg.Inv. suppressDispatch is set for BLACK_HOLE nodes, which do
// the bookkeeping but never re-advertise.
func (n *Node) handleIncomingInv(from PeerID, p *PeerRecord, msg gossip.Message, suppressDispatch bool) {
	isRecon := msg.Hop == simconfig.ReconHop
	for _, tx := range msg.Inv {
		// Step 1: on-the-fly collision diagnostic.
		if p.KnownByPeer.Contains(tx) {
			n.stats.onTheFlyCollisions++
		}
		// Step 2: classify and mark known-by-peer, clear any pending recon
		// entry for this edge (an INV crossing the edge removes it,
		// spec.md §3's invariant and §4.3's membership maintenance).
		if isRecon {
			n.stats.ReconInvReceivedMessages++
		} else {
			n.stats.InvReceivedMessages++
		}
		p.KnownByPeer.Add(tx)
		if n.cfg.ReconciliationMode != simconfig.ReconOff {
			p.ReconSet.Remove(tx)
		}

		// Step 3: duplicate detection.
		if n.knownTx.Contains(tx) {
			if isRecon {
				n.stats.ReconUselessInvReceivedMessages++
			} else {
				n.stats.UselessInvReceivedMessages++
			}
			continue
		}
		// Step 4: first sighting.
		n.recordNewTx(tx, from)
		if !suppressDispatch {
			n.advertiseInv(tx, from, msg.Hop+1)
		}
	}
}
