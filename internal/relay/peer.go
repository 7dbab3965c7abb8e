package relay

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/txrelay/simnet/internal/gossip"
)

// PeerID addresses a peer within a node's peer table. Real addressing
// (IP:port, enode URL, ...) is the topology generator's concern (spec.md
// §1's out-of-scope collaborator); the core only needs a comparable handle.
type PeerID string

// Direction records which side of the edge a peer sits on, per spec.md §3:
// "peers = out_peers ∪ in_peers; disjoint".
type Direction int

const (
	Outbound Direction = iota
	Inbound
)

// Receiver is the minimal transport surface the core consumes (spec.md §1's
// "ordered reliable byte-streams per directed peer edge with
// application-level framing" collaborator). A Node satisfies it.
type Receiver interface {
	ReceiveBytes(from PeerID, data []byte)
}

// PeerRecord is peer_record[peer] of spec.md §3.
type PeerRecord struct {
	Addr      PeerID
	Direction Direction

	// LearnedMode is the remote's mode, learned from its Mode announce.
	LearnedMode int
	learnedMode bool

	remote Receiver
	dec    *gossip.Decoder

	// ReconSet is recon_set[p]: the outbound reconciliation buffer for this
	// peer.
	ReconSet *orderedTxSet

	// KnownByPeer is the set of TxIDs this peer is known to already have,
	// via an INV sent to it or received from it (spec.md §3, §4.2).
	// deckarep/golang-set is the teacher corpus's own set type for this
	// exact field (celo-blockchain/eth/peer.go's knownTxs).
	KnownByPeer mapset.Set

	// lastInvScheduled paces outbound STANDARD-protocol sends (spec.md
	// §4.2): "the node keeps a monotonic next-send timestamp per outbound
	// edge".
	lastInvScheduled float64
}

func newPeerRecord(addr PeerID, dir Direction, remote Receiver) *PeerRecord {
	return &PeerRecord{
		Addr:        addr,
		Direction:   dir,
		remote:      remote,
		dec:         &gossip.Decoder{},
		ReconSet:    newOrderedTxSet(),
		KnownByPeer: mapset.NewThreadUnsafeSet(),
	}
}

// send encodes and writes msg onto this peer's byte stream, accounting the
// snappy-compressed size of the record against stats.BandwidthBytes — the
// simulator's bandwidth estimate (spec.md §1/§6).
func (p *PeerRecord) send(msg gossip.Message, self PeerID, stats *NodeStats) error {
	data, err := gossip.Encode(msg)
	if err != nil {
		return err
	}
	stats.BandwidthBytes += int64(gossip.CompressedSize(data))
	p.remote.ReceiveBytes(self, data)
	return nil
}
