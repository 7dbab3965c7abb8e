// Package relay implements the per-node relay state machine and the
// pairwise set-reconciliation protocol of spec.md §§2-6: the core this
// whole repository exists to simulate.
package relay

import (
	"container/list"
	"math/rand"

	mapset "github.com/deckarep/golang-set"

	"github.com/txrelay/simnet/internal/gossip"
	"github.com/txrelay/simnet/internal/simconfig"
	"github.com/txrelay/simnet/internal/scheduler"
	"github.com/txrelay/simnet/log"
)

// Mode is a node's operating mode, spec.md §3. Spy is an addition recovered
// from original_source/ (see SPEC_FULL.md §4) — it behaves exactly like
// Regular except that it also timestamps the first transaction it ever
// observes into NodeStats.FirstSpySuccess.
type Mode int

const (
	Regular Mode = iota
	TxEmitter
	BlackHole
	Spy
)

// State is the node lifecycle of spec.md §3: "Initializing → Running →
// Stopped".
type State int

const (
	Initializing State = iota
	Running
	Stopped
)

// Node is one simulated peer: the owner of its peer table, known-tx index,
// reconciliation sets, and relay/emitter policy. All per-node state is
// exclusively owned by that node (spec.md §5) — Node never reaches into
// another Node's fields directly, only through the Receiver interface.
type Node struct {
	ID    uint32
	Mode  Mode
	state State

	cfg   *simconfig.Config
	sched *scheduler.Scheduler
	rng   *rand.Rand

	outPeers []PeerID
	inPeers  []PeerID
	peers    map[PeerID]*PeerRecord

	knownTx mapset.Set

	prevA float64

	// reconcilePeers is the round-robin deque of spec.md §4.3. A doubly
	// linked deque is the natural container/list fit for "pop head, push
	// tail" rotation; no pack library offers a deque primitive (see
	// DESIGN.md).
	reconcilePeers *list.List
	reconcileElem  map[PeerID]*list.Element
	// lastRotationHead and lastRotationTail are the (head, tail) pair captured at the last
	// TIME_BASED rotation, used by select_and_schedule to avoid racing a
	// reconciliation exchange (spec.md §4.2).
	lastRotationHead, lastRotationTail PeerID

	txSeq uint32 // per-emitter sequence counter, spec.md §3

	stats *NodeStats

	spySeen bool

	systemID int
}

// NewNode constructs a Node in state Initializing. Real peer discovery and
// link properties come from the topology generator (spec.md §1's
// out-of-scope collaborator); the caller wires outPeers/inPeers via AddPeer
// after construction.
func NewNode(id uint32, mode Mode, cfg *simconfig.Config, sched *scheduler.Scheduler, systemID int) *Node {
	n := &Node{
		ID:            id,
		Mode:          mode,
		state:         Initializing,
		cfg:           cfg,
		sched:         sched,
		rng:           rand.New(rand.NewSource(int64(id)*2654435761 + 1)),
		peers:         make(map[PeerID]*PeerRecord),
		knownTx:       mapset.NewThreadUnsafeSet(),
		prevA:         aEstimatorInitial,
		reconcilePeers: list.New(),
		reconcileElem: make(map[PeerID]*list.Element),
		systemID:      systemID,
	}
	n.stats = newNodeStats(int(id), int(mode), systemID)
	return n
}

// aEstimatorInitial is A_ESTIMATOR of spec.md §3: prev_a's starting value.
const aEstimatorInitial = 1.0

// AddPeer registers a peer edge. dir must be Outbound or Inbound; a peer
// appears in at most one of the two (spec.md §3's peer-set invariant is
// maintained by construction since the caller supplies disjoint lists).
func (n *Node) AddPeer(addr PeerID, dir Direction, remote Receiver) {
	rec := newPeerRecord(addr, dir, remote)
	n.peers[addr] = rec
	switch dir {
	case Outbound:
		n.outPeers = append(n.outPeers, addr)
		n.reconcileElem[addr] = n.reconcilePeers.PushBack(addr)
	case Inbound:
		n.inPeers = append(n.inPeers, addr)
	}
	n.stats.Connections++
}

// Start transitions Initializing → Running: opens connections (a no-op
// here since AddPeer already wired the Receiver references), announces
// this node's mode to every peer, and schedules the first emitter tick and
// reconciliation initiation (spec.md §4.5).
func (n *Node) Start() {
	n.state = Running
	for addr, p := range n.peers {
		if err := p.send(gossip.ModeMessage(int(n.Mode)), n.selfAddr(), n.stats); err != nil {
			log.Error("relay: failed to announce mode", "node", n.ID, "peer", addr, "err", err)
		}
	}
	if n.Mode == BlackHole {
		// A black hole sends its announce and then goes silent forever
		// (spec.md §3's invariant): no emitter tick, no reconciliation.
		return
	}
	if n.Mode == TxEmitter {
		n.scheduleFirstEmitterTick()
	}
	if n.cfg.ReconciliationMode != simconfig.ReconOff && len(n.outPeers) > 0 {
		n.scheduleFirstReconciliation()
	}
}

// Stop transitions the node to Stopped. The scheduler itself discards any
// event landing at or after t_stop (spec.md §5); Stop exists so callers can
// assert on lifecycle state.
func (n *Node) Stop() { n.state = Stopped }

func (n *Node) selfAddr() PeerID { return PeerID(nodeAddr(n.ID)) }

func nodeAddr(id uint32) string {
	// A small, deterministic address scheme. selfAddr uses it to name the
	// sender on every outgoing message and the receiver looks the sender up
	// by that id, so peers must be registered under "node-<id>" — the scheme
	// the in-repo reference Network (internal/relay/network.go) uses.
	return "node-" + itoa(id)
}

func itoa(id uint32) string {
	if id == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = byte('0' + id%10)
		id /= 10
	}
	return string(buf[i:])
}

// Stats returns the node's live statistics record. Callers must not mutate
// the TxReceivedTimes/ReconcilData slices it returns except by appending
// through Node's own methods.
func (n *Node) Stats() *NodeStats { return n.stats }

// warmDown reports whether now+TIME_NOT_TO_COUNT has crossed t_stop
// (spec.md §4.3, §4.4).
func (n *Node) warmDown() bool {
	return n.sched.Now()+simconfig.TimeNotToCount > n.sched.StopAt()
}
