package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txrelay/simnet/internal/scheduler"
	"github.com/txrelay/simnet/internal/simconfig"
)

func lineConfig() simconfig.Config {
	cfg := simconfig.Defaults
	cfg.Protocol = simconfig.Standard
	cfg.ReconciliationMode = simconfig.ReconOff
	cfg.InvIntervalSeconds = 1
	return cfg
}

// TestThreeNodeLineRelay exercises the STANDARD dispatch path across a
// three-node, two-hop directed line: node0 -> node1 -> node2.
func TestThreeNodeLineRelay(t *testing.T) {
	cfg := lineConfig()
	sched := scheduler.New(5000)
	net := NewNetwork()

	n0 := NewNode(0, Regular, &cfg, sched, 0)
	n1 := NewNode(1, Regular, &cfg, sched, 0)
	n2 := NewNode(2, Regular, &cfg, sched, 0)
	net.Add(n0)
	net.Add(n1)
	net.Add(n2)
	net.Connect(0, 1)
	net.Connect(1, 2)
	net.Start()

	tx := NewTxID(0, 1)
	n0.stats.TxCreated++
	n0.recordNewTx(tx, "")
	n0.advertiseInv(tx, "", 0)

	sched.Run()

	assert.True(t, n1.knownTx.Contains(tx), "middle hop should learn the tx")
	assert.True(t, n2.knownTx.Contains(tx), "far hop should learn the tx")
	assert.EqualValues(t, 1, n0.stats.TxCreated)
}

// TestFourNodeRingRelayAndDedup exercises a four-node ring built from
// directed connections (0->1->2->3->0); STANDARD flooding uses every edge in
// both directions except back to the peer a tx came from. The tx must reach
// every node; three of the four edges carry a first sighting, and the one
// remaining edge carries exactly one INV (the other end's send is dropped by
// sendInv's de-duplication), which its receiver already knows and marks
// useless rather than re-advertising it (spec.md §3's known_tx invariant
// and §4.5 step 3).
func TestFourNodeRingRelayAndDedup(t *testing.T) {
	cfg := lineConfig()
	sched := scheduler.New(5000)
	net := NewNetwork()

	nodes := make([]*Node, 4)
	for i := range nodes {
		nodes[i] = NewNode(uint32(i), Regular, &cfg, sched, 0)
		net.Add(nodes[i])
	}
	net.Connect(0, 1)
	net.Connect(1, 2)
	net.Connect(2, 3)
	net.Connect(3, 0)
	net.Start()

	tx := NewTxID(0, 1)
	nodes[0].stats.TxCreated++
	nodes[0].recordNewTx(tx, "")
	nodes[0].advertiseInv(tx, "", 0)

	sched.Run()

	for i, n := range nodes {
		assert.Truef(t, n.knownTx.Contains(tx), "node %d should have learned the tx", i)
	}
	var useless int64
	for _, n := range nodes {
		useless += n.stats.UselessInvReceivedMessages
	}
	assert.EqualValues(t, 1, useless,
		"the edge that closes the ring should carry exactly one duplicate INV, flagged useless")
}

// TestBlackHoleNeverRelays checks that a BLACK_HOLE node still records and
// learns transactions but never re-advertises them onward (spec.md §3).
func TestBlackHoleNeverRelays(t *testing.T) {
	cfg := lineConfig()
	sched := scheduler.New(5000)
	net := NewNetwork()

	n0 := NewNode(0, Regular, &cfg, sched, 0)
	n1 := NewNode(1, BlackHole, &cfg, sched, 0)
	n2 := NewNode(2, Regular, &cfg, sched, 0)
	net.Add(n0)
	net.Add(n1)
	net.Add(n2)
	net.Connect(0, 1)
	net.Connect(1, 2)
	net.Start()

	tx := NewTxID(0, 1)
	n0.stats.TxCreated++
	n0.recordNewTx(tx, "")
	n0.advertiseInv(tx, "", 0)

	sched.Run()

	assert.True(t, n1.knownTx.Contains(tx), "the black hole itself still learns the tx")
	assert.False(t, n2.knownTx.Contains(tx), "a black hole must never relay onward")
}

// TestReconSetUntouchedUnderReconOff pins spec.md §8's literal boundary
// behavior: with reconciliationMode = RECON_OFF, recon_set[p] is never
// mutated for any peer, at any of the three call sites that touch it
// (recordNewTx's seeding loop, handleIncomingInv's and sendInv's pruning).
func TestReconSetUntouchedUnderReconOff(t *testing.T) {
	cfg := lineConfig()
	require := require.New(t)
	sched := scheduler.New(5000)
	net := NewNetwork()

	n0 := NewNode(0, Regular, &cfg, sched, 0)
	n1 := NewNode(1, Regular, &cfg, sched, 0)
	net.Add(n0)
	net.Add(n1)
	net.Connect(0, 1)
	net.Start()

	tx := NewTxID(0, 1)
	n0.stats.TxCreated++
	n0.recordNewTx(tx, "")
	n0.advertiseInv(tx, "", 0)

	sched.Run()

	for addr, p := range n0.peers {
		require.Zerof(p.ReconSet.Len(), "peer %s recon_set must stay empty under RECON_OFF", addr)
	}
	for addr, p := range n1.peers {
		require.Zerof(p.ReconSet.Len(), "peer %s recon_set must stay empty under RECON_OFF", addr)
	}
	require.Zero(n0.stats.Reconcils)
	require.Zero(n1.stats.Reconcils)
}

// TestBandwidthBytesAccumulatesAcrossSends checks that every p.send call
// accounts its snappy-compressed size into NodeStats.BandwidthBytes
// (spec.md §1/§6's bandwidth estimate).
func TestBandwidthBytesAccumulatesAcrossSends(t *testing.T) {
	cfg := lineConfig()
	sched := scheduler.New(5000)
	net := NewNetwork()

	n0 := NewNode(0, Regular, &cfg, sched, 0)
	n1 := NewNode(1, Regular, &cfg, sched, 0)
	net.Add(n0)
	net.Add(n1)
	net.Connect(0, 1)
	net.Start()
	assert.Greater(t, n0.stats.BandwidthBytes, int64(0), "Start's mode announce should account bandwidth")

	before := n0.stats.BandwidthBytes
	tx := NewTxID(0, 1)
	n0.stats.TxCreated++
	n0.recordNewTx(tx, "")
	n0.advertiseInv(tx, "", 0)
	sched.Run()

	assert.Greater(t, n0.stats.BandwidthBytes, before, "advertising the inv should add to the running total")
}
