package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txrelay/simnet/internal/scheduler"
	"github.com/txrelay/simnet/internal/simconfig"
)

func TestNetworkConnectWiresDisjointDirections(t *testing.T) {
	cfg := simconfig.Defaults
	sched := scheduler.New(1000)
	net := NewNetwork()

	a := NewNode(0, Regular, &cfg, sched, 0)
	b := NewNode(1, Regular, &cfg, sched, 0)
	net.Add(a)
	net.Add(b)

	require.True(t, net.Connect(0, 1))

	assert.Contains(t, a.outPeers, PeerID("node-1"))
	assert.Contains(t, b.inPeers, PeerID("node-0"))
	assert.NotContains(t, a.inPeers, PeerID("node-1"))
	assert.NotContains(t, b.outPeers, PeerID("node-0"))
}

func TestNetworkConnectUnknownNodeFails(t *testing.T) {
	net := NewNetwork()
	cfg := simconfig.Defaults
	sched := scheduler.New(1000)
	net.Add(NewNode(0, Regular, &cfg, sched, 0))

	assert.False(t, net.Connect(0, 99))
}

func TestNetworkStatsCoversEveryNode(t *testing.T) {
	cfg := simconfig.Defaults
	sched := scheduler.New(1000)
	net := NewNetwork()
	net.Add(NewNode(0, Regular, &cfg, sched, 0))
	net.Add(NewNode(1, Regular, &cfg, sched, 0))

	stats := net.Stats()

	require.Len(t, stats, 2)
	assert.Equal(t, 0, stats[0].NodeID)
	assert.Equal(t, 1, stats[1].NodeID)
}
