package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/txrelay/simnet/internal/gossip"
)

func TestOrderedTxSetPreservesInsertionOrder(t *testing.T) {
	s := newOrderedTxSet()
	s.Add(3)
	s.Add(1)
	s.Add(2)

	assert.Equal(t, []gossip.TxID{3, 1, 2}, s.Snapshot())
}

func TestOrderedTxSetRejectsDuplicates(t *testing.T) {
	s := newOrderedTxSet()
	assert.True(t, s.Add(1))
	assert.False(t, s.Add(1))
	assert.Equal(t, 1, s.Len())
}

func TestOrderedTxSetRemovePreservesRemainingOrder(t *testing.T) {
	s := newOrderedTxSet()
	s.Add(1)
	s.Add(2)
	s.Add(3)

	assert.True(t, s.Remove(2))
	assert.False(t, s.Remove(2))
	assert.Equal(t, []gossip.TxID{1, 3}, s.Snapshot())
}

func TestOrderedTxSetClear(t *testing.T) {
	s := newOrderedTxSet()
	s.Add(1)
	s.Add(2)
	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has(1))
}
