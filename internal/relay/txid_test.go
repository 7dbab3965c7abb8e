package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/txrelay/simnet/internal/gossip"
)

func TestNewTxIDEncoding(t *testing.T) {
	assert.Equal(t, gossip.TxID(5_000_003), NewTxID(5, 3))
	assert.Equal(t, gossip.TxID(0), NewTxID(0, 0))
}

func TestNewTxIDDistinctPerEmitter(t *testing.T) {
	a := NewTxID(1, 1)
	b := NewTxID(2, 1)
	assert.NotEqual(t, a, b)
}
