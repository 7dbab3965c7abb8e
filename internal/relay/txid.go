package relay

import (
	"encoding/binary"

	"github.com/status-im/keycard-go/hexutils"

	"github.com/txrelay/simnet/internal/gossip"
)

// NewTxID builds the 32-bit transaction id of spec.md §3:
// emitter_node_id * 1_000_000 + per_emitter_sequence.
func NewTxID(emitterNodeID uint32, seq uint32) gossip.TxID {
	return gossip.TxID(uint64(emitterNodeID)*1_000_000 + uint64(seq))
}

// hexTxID renders a TxID the way the teacher's handler_probe.go renders
// byte payloads in debug logs (hexutils.BytesToHex), used for TxIDs in the
// relay package's log lines (recordNewTx's duplicate-tx Crit line).
func hexTxID(id gossip.TxID) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(id))
	return hexutils.BytesToHex(b[:])
}
