// Package gossip implements the wire message codec described in spec.md
// §4.1: five tagged record kinds framed over a byte stream with a
// single-byte delimiter.
package gossip

// Tag identifies a message kind. Numeric values are fixed by spec.md §6's
// enum ordering and must not change once peers agree on them.
type Tag int

const (
	ModeTag Tag = iota
	InvTag
	ReqTag
	RespTag
	TxTag // unused placeholder, spec.md §2 component 1 / §4.1
)

// Delimiter separates consecutive records on a peer's byte stream. Payloads
// are numeric/array JSON, which never produces this byte (spec.md §4.1,
// §9).
const Delimiter = '#'

// TxID is the 32-bit transaction identifier of spec.md §3:
// emitter_node_id * 1_000_000 + per_emitter_sequence.
type TxID uint32

// Message is the tagged union of spec.md §3.
type Message struct {
	Tag Tag

	// Mode
	Mode int

	// Inv
	Inv []TxID
	Hop int

	// ReconcileReq
	SetSize int

	// ReconcileResp
	Transactions []TxID
}

// ModeMessage builds a Mode record.
func ModeMessage(mode int) Message { return Message{Tag: ModeTag, Mode: mode} }

// InvMessage builds an Inv record. inv must be non-empty per spec.md §4.1.
func InvMessage(inv []TxID, hop int) Message {
	return Message{Tag: InvTag, Inv: inv, Hop: hop}
}

// ReconcileReqMessage builds a ReconcileReq record.
func ReconcileReqMessage(setSize int) Message {
	return Message{Tag: ReqTag, SetSize: setSize}
}

// ReconcileRespMessage builds a ReconcileResp record; transactions may be
// empty per spec.md §4.1.
func ReconcileRespMessage(transactions []TxID) Message {
	return Message{Tag: RespTag, Transactions: transactions}
}
