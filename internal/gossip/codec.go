package gossip

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/golang/snappy"

	"github.com/txrelay/simnet/log"
)

// wireRecord is the JSON-shaped, key-order-irrelevant record schema of
// spec.md §4.1. All four kinds share one struct so a single delimiter-framed
// byte stream can hold any of them; unused fields are omitted by omitempty,
// except transactions, which is always written (null when unset) so that an
// empty RECONCILE_RESP still carries the key.
type wireRecord struct {
	Message Tag    `json:"message"`
	Mode    int    `json:"mode,omitempty"`
	Inv     []TxID `json:"inv,omitempty"`
	Hop     int    `json:"hop,omitempty"`
	SetSize int    `json:"setSize,omitempty"`
	Transactions []TxID `json:"transactions"`
}

var errEmptyInv = errors.New("gossip: INV record must carry at least one tx id")

// Encode serializes msg as one delimiter-terminated record. It returns an
// error if msg.Inv would exceed btcsuite/btcd's MaxInvPerMsg — the same
// batch-size ceiling the real Bitcoin wire protocol enforces on INV
// messages, reused here as the cap on how many tx ids one record may carry.
func Encode(msg Message) ([]byte, error) {
	if msg.Tag == InvTag && len(msg.Inv) == 0 {
		return nil, errEmptyInv
	}
	if msg.Tag == InvTag && len(msg.Inv) > wire.MaxInvPerMsg {
		return nil, fmt.Errorf("gossip: inv batch of %d exceeds MaxInvPerMsg %d", len(msg.Inv), wire.MaxInvPerMsg)
	}
	rec := wireRecord{
		Message:      msg.Tag,
		Mode:         msg.Mode,
		Inv:          msg.Inv,
		Hop:          msg.Hop,
		SetSize:      msg.SetSize,
		Transactions: msg.Transactions,
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, body...)
	out = append(out, Delimiter)
	return out, nil
}

// CompressedSize reports the snappy-compressed size of an already-encoded
// record, used by the statistics collector for the bandwidth estimates
// spec.md §1/§6 report. The simulator models sizes, not real bytes on the
// wire (spec.md §1's Non-goals), so this is a size metric only, never a
// transport encoding.
func CompressedSize(encoded []byte) int {
	return len(snappy.Encode(nil, encoded))
}

// Decoder maintains the per-peer receive buffer of spec.md §4.1 and pulls
// complete, delimiter-terminated records off it as bytes arrive.
type Decoder struct {
	buf bytes.Buffer
}

// Feed appends newly-arrived bytes and returns every complete record parsed
// out of the buffer so far, in arrival order. A record that fails to parse
// is logged and dropped; the buffer advances past its delimiter and framing
// continues undisturbed (spec.md §4.1, §4.6, §7).
func (d *Decoder) Feed(data []byte) []Message {
	d.buf.Write(data)
	var out []Message
	for {
		raw := d.buf.Bytes()
		idx := bytes.IndexByte(raw, Delimiter)
		if idx < 0 {
			return out
		}
		record := raw[:idx]
		d.buf.Next(idx + 1)

		msg, err := decodeRecord(record)
		if err != nil {
			log.Warn("gossip: dropping malformed record", "err", err)
			continue
		}
		out = append(out, msg)
	}
}

func decodeRecord(record []byte) (Message, error) {
	var rec wireRecord
	if err := json.Unmarshal(record, &rec); err != nil {
		return Message{}, err
	}
	switch rec.Message {
	case ModeTag:
		return ModeMessage(rec.Mode), nil
	case InvTag:
		if len(rec.Inv) == 0 {
			return Message{}, errEmptyInv
		}
		return InvMessage(rec.Inv, rec.Hop), nil
	case ReqTag:
		return ReconcileReqMessage(rec.SetSize), nil
	case RespTag:
		return ReconcileRespMessage(rec.Transactions), nil
	default:
		return Message{}, fmt.Errorf("gossip: unknown message tag %d", rec.Message)
	}
}
