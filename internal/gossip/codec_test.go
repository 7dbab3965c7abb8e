package gossip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Message{
		ModeMessage(2),
		InvMessage([]TxID{1, 2, 3}, 0),
		ReconcileReqMessage(42),
		ReconcileRespMessage([]TxID{7, 8}),
		ReconcileRespMessage(nil),
	}

	for _, msg := range cases {
		data, err := Encode(msg)
		require.NoError(t, err)
		assert.Equal(t, byte(Delimiter), data[len(data)-1])

		var d Decoder
		got := d.Feed(data)
		require.Len(t, got, 1)
		assert.Equal(t, msg.Tag, got[0].Tag)
	}
}

func TestEncodeRejectsEmptyInv(t *testing.T) {
	_, err := Encode(InvMessage(nil, 0))
	assert.ErrorIs(t, err, errEmptyInv)
}

func TestEncodeRejectsOversizeInvBatch(t *testing.T) {
	big := make([]TxID, 100000)
	_, err := Encode(InvMessage(big, 0))
	assert.Error(t, err)
}

func TestDecoderFeedHandlesPartialRecords(t *testing.T) {
	data, err := Encode(InvMessage([]TxID{5}, 1))
	require.NoError(t, err)

	var d Decoder
	half := len(data) / 2
	assert.Empty(t, d.Feed(data[:half]))

	got := d.Feed(data[half:])
	require.Len(t, got, 1)
	assert.Equal(t, []TxID{5}, got[0].Inv)
}

func TestDecoderFeedRecoversFromMalformedRecord(t *testing.T) {
	var d Decoder
	bad := append([]byte("{not json"), Delimiter)
	good, err := Encode(ModeMessage(1))
	require.NoError(t, err)

	got := d.Feed(append(bad, good...))
	require.Len(t, got, 1)
	assert.Equal(t, ModeTag, got[0].Tag)
}

func TestDecoderFeedMultipleRecordsInOneWrite(t *testing.T) {
	a, _ := Encode(ModeMessage(0))
	b, _ := Encode(InvMessage([]TxID{9}, 2))

	var d Decoder
	got := d.Feed(append(a, b...))
	require.Len(t, got, 2)
	assert.Equal(t, ModeTag, got[0].Tag)
	assert.Equal(t, InvTag, got[1].Tag)
}

func TestCompressedSizeIsPositive(t *testing.T) {
	data, err := Encode(InvMessage([]TxID{1, 2, 3}, 0))
	require.NoError(t, err)
	assert.Greater(t, CompressedSize(data), 0)
}
