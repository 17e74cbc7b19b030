package txpool

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empower1/bftconsensus/internal/consensus"
)

// testDecode treats the first 32 bytes as the sender and the next 8 as
// the nonce, rejecting anything shorter.
func testDecode(encoded []byte) (consensus.ValidatorID, uint64, error) {
	var sender consensus.ValidatorID
	if len(encoded) < 40 {
		return sender, 0, assertErr{}
	}
	copy(sender[:], encoded[:32])
	return sender, binary.BigEndian.Uint64(encoded[32:40]), nil
}

type assertErr struct{}

func (assertErr) Error() string { return "malformed extrinsic" }

func encodeTestTx(sender consensus.ValidatorID, nonce uint64) []byte {
	out := make([]byte, 40)
	copy(out, sender[:])
	binary.BigEndian.PutUint64(out[32:], nonce)
	return out
}

func TestPool_SubmitAndList(t *testing.T) {
	p := New(testDecode)
	var sender consensus.ValidatorID
	sender[0] = 1

	require.NoError(t, p.SubmitOne(context.Background(), consensus.BlockID{}, encodeTestTx(sender, 1)))
	assert.Equal(t, 1, p.Len())

	var seen []consensus.PendingTransaction
	err := p.CullAndGetPending(context.Background(), consensus.BlockID{}, func(pending []consensus.PendingTransaction) {
		seen = pending
	})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, sender, seen[0].Sender)
	assert.Equal(t, uint64(1), seen[0].Index)
}

func TestPool_SubmitRejectsMalformed(t *testing.T) {
	p := New(testDecode)
	err := p.SubmitOne(context.Background(), consensus.BlockID{}, []byte{1, 2, 3})
	assert.Error(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestPool_SubmitDuplicateIsNoop(t *testing.T) {
	p := New(testDecode)
	var sender consensus.ValidatorID
	tx := encodeTestTx(sender, 1)

	require.NoError(t, p.SubmitOne(context.Background(), consensus.BlockID{}, tx))
	require.NoError(t, p.SubmitOne(context.Background(), consensus.BlockID{}, tx))
	assert.Equal(t, 1, p.Len())
}

func TestPool_Remove(t *testing.T) {
	p := New(testDecode)
	var sender consensus.ValidatorID
	tx := encodeTestTx(sender, 1)
	require.NoError(t, p.SubmitOne(context.Background(), consensus.BlockID{}, tx))

	var hash consensus.Hash
	_ = p.CullAndGetPending(context.Background(), consensus.BlockID{}, func(pending []consensus.PendingTransaction) {
		hash = pending[0].Hash
	})

	p.Remove([]consensus.Hash{hash}, false)
	assert.Equal(t, 0, p.Len())
}
