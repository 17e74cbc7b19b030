package consensus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validBlock(parentHash Hash, parentNumber uint64, now time.Time) *Block {
	return &Block{
		Header: Header{
			ParentHash: parentHash,
			Number:     parentNumber + 1,
			Timestamp:  currentTimestamp(now),
		},
	}
}

func TestEvaluateInitial_Accepts(t *testing.T) {
	parentHash := Hash{1}
	now := time.Now()
	block := validBlock(parentHash, 10, now)

	got, err := EvaluateInitial(block, now, parentHash, 10)
	assert.NoError(t, err)
	assert.Same(t, block, got)
}

func TestEvaluateInitial_NilBlock(t *testing.T) {
	_, err := EvaluateInitial(nil, time.Now(), Hash{}, 0)
	assert.ErrorIs(t, err, ErrProposalNotForChainX)
}

func TestEvaluateInitial_WrongParentHash(t *testing.T) {
	now := time.Now()
	block := validBlock(Hash{1}, 10, now)
	_, err := EvaluateInitial(block, now, Hash{2}, 10)
	assert.ErrorIs(t, err, ErrWrongParentHash)
}

func TestEvaluateInitial_WrongNumber(t *testing.T) {
	now := time.Now()
	parentHash := Hash{1}
	block := validBlock(parentHash, 10, now)
	block.Header.Number = 5
	_, err := EvaluateInitial(block, now, parentHash, 10)
	assert.ErrorIs(t, err, ErrWrongNumber)
}

func TestEvaluateInitial_TimestampTooFarInFuture(t *testing.T) {
	now := time.Now()
	parentHash := Hash{1}
	block := validBlock(parentHash, 10, now)
	block.Header.Timestamp = currentTimestamp(now) + int64(MaxTimestampDrift.Seconds()) + 1
	_, err := EvaluateInitial(block, now, parentHash, 10)
	assert.ErrorIs(t, err, ErrTimestampInFuture)
}

func TestEvaluateInitial_TimestampWithinDriftAccepted(t *testing.T) {
	now := time.Now()
	parentHash := Hash{1}
	block := validBlock(parentHash, 10, now)
	block.Header.Timestamp = currentTimestamp(now) + int64(MaxTimestampDrift.Seconds())
	_, err := EvaluateInitial(block, now, parentHash, 10)
	assert.NoError(t, err)
}

func TestEvaluateInitial_PastTimestampAccepted(t *testing.T) {
	now := time.Now()
	parentHash := Hash{1}
	block := validBlock(parentHash, 10, now)
	block.Header.Timestamp = currentTimestamp(now) - 3600
	_, err := EvaluateInitial(block, now, parentHash, 10)
	assert.NoError(t, err, "no lower bound on timestamp by design")
}

func TestEvaluateInitial_TooLarge(t *testing.T) {
	now := time.Now()
	parentHash := Hash{1}
	block := validBlock(parentHash, 10, now)
	block.Extrinsics = []Extrinsic{make([]byte, MaxTransactionsSize+1)}
	_, err := EvaluateInitial(block, now, parentHash, 10)
	assert.True(t, errors.Is(err, ErrProposalTooLarge))
}
