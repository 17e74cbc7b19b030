package consensus

import (
	"fmt"
	"time"
)

// EvaluateInitial runs the stateless structural/temporal checks of
// spec.md §4.6 against a proposed block. It never touches the offline
// tracker or the runtime client — those checks happen in
// Proposer.Evaluate after this one passes. A nil block fails with
// ErrProposalNotForChainX, mirroring a structural decode failure.
func EvaluateInitial(block *Block, now time.Time, parentHash Hash, parentNumber uint64) (*Block, error) {
	if block == nil {
		return nil, fmt.Errorf("%w: nil block", ErrProposalNotForChainX)
	}
	if block.Header.ParentHash != parentHash {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrWrongParentHash, hexString(block.Header.ParentHash[:]), hexString(parentHash[:]))
	}
	if block.Header.Number != parentNumber+1 {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrWrongNumber, block.Header.Number, parentNumber+1)
	}

	maxTimestamp := currentTimestamp(now) + int64(MaxTimestampDrift.Seconds())
	if block.Header.Timestamp > maxTimestamp {
		return nil, fmt.Errorf("%w: timestamp %d exceeds now+drift %d", ErrTimestampInFuture, block.Header.Timestamp, maxTimestamp)
	}
	// Deliberately no lower bound on timestamp: a timestamp in the past
	// relative to now is fine, and one slightly in the future induces a
	// vote delay elsewhere rather than a rejection here.

	if size := block.EncodedSize(); size > MaxTransactionsSize {
		return nil, fmt.Errorf("%w: %d bytes > %d", ErrProposalTooLarge, size, MaxTransactionsSize)
	}

	return block, nil
}
