package consensus

import "errors"

// Error kinds from spec.md §7. Timer and Client errors are fatal to the
// current round and surface to the BFT driver; the evaluation errors are
// absorbed locally into a false vote; PoolError is logged and aborts the
// in-flight proposal attempt; Consistency causes abstention.
var (
	// ErrTimer indicates a scheduler/timer malfunction.
	ErrTimer = errors.New("consensus: timer error")

	// ErrClient indicates the runtime client failed (state unavailable,
	// block build failed).
	ErrClient = errors.New("consensus: client error")

	// ErrProposalNotForChainX means the block failed to decode or is
	// structurally malformed.
	ErrProposalNotForChainX = errors.New("consensus: proposal does not decode as a valid block")

	// ErrWrongParentHash means the block's header names a different parent.
	ErrWrongParentHash = errors.New("consensus: wrong parent hash")

	// ErrWrongNumber means the block's height isn't parent height + 1.
	ErrWrongNumber = errors.New("consensus: wrong block number")

	// ErrTimestampInFuture means the block's timestamp exceeds now plus
	// the allowed drift.
	ErrTimestampInFuture = errors.New("consensus: block timestamp too far in the future")

	// ErrProposalTooLarge means the aggregate extrinsic size exceeds
	// MaxTransactionsSize.
	ErrProposalTooLarge = errors.New("consensus: proposal exceeds max transactions size")

	// ErrPoolError indicates a transient or aggregate pool-access failure.
	ErrPoolError = errors.New("consensus: transaction pool error")

	// ErrConsistency indicates the proposal's claimed-offline set
	// disagrees with the local offline tracker in a way that triggers
	// abstention rather than a vote.
	ErrConsistency = errors.New("consensus: offline-set consistency check failed")

	// ErrNotConfigured is returned by constructors given incomplete
	// dependencies.
	ErrNotConfigured = errors.New("consensus: component not fully configured")
)
