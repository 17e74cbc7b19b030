package consensus

import "time"

const (
	// MaxTransactionsSize is the hard cap on the total encoded size of a
	// proposed block's extrinsics (spec.md §6).
	MaxTransactionsSize = 4 * 1024 * 1024

	// MaxTimestampDrift is the implementation-defined small bound
	// evaluate_initial allows a proposal's timestamp to exceed the local
	// clock by (spec.md §4.6). A future timestamp within this bound
	// induces a vote delay, not a rejection; beyond it, the proposal is
	// rejected outright.
	MaxTimestampDrift = 10 * time.Second

	// MaxVoteOfflineSeconds suppresses offline-report submission once the
	// current session has run this long without progress, avoiding a
	// storm of slash-votes during a network partition (spec.md §6).
	MaxVoteOfflineSeconds = 60 * time.Second
)
