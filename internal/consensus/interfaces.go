package consensus

import "context"

// PendingTransaction is one item the transaction pool yields while the
// builder assembles a block. Sender/Index/EncodedSize/Hash describe the
// verified transaction; Original is the raw, already-encoded bytes that
// get handed to the block builder.
type PendingTransaction struct {
	Sender      ValidatorID
	Index       uint64 // account nonce
	EncodedSize int
	Hash        Hash
	Original    []byte
}

// TransactionPool is the external collaborator §6 names: pending
// transactions for block building and misbehavior-report submission.
// Implementations must be safe for concurrent use.
type TransactionPool interface {
	// CullAndGetPending prunes stale/invalid entries and then calls fn
	// with an iterator-order view of the currently pending transactions.
	// The iterator order is pool priority; callers must not assume any
	// other ordering.
	CullAndGetPending(ctx context.Context, parent BlockID, fn func(pending []PendingTransaction)) error

	// Remove evicts the named transactions from the pool. revert
	// controls whether the removal is treated as a revert (transaction
	// goes back to "unknown"); CreateProposal always passes false, which
	// removes the transactions without banning them.
	Remove(hashes []Hash, revert bool)

	// SubmitOne submits a single already-encoded extrinsic.
	SubmitOne(ctx context.Context, parent BlockID, encoded []byte) error
}

// BlockBuilder accumulates extrinsics and bakes a Block. One instance is
// obtained per proposal attempt from RuntimeClient.BuildBlock.
type BlockBuilder interface {
	// PushExtrinsic attempts to append a transaction; the builder is the
	// authority on acceptance (invalid transactions are rejected here,
	// not pre-filtered by the proposer).
	PushExtrinsic(encoded []byte) error
	// Bake finalizes the block under construction.
	Bake() (*Block, error)
}

// InherentData is the data every block must carry independently of user
// transactions: the block timestamp and the locally observed offline set.
type InherentData struct {
	Timestamp      int64
	OfflineIndices []uint32
}

// RuntimeClient is the external collaborator that holds chain state and
// performs block execution; all methods are fallible because they cross
// into runtime/storage.
type RuntimeClient interface {
	DutyRoster(parent BlockID) (DutyRoster, error)
	RandomSeed(parent BlockID) ([]byte, error) // pre-hash seed; caller hashes with BLAKE2-256
	Validators(parent BlockID) ([]ValidatorID, error)
	Index(parent BlockID, account ValidatorID) (uint64, error)
	BuildBlock(parent BlockID, inherents InherentData) (BlockBuilder, error)
	EvaluateBlock(parent BlockID, block *Block) (bool, error)
}

// DutyRoster records which parachain/worker duty each validator in the
// session currently holds. Its shape is opaque to this package beyond
// what ProposerFactory needs to pass along; it is consumed by the
// candidate table, not interpreted here.
type DutyRoster struct {
	Raw []byte
}

// CandidateTable is the external, shared view of candidates known and
// includable at a given parent (§4.1 abstract). This package never
// implements it, only reads from it.
type CandidateTable interface {
	// IncludableCount returns how many candidates are currently
	// includable at this parent.
	IncludableCount() int

	// WithProposal snapshots the currently proposed candidate set,
	// passes it to fn, and returns the snapshot.
	WithProposal(fn func(candidates []CandidateReceipt)) []CandidateReceipt

	// IncludableDelay returns a channel that closes once the table
	// believes at least `minimum` candidates are includable, or when ctx
	// is done. This is the "includability tracker" of spec.md §4.4.3 /
	// the count_delay referenced in §9's open question.
	IncludableDelay(ctx context.Context, minimum int) <-chan struct{}
}

// TableRouter is a lightweight, shareable handle to a statement-table
// router: it makes locally produced candidate data available on the
// network and fetches data for candidates authored by others. Concrete
// routing/fetching internals stay external to this package; the
// interface only documents the shape a Network implementation plugs in
// (see SPEC_FULL.md §7, restored from original_source/).
type TableRouter interface {
	LocalCandidate(candidate CandidateReceipt, blockData []byte)
	FetchBlockData(ctx context.Context, candidate CandidateReceipt) ([]byte, error)
}

// Communication is one BFT protocol message exchanged between
// authorities. Its shape is the round-driver's concern; this package
// treats it as opaque payload routed by Network.
type Communication struct {
	Round  uint64
	From   ValidatorID
	Kind   string
	Body   []byte
}

// Network is the long-lived collaborator that can create a BFT message
// routing session on demand for a given authority set.
type Network interface {
	// CommunicationFor instantiates a table router plus the input stream
	// and output sink of BFT messages for the given validator set. The
	// returned cancel func tears down any tasks associated with this
	// parent; ProposerFactory.Init hands it to the caller as Handle.Cancel,
	// to be invoked when the session ends (§5 Cancellation, §9 tear-down
	// signal).
	CommunicationFor(validators []ValidatorID) (router TableRouter, input <-chan Communication, output chan<- Communication, cancel func())
}
