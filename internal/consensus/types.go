// Package consensus implements the block proposer and vote evaluator that
// drives one BFT consensus round on top of a parent block: timing
// discipline, block construction under a size cap, proposal evaluation,
// offline-validator tracking and misbehavior reporting. The round-exchange
// state machine, networking, codec and runtime execution are external
// collaborators reached through the interfaces in interfaces.go.
package consensus

import (
	"time"
)

// HashSize is the width of every hash used by this package.
const HashSize = 32

// Hash is a 32-byte content hash (block hash, parent hash, candidate hash).
type Hash [HashSize]byte

// ValidatorID is a validator's 32-byte public key.
type ValidatorID [HashSize]byte

func (v ValidatorID) String() string {
	return hexString(v[:])
}

func hexString(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0f]
	}
	return string(out)
}

// BlockID identifies a block for the purposes of querying the runtime
// client. It addresses blocks by hash only; there is no by-number form.
type BlockID struct {
	Hash Hash
}

// Header is the portion of a block that participates in chain continuity
// and timestamp checks.
type Header struct {
	ParentHash Hash
	Number     uint64
	Timestamp  int64 // seconds since Unix epoch
}

// Extrinsic is an opaque, already-encoded item included in a block: an
// inherent (timestamp, offline indices) or a signed transaction. Its
// encoded size is what counts against MaxTransactionsSize.
type Extrinsic []byte

// Block is the Proposal of spec.md §3: a header plus an ordered list of
// extrinsics. It is produced by CreateProposal and consumed by Evaluate.
type Block struct {
	Header      Header
	Extrinsics  []Extrinsic
	OfflineIdxs []uint32 // indices into the session's validator list
}

// EncodedSize is the wire size of the block's extrinsics, the quantity
// MaxTransactionsSize bounds.
func (b *Block) EncodedSize() int {
	total := 0
	for _, xt := range b.Extrinsics {
		total += len(xt)
	}
	return total
}

// CandidateReceipt is an opaque identifier for a parachain/worker candidate,
// carrying enough information for the network to fetch its block data. The
// CandidateTable collaborator is the authority on the set of known and
// includable candidates; this package only reads counts and identifiers
// from it.
type CandidateReceipt struct {
	CandidateHash Hash
	BlockDataHash Hash
}

// Session is the immutable per-parent context a Proposer is built from:
// parent identifiers, the round-0 random seed, the ordered validator list
// and the local validator's identity. The signing key itself is not held
// here; ProposerFactory passes it to the MisbehaviorReporter. It is
// created by ProposerFactory.Init and
// lives until the next parent is committed.
type Session struct {
	ParentHash   Hash
	ParentNumber uint64
	ParentID     BlockID
	RandomSeed   Hash // BLAKE2-256 of the runtime-supplied per-parent seed
	Validators   []ValidatorID
	LocalID      ValidatorID
}

// PrimaryIndex implements spec.md §3's deterministic primary-selection
// formula: ((seed mod N) + round) mod N, where seed is interpreted as a
// big-endian unsigned integer.
func PrimaryIndex(seed Hash, round uint64, n int) int {
	if n <= 0 {
		return 0
	}
	offset := seedMod(seed, uint64(n))
	return int((offset + round) % uint64(n))
}

// seedMod computes (big-endian uint256 seed) mod m without a bignum
// library: walking the bytes most-significant first and folding each one
// into a running remainder mod m, which is the standard "long division in
// base 256" reduction and needs nothing wider than uint64 because m fits a
// validator-set size.
func seedMod(seed Hash, m uint64) uint64 {
	var rem uint64
	for _, b := range seed {
		rem = (rem*256 + uint64(b)) % m
	}
	return rem
}

// MisbehaviorKind classifies a reportable BFT misbehavior.
type MisbehaviorKind int

const (
	// BftDoublePrepare marks a validator that signed two incompatible
	// prepare votes in the same round.
	BftDoublePrepare MisbehaviorKind = iota
	// BftDoubleCommit marks a validator that signed two incompatible
	// commit votes in the same round.
	BftDoubleCommit
)

func (k MisbehaviorKind) String() string {
	switch k {
	case BftDoublePrepare:
		return "BftDoublePrepare"
	case BftDoubleCommit:
		return "BftDoubleCommit"
	default:
		return "Unknown"
	}
}

// SignedVote is one half of a double-vote misbehavior observation: the
// hash voted for and the signature over it.
type SignedVote struct {
	Hash      Hash
	Signature [64]byte // ed25519 signature
}

// MisbehaviorObservation is what the BFT round-driver hands to
// Proposer.ImportMisbehavior: a validator caught signing two incompatible
// votes at the same round and step, or one of the non-reportable kinds
// (ProposeOutOfTurn, DoublePropose) which import_misbehavior discards.
type MisbehaviorObservation struct {
	Target ValidatorID
	Round  uint64
	Kind   ObservedKind
	First  SignedVote
	Second SignedVote
}

// ObservedKind is the full set of misbehaviors the BFT round-driver can
// observe, only two of which are reportable on-chain (see
// Proposer.ImportMisbehavior).
type ObservedKind int

const (
	ObservedProposeOutOfTurn ObservedKind = iota
	ObservedDoublePropose
	ObservedDoublePrepare
	ObservedDoubleCommit
)

// MisbehaviorReport is the on-chain extrinsic payload constructed from a
// reportable MisbehaviorObservation.
type MisbehaviorReport struct {
	ParentHash   Hash
	ParentNumber uint64
	Target       ValidatorID
	Kind         MisbehaviorKind
	Round        uint64
	First        SignedVote
	Second       SignedVote
}

// currentTimestamp returns the current wall-clock time as seconds since
// the Unix epoch, the unit every Header.Timestamp and inherent timestamp
// in this package uses.
func currentTimestamp(now time.Time) int64 {
	return now.Unix()
}
