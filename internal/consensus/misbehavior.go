package consensus

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/gob"
	"fmt"
	"log"
)

// UnsignedExtrinsic is the part of a misbehavior-report extrinsic that
// gets signed: sender, account nonce and the call payload (spec.md §6's
// BareExtrinsic).
type UnsignedExtrinsic struct {
	Signed ValidatorID
	Index  uint64
	Report MisbehaviorReport
}

// SignedExtrinsic is the canonical on-chain encoding: an UnsignedExtrinsic
// plus the ed25519 signature over its encoding (spec.md §6).
type SignedExtrinsic struct {
	Unsigned  UnsignedExtrinsic
	Signature [ed25519.SignatureSize]byte
}

// encodeUnsigned produces the canonical byte encoding an UnsignedExtrinsic
// is signed over. Wire encoding of extrinsics is delegated to a codec
// per spec.md §1; gob stands in for "some canonical encoding", matching
// the teacher's own use of gob for Transaction.Serialize.
func encodeUnsigned(u UnsignedExtrinsic) ([]byte, error) {
	return EncodeUnsignedForVerification(u)
}

// EncodeUnsignedForVerification produces the same canonical encoding
// encodeUnsigned signs, exported so a pool's submission-time signature
// check can re-derive it without duplicating the encoding logic.
func EncodeUnsignedForVerification(u UnsignedExtrinsic) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(u); err != nil {
		return nil, fmt.Errorf("consensus: failed to encode extrinsic: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeSigned produces the final on-chain byte vector submitted to the
// pool.
func EncodeSigned(s SignedExtrinsic) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("consensus: failed to encode signed extrinsic: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSigned is the inverse of EncodeSigned, used by tests asserting the
// round-trip property of spec.md §8.
func DecodeSigned(data []byte) (SignedExtrinsic, error) {
	var s SignedExtrinsic
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return SignedExtrinsic{}, fmt.Errorf("consensus: failed to decode signed extrinsic: %w", err)
	}
	return s, nil
}

// MisbehaviorReporter converts observed BFT misbehaviors into signed
// on-chain extrinsics and submits them to the pool (spec.md §4.4.4). It
// holds the local identity, signing key, pool and runtime client needed
// to compute the next nonce.
type MisbehaviorReporter struct {
	localID ValidatorID
	signKey ed25519.PrivateKey
	pool    TransactionPool
	client  RuntimeClient
	logger  *log.Logger
}

// NewMisbehaviorReporter constructs a MisbehaviorReporter for the given
// local validator identity.
func NewMisbehaviorReporter(localID ValidatorID, signKey ed25519.PrivateKey, pool TransactionPool, client RuntimeClient, logger *log.Logger) (*MisbehaviorReporter, error) {
	if pool == nil || client == nil {
		return nil, fmt.Errorf("%w: pool and client are required", ErrNotConfigured)
	}
	if len(signKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: signing key must be an ed25519 private key", ErrNotConfigured)
	}
	if logger == nil {
		logger = defaultLogger("MISBEHAVIOR")
	}
	return &MisbehaviorReporter{localID: localID, signKey: signKey, pool: pool, client: client, logger: logger}, nil
}

// nextNonce computes the nonce to use for the first report in a batch:
// the greatest pending nonce for the local sender plus one, or, if none
// is pending, the runtime's current nonce for the account plus one
// (spec.md §4.4.4).
func (r *MisbehaviorReporter) nextNonce(ctx context.Context, parent BlockID) (uint64, error) {
	var greatest uint64
	haveOne := false

	err := r.pool.CullAndGetPending(ctx, parent, func(pending []PendingTransaction) {
		for _, tx := range pending {
			if tx.Sender != r.localID {
				continue
			}
			if !haveOne || tx.Index > greatest {
				greatest = tx.Index
				haveOne = true
			}
		}
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPoolError, err)
	}
	if haveOne {
		return greatest + 1, nil
	}

	idx, err := r.client.Index(parent, r.localID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrClient, err)
	}
	return idx + 1, nil
}

// ImportMisbehavior is Proposer.ImportMisbehavior's implementation
// (spec.md §4.4.4). On any error computing the nonce, it aborts the whole
// batch (logs and returns, no partial submission); individual submission
// failures afterward are logged and swallowed.
func (r *MisbehaviorReporter) ImportMisbehavior(ctx context.Context, parentHash Hash, parentNumber uint64, parent BlockID, observations []MisbehaviorObservation) {
	nonce, err := r.nextNonce(ctx, parent)
	if err != nil {
		r.logger.Printf("aborting misbehavior batch: failed to compute next nonce: %v", err)
		return
	}

	for _, obs := range observations {
		kind, ok := reportableKind(obs.Kind)
		if !ok {
			continue // ProposeOutOfTurn, DoublePropose: not reportable on-chain
		}

		report := MisbehaviorReport{
			ParentHash:   parentHash,
			ParentNumber: parentNumber,
			Target:       obs.Target,
			Kind:         kind,
			Round:        obs.Round,
			First:        obs.First,
			Second:       obs.Second,
		}

		unsigned := UnsignedExtrinsic{Signed: r.localID, Index: nonce, Report: report}
		nonce++

		encoded, err := encodeUnsigned(unsigned)
		if err != nil {
			r.logger.Printf("failed to encode misbehavior report for %s: %v", obs.Target, err)
			continue
		}
		sig := ed25519.Sign(r.signKey, encoded)

		signed := SignedExtrinsic{Unsigned: unsigned}
		copy(signed.Signature[:], sig)

		wire, err := EncodeSigned(signed)
		if err != nil {
			r.logger.Printf("failed to encode signed misbehavior extrinsic for %s: %v", obs.Target, err)
			continue
		}

		if err := r.pool.SubmitOne(ctx, parent, wire); err != nil {
			r.logger.Printf("failed to submit misbehavior report for %s: %v", obs.Target, err)
			continue
		}
	}
}

// reportableKind maps an ObservedKind to its on-chain MisbehaviorKind, or
// reports ok=false for kinds spec.md §4.4.4 says to discard.
func reportableKind(k ObservedKind) (MisbehaviorKind, bool) {
	switch k {
	case ObservedDoublePrepare:
		return BftDoublePrepare, true
	case ObservedDoubleCommit:
		return BftDoubleCommit, true
	default:
		return 0, false
	}
}
