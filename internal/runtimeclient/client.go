// Package runtimeclient implements consensus.RuntimeClient and
// consensus.BlockBuilder against an in-memory chain store, grounded on
// the teacher's internal/core.Blockchain (RWMutex-guarded slice of
// blocks, height/hash lookups) and internal/consensus.ConsensusEngine's
// validator-address bookkeeping, generalized to the session/duty-roster
// shape consensus.ProposerFactory needs.
package runtimeclient

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/empower1/bftconsensus/internal/consensus"
)

// Chain is an in-memory, thread-safe append-only store of accepted
// blocks plus the fixed validator set and per-account nonces a demo node
// needs. It implements consensus.RuntimeClient directly.
type Chain struct {
	mu         sync.RWMutex
	blocks     []*consensus.Block
	validators []consensus.ValidatorID
	nonces     map[consensus.ValidatorID]uint64
	seed       [32]byte
}

// New returns a Chain seeded with a genesis header and the given
// validator set. It draws the chain's raw, pre-hash random seed once from
// crypto/rand (a real runtime would derive it from on-chain randomness);
// ProposerFactory hashes it with BLAKE2-256 before use.
func New(validators []consensus.ValidatorID, genesis *consensus.Block) (*Chain, error) {
	if genesis == nil {
		return nil, fmt.Errorf("runtimeclient: genesis block is required")
	}
	c := &Chain{
		blocks:     []*consensus.Block{genesis},
		validators: append([]consensus.ValidatorID(nil), validators...),
		nonces:     make(map[consensus.ValidatorID]uint64),
	}
	if _, err := rand.Read(c.seed[:]); err != nil {
		return nil, fmt.Errorf("runtimeclient: failed to seed randomness: %w", err)
	}
	return c, nil
}

// Head returns the most recently accepted block.
func (c *Chain) Head() *consensus.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[len(c.blocks)-1]
}

// DutyRoster implements consensus.RuntimeClient. This demo chain has no
// parachain workload, so the roster is always empty; a real runtime
// would encode per-validator duties here.
func (c *Chain) DutyRoster(consensus.BlockID) (consensus.DutyRoster, error) {
	return consensus.DutyRoster{}, nil
}

// RandomSeed implements consensus.RuntimeClient, returning the chain's
// fixed demo seed regardless of parent (a real runtime derives a fresh
// seed per parent from on-chain entropy).
func (c *Chain) RandomSeed(consensus.BlockID) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]byte, len(c.seed))
	copy(out, c.seed[:])
	return out, nil
}

// Validators implements consensus.RuntimeClient.
func (c *Chain) Validators(consensus.BlockID) ([]consensus.ValidatorID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]consensus.ValidatorID(nil), c.validators...), nil
}

// Index implements consensus.RuntimeClient: the account's current nonce.
func (c *Chain) Index(_ consensus.BlockID, account consensus.ValidatorID) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nonces[account], nil
}

// BuildBlock implements consensus.RuntimeClient, returning a Builder
// seated on the named parent.
func (c *Chain) BuildBlock(parent consensus.BlockID, inherents consensus.InherentData) (consensus.BlockBuilder, error) {
	c.mu.RLock()
	head := c.blocks[len(c.blocks)-1]
	c.mu.RUnlock()

	if blockHash(head) != parent.Hash {
		// Demo chain only ever builds on its current head.
		return nil, fmt.Errorf("runtimeclient: parent %s is not the current head", parent.Hash)
	}

	return &Builder{
		header: consensus.Header{
			ParentHash: parent.Hash,
			Number:     head.Header.Number + 1,
			Timestamp:  inherents.Timestamp,
		},
		offline: inherents.OfflineIndices,
	}, nil
}

// EvaluateBlock implements consensus.RuntimeClient: it re-runs the same
// structural checks the proposal-side EvaluateInitial already ran and,
// for this demo chain, accepts anything that passes them. A real runtime
// would additionally re-execute every extrinsic.
func (c *Chain) EvaluateBlock(parent consensus.BlockID, block *consensus.Block) (bool, error) {
	c.mu.RLock()
	head := c.blocks[len(c.blocks)-1]
	c.mu.RUnlock()

	if BlockHash(head) != parent.Hash {
		return false, fmt.Errorf("runtimeclient: parent %s is not the current head", parent.Hash)
	}

	if _, err := consensus.EvaluateInitial(block, unixNow(), BlockHash(head), head.Header.Number); err != nil {
		return false, nil
	}
	return true, nil
}

// Accept appends block to the chain as the new head, once the round
// driver has committed it.
func (c *Chain) Accept(block *consensus.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = append(c.blocks, block)
}

// Builder implements consensus.BlockBuilder over an accumulating
// extrinsic list.
type Builder struct {
	header     consensus.Header
	extrinsics []consensus.Extrinsic
	offline    []uint32
}

// PushExtrinsic implements consensus.BlockBuilder. This demo builder
// accepts every well-formed (non-empty) extrinsic; a real runtime would
// dispatch and execute it here.
func (b *Builder) PushExtrinsic(encoded []byte) error {
	if len(encoded) == 0 {
		return fmt.Errorf("runtimeclient: empty extrinsic")
	}
	b.extrinsics = append(b.extrinsics, consensus.Extrinsic(encoded))
	return nil
}

// Bake implements consensus.BlockBuilder.
func (b *Builder) Bake() (*consensus.Block, error) {
	return &consensus.Block{
		Header:      b.header,
		Extrinsics:  b.extrinsics,
		OfflineIdxs: b.offline,
	}, nil
}
