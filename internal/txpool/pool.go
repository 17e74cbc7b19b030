// Package txpool implements an in-memory transaction pool satisfying
// consensus.TransactionPool: a thread-safe store of pending, already
// decoded transactions, grounded on the teacher's internal/core.Mempool
// (RWMutex-guarded map, hash keyed) and generalized with a sender/nonce
// and submission-validation callback the consensus package needs.
package txpool

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/empower1/bftconsensus/internal/consensus"
)

// Decoder turns a raw, already-encoded extrinsic into the fields the
// pool needs to track: sender, nonce and a stable hash. Pool.SubmitOne
// rejects anything Decoder fails on.
type Decoder func(encoded []byte) (sender consensus.ValidatorID, index uint64, err error)

// entry is one pending transaction tracked by the pool.
type entry struct {
	sender   consensus.ValidatorID
	index    uint64
	original []byte
}

// Pool is a thread-safe, in-memory transaction pool. It never culls
// against chain state on its own; CullAndGetPending's parent argument is
// accepted for interface conformance and ignored, mirroring the teacher's
// Mempool which leaves validity entirely to its caller.
type Pool struct {
	mu      sync.RWMutex
	entries map[consensus.Hash]entry
	decode  Decoder
	logger  *log.Logger
}

// New returns an empty Pool. decode is used by SubmitOne to validate and
// index incoming extrinsics.
func New(decode Decoder) *Pool {
	return &Pool{
		entries: make(map[consensus.Hash]entry),
		decode:  decode,
		logger:  log.New(os.Stdout, "TXPOOL: ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// CullAndGetPending calls fn with a snapshot of every pending
// transaction. The pool has no chain-state access of its own to cull
// against, so this is a pure snapshot read; a wrapping component with
// chain access is expected to call Remove for anything it finds stale.
func (p *Pool) CullAndGetPending(_ context.Context, _ consensus.BlockID, fn func(pending []consensus.PendingTransaction)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pending := make([]consensus.PendingTransaction, 0, len(p.entries))
	for hash, e := range p.entries {
		pending = append(pending, consensus.PendingTransaction{
			Sender:      e.sender,
			Index:       e.index,
			EncodedSize: len(e.original),
			Hash:        hash,
			Original:    e.original,
		})
	}
	fn(pending)
	return nil
}

// Remove evicts the named transactions. revert is accepted for interface
// conformance; this pool has no distinct "reverted" state to restore to,
// so both paths simply delete the entry.
func (p *Pool) Remove(hashes []consensus.Hash, _ bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range hashes {
		delete(p.entries, h)
	}
}

// SubmitOne decodes and indexes a single already-encoded extrinsic. A
// submission whose hash is already pending is ignored and returns nil.
func (p *Pool) SubmitOne(_ context.Context, _ consensus.BlockID, encoded []byte) error {
	sender, index, err := p.decode(encoded)
	if err != nil {
		return fmt.Errorf("txpool: failed to decode submission: %w", err)
	}
	hash := sha256.Sum256(encoded)

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[hash]; ok {
		return nil
	}
	p.entries[hash] = entry{sender: sender, index: index, original: encoded}
	p.logger.Printf("accepted extrinsic from %s nonce %d", sender, index)
	return nil
}

// Len reports how many transactions are currently pending.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
