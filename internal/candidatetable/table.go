// Package candidatetable implements consensus.CandidateTable: the
// shared, per-parent view of which parachain/worker candidates are known
// and includable. Grounded on the teacher's internal/core.Mempool for its
// RWMutex-guarded map shape, generalized with the includability-delay
// channel consensus.Proposer.Evaluate blocks on.
package candidatetable

import (
	"context"
	"sync"

	"github.com/empower1/bftconsensus/internal/consensus"
)

// Table is an in-memory, thread-safe CandidateTable. A candidate is
// includable once Include has been called for it. Known-but-not-includable
// candidates are not tracked: Propose keeps no record of them.
type Table struct {
	mu         sync.RWMutex
	includable map[consensus.Hash]consensus.CandidateReceipt
	waiters    []waiter
}

type waiter struct {
	minimum int
	done    chan struct{}
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		includable: make(map[consensus.Hash]consensus.CandidateReceipt),
	}
}

// Propose accepts a candidate announcement and discards it: nothing is
// recorded and the candidate does not become includable; call Include
// once it clears availability.
func (t *Table) Propose(consensus.CandidateReceipt) {
	// Known-but-not-includable bookkeeping is not read by this package's
	// consumers (only IncludableCount/WithProposal/IncludableDelay are),
	// so Propose is a no-op placeholder for a richer statement-table.
}

// Include marks a candidate as includable, waking any IncludableDelay
// waiter whose threshold is now met.
func (t *Table) Include(c consensus.CandidateReceipt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.includable[c.CandidateHash] = c
	count := len(t.includable)

	remaining := t.waiters[:0]
	for _, w := range t.waiters {
		if count >= w.minimum {
			close(w.done)
			continue
		}
		remaining = append(remaining, w)
	}
	t.waiters = remaining
}

// IncludableCount implements consensus.CandidateTable.
func (t *Table) IncludableCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.includable)
}

// WithProposal implements consensus.CandidateTable.
func (t *Table) WithProposal(fn func(candidates []consensus.CandidateReceipt)) []consensus.CandidateReceipt {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make([]consensus.CandidateReceipt, 0, len(t.includable))
	for _, c := range t.includable {
		snapshot = append(snapshot, c)
	}
	fn(snapshot)
	return snapshot
}

// IncludableDelay implements consensus.CandidateTable: it returns a
// channel that closes as soon as at least minimum candidates are
// includable, or immediately if that is already true, or when ctx is
// done.
func (t *Table) IncludableDelay(ctx context.Context, minimum int) <-chan struct{} {
	t.mu.Lock()
	if len(t.includable) >= minimum {
		t.mu.Unlock()
		done := make(chan struct{})
		close(done)
		return done
	}
	done := make(chan struct{})
	t.waiters = append(t.waiters, waiter{minimum: minimum, done: done})
	t.mu.Unlock()

	out := make(chan struct{})
	go func() {
		defer close(out)
		select {
		case <-done:
		case <-ctx.Done():
		}
	}()
	return out
}
