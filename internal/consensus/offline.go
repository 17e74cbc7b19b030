package consensus

import "sync"

// offlineThreshold is the number of consecutive missed rounds a primary
// must accrue before OfflineTracker marks it offline.
const offlineThreshold = 3

// validatorRecord is one validator's liveness bookkeeping: consecutive
// missed-round strikes and whether the tracker currently considers the
// validator offline.
type validatorRecord struct {
	strikes int
	offline bool
}

// OfflineTracker is the process-wide, per-validator liveness book of
// spec.md §4.1. Readers (Reports, CheckConsistency) dominate writers
// (NoteNewBlock, NoteRoundEnd), so it is guarded by a readers-writer
// lock; writers never hold the lock across a suspension point because
// every write here is synchronous map bookkeeping.
type OfflineTracker struct {
	mu      sync.RWMutex
	records map[ValidatorID]*validatorRecord
}

// NewOfflineTracker returns an empty tracker.
func NewOfflineTracker() *OfflineTracker {
	return &OfflineTracker{
		records: make(map[ValidatorID]*validatorRecord),
	}
}

// NoteNewBlock is called when a new parent is adopted. It ensures the
// tracker holds exactly one entry per validator in the current set:
// existing entries are preserved (so strikes survive across blocks),
// validators no longer in the set are pruned.
func (t *OfflineTracker) NoteNewBlock(validators []ValidatorID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := make(map[ValidatorID]struct{}, len(validators))
	for _, v := range validators {
		current[v] = struct{}{}
		if _, ok := t.records[v]; !ok {
			t.records[v] = &validatorRecord{}
		}
	}
	for v := range t.records {
		if _, ok := current[v]; !ok {
			delete(t.records, v)
		}
	}
}

// NoteRoundEnd updates only the primary's record for the round that just
// ended. wasOnline=true resets strikes; wasOnline=false increments
// strikes and marks the validator offline once strikes cross
// offlineThreshold. A round in which consensus produced a proposal for a
// validator's slot must never reach this function with wasOnline=false
// for that validator — that invariant is enforced by the caller
// (Proposer.OnRoundEnd), not here.
func (t *OfflineTracker) NoteRoundEnd(primary ValidatorID, wasOnline bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[primary]
	if !ok {
		rec = &validatorRecord{}
		t.records[primary] = rec
	}
	if wasOnline {
		rec.strikes = 0
		rec.offline = false
		return
	}
	rec.strikes++
	if rec.strikes >= offlineThreshold {
		rec.offline = true
	}
}

// Reports returns the indices, within the supplied validator list, of
// validators the local tracker currently judges offline.
func (t *OfflineTracker) Reports(validators []ValidatorID) []uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []uint32
	for i, v := range validators {
		if rec, ok := t.records[v]; ok && rec.offline {
			out = append(out, uint32(i))
		}
	}
	return out
}

// CheckConsistency returns true iff every index in claimedOffline refers
// to a validator the local tracker also believes offline. Additional
// locally-offline validators not claimed are allowed — the proposer may
// simply have chosen to omit them; the reverse (claiming a validator we
// believe online) is not allowed. This makes CheckConsistency monotone:
// if it holds for a set s, it holds for every subset of s (spec.md §8
// property 5).
func (t *OfflineTracker) CheckConsistency(validators []ValidatorID, claimedOffline []uint32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, idx := range claimedOffline {
		if int(idx) >= len(validators) {
			return false
		}
		rec, ok := t.records[validators[idx]]
		if !ok || !rec.offline {
			return false
		}
	}
	return true
}
