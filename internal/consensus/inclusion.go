package consensus

import (
	"time"

	"github.com/benbjohnson/clock"
)

// InclusionThreshold is one point on the policy curve DynamicInclusion
// evaluates: once at least Count candidates are includable, the minimum
// wait is Delay from session start.
type InclusionThreshold struct {
	Count int
	Delay time.Duration
}

// DefaultInclusionThresholds is the stock policy curve: propose
// immediately once 4 candidates are includable, otherwise back off to
// progressively shorter waits as more candidates trickle in, with a hard
// ceiling of 6 seconds when none have arrived — matching scenario S1 in
// spec.md §8.
var DefaultInclusionThresholds = []InclusionThreshold{
	{Count: 0, Delay: 6 * time.Second},
	{Count: 1, Delay: 3 * time.Second},
	{Count: 2, Delay: 1500 * time.Millisecond},
	{Count: 4, Delay: 0},
}

// DynamicInclusion answers "is it time to propose yet?" from elapsed time
// since the parent was adopted and the current count of includable
// candidates (spec.md §4.2). The threshold curve is configuration, not
// hard-coded: a session can supply its own.
type DynamicInclusion struct {
	clock      clock.Clock
	startedAt  time.Time
	thresholds []InclusionThreshold // must be sorted by ascending Count
}

// NewDynamicInclusion creates a DynamicInclusion starting now (per the
// given clock) with the given threshold curve. An empty curve falls back
// to DefaultInclusionThresholds.
func NewDynamicInclusion(clk clock.Clock, thresholds []InclusionThreshold) *DynamicInclusion {
	if clk == nil {
		clk = clock.New()
	}
	if len(thresholds) == 0 {
		thresholds = DefaultInclusionThresholds
	}
	return &DynamicInclusion{
		clock:      clk,
		startedAt:  clk.Now(),
		thresholds: thresholds,
	}
}

// StartedAt is the instant the session (and this DynamicInclusion) began.
func (d *DynamicInclusion) StartedAt() time.Time {
	return d.startedAt
}

// minDelayFor returns the minimum delay-from-start required once
// `included` candidates are includable: the delay associated with the
// highest threshold count not exceeding included.
func (d *DynamicInclusion) minDelayFor(included int) time.Duration {
	delay := d.thresholds[0].Delay
	for _, th := range d.thresholds {
		if included >= th.Count {
			delay = th.Delay
		}
	}
	return delay
}

// AcceptableIn returns nil if it is acceptable to propose right now given
// `now` and `included`, or the instant at which it next becomes
// acceptable. The contract (spec.md §4.2) is monotone in both elapsed
// time (once nil, stays nil as included only grows) and in included
// (more candidates never postpones the deadline): minDelayFor is
// non-increasing in included by construction, so the computed deadline
// StartedAt()+minDelayFor(included) only ever moves earlier or stays put
// as included grows.
func (d *DynamicInclusion) AcceptableIn(now time.Time, included int) *time.Time {
	deadline := d.startedAt.Add(d.minDelayFor(included))
	if !now.Before(deadline) {
		return nil
	}
	return &deadline
}
