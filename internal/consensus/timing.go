package consensus

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// attemptProposeEvery is the periodic wakeup interval ProposalTiming uses
// so DynamicInclusion gets re-evaluated on the scheduler's own time base
// even when no candidate arrives (spec.md §6 ATTEMPT_PROPOSE_EVERY).
const attemptProposeEvery = 100 * time.Millisecond

// ProposalTiming is the polled readiness object of spec.md §4.3: a
// periodic interval purely for wakeups, a one-shot delay whose fire time
// is whatever DynamicInclusion last returned, and a memo of the includable
// count that produced that delay. Go has no poll-based Future, so the
// same algorithm is expressed as a blocking Wait loop: the interval tick
// plays the role of "wake up and recheck", and the delay firing plays the
// role of "Ready".
type ProposalTiming struct {
	clock            clock.Clock
	interval         *clock.Ticker
	delay            *clock.Timer
	dynamicInclusion *DynamicInclusion
	lastIncluded     int
}

// NewProposalTiming creates a ProposalTiming for a round that currently
// sees `included` includable candidates.
func NewProposalTiming(clk clock.Clock, di *DynamicInclusion, included int) *ProposalTiming {
	if clk == nil {
		clk = clock.New()
	}
	pt := &ProposalTiming{
		clock:            clk,
		interval:         clk.Ticker(attemptProposeEvery),
		dynamicInclusion: di,
		lastIncluded:     included,
	}
	pt.delay = clk.Timer(pt.delayDuration(included))
	return pt
}

// delayDuration computes how long the one-shot delay should run for, given
// the current includable count: zero if DynamicInclusion says "propose
// now", else the duration until the instant it names.
func (pt *ProposalTiming) delayDuration(included int) time.Duration {
	at := pt.dynamicInclusion.AcceptableIn(pt.clock.Now(), included)
	if at == nil {
		return 0
	}
	d := at.Sub(pt.clock.Now())
	if d < 0 {
		d = 0
	}
	return d
}

// Stop releases the interval ticker and delay timer. Call once the
// ProposalTiming is no longer needed.
func (pt *ProposalTiming) Stop() {
	pt.interval.Stop()
	pt.delay.Stop()
}

// Wait blocks until it is time to attempt a proposal: either the delay
// elapses, or ctx is cancelled. includedFn is polled on every interval
// tick so that a change in includable count reschedules the delay
// (spec.md §4.3 steps 2-3); a change back to "propose now" (DynamicInclusion
// returning nil) resolves immediately without waiting for the old delay.
func (pt *ProposalTiming) Wait(ctx context.Context, includedFn func() int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pt.delay.C:
			return nil
		case <-pt.interval.C:
			included := includedFn()
			if included == pt.lastIncluded {
				continue
			}
			pt.lastIncluded = included
			at := pt.dynamicInclusion.AcceptableIn(pt.clock.Now(), included)
			if at == nil {
				return nil
			}
			pt.delay.Reset(at.Sub(pt.clock.Now()))
		}
	}
}
