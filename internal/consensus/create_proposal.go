package consensus

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/benbjohnson/clock"
)

// CreateProposal is the block-baking computation of spec.md §4.4.2: wait
// for the includability policy to say "go", snapshot the candidate table,
// then bake a block against the live transaction pool. One instance is
// built per round attempt and run to completion (or cancellation).
type CreateProposal struct {
	clock   clock.Clock
	session *Session
	client  RuntimeClient
	pool    TransactionPool
	table   CandidateTable
	timing  *ProposalTiming
	offline *OfflineTracker
	logger  *log.Logger
}

// newCreateProposal builds a CreateProposal for the current round attempt.
// included is the includable count ProposalTiming was last constructed
// with, matching the dynamic-inclusion delay already in flight.
func newCreateProposal(clk clock.Clock, session *Session, client RuntimeClient, pool TransactionPool, table CandidateTable, di *DynamicInclusion, offline *OfflineTracker, included int, logger *log.Logger) *CreateProposal {
	if logger == nil {
		logger = defaultLogger("CREATE-PROPOSAL")
	}
	return &CreateProposal{
		clock:   clk,
		session: session,
		client:  client,
		pool:    pool,
		table:   table,
		timing:  NewProposalTiming(clk, di, included),
		offline: offline,
		logger:  logger,
	}
}

// Run blocks until either a proposal is baked or ctx is cancelled
// (spec.md §4.4.2, §5 Cancellation). It polls the candidate table's
// includable count on every wakeup so a late-arriving candidate can
// shorten the wait already computed by ProposalTiming.
func (c *CreateProposal) Run(ctx context.Context) (*Block, error) {
	defer c.timing.Stop()

	if err := c.timing.Wait(ctx, c.table.IncludableCount); err != nil {
		return nil, err
	}

	candidates := c.table.WithProposal(func(candidates []CandidateReceipt) {})

	return c.proposeWith(ctx, candidates)
}

// proposeWith bakes a block from a snapshotted candidate set: it computes
// the inherents (timestamp, offline indices), opens a builder against the
// runtime, drains the pool up to the size cap, bakes, and re-checks the
// result against EvaluateInitial before returning it (spec.md §4.4.2
// steps 4-8).
func (c *CreateProposal) proposeWith(ctx context.Context, candidates []CandidateReceipt) (*Block, error) {
	now := c.clock.Now()
	inherents := InherentData{
		Timestamp:      currentTimestamp(now),
		OfflineIndices: c.offlineIndices(now),
	}

	builder, err := c.client.BuildBlock(c.session.ParentID, inherents)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClient, err)
	}

	if err := c.fillFromPool(ctx, builder); err != nil {
		return nil, err
	}

	block, err := builder.Bake()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClient, err)
	}

	if _, err := EvaluateInitial(block, c.clock.Now(), c.session.ParentHash, c.session.ParentNumber); err != nil {
		// A proposal this package just built failing its own structural
		// checks is a programmer error in BuildBlock/Bake, not a
		// legitimate runtime outcome.
		panic(fmt.Sprintf("consensus: self-baked proposal failed evaluate_initial: %v", err))
	}

	_ = candidates // candidate data reaches the block via the runtime client's builder, not this slice directly
	return block, nil
}

// offlineIndices reports the locally tracked offline set, suppressed once
// the session has run longer than MaxVoteOfflineSeconds without progress
// so a partitioned network doesn't keep accusing everyone else of being
// offline (spec.md §6, restored from original_source/'s on_round_end
// handling of stalled sessions).
func (c *CreateProposal) offlineIndices(now time.Time) []uint32 {
	if now.Sub(c.timing.dynamicInclusion.StartedAt()) > MaxVoteOfflineSeconds {
		return nil
	}
	return c.offline.Reports(c.session.Validators)
}

// fillFromPool drains pending transactions into builder up to
// MaxTransactionsSize, stopping (not skipping) once the next transaction
// would exceed the cap, and evicting any transaction the builder itself
// rejects (spec.md §4.4.2 step 6).
func (c *CreateProposal) fillFromPool(ctx context.Context, builder BlockBuilder) error {
	var evicted []Hash
	size := 0

	err := c.pool.CullAndGetPending(ctx, c.session.ParentID, func(pending []PendingTransaction) {
		for _, tx := range pending {
			if size+tx.EncodedSize > MaxTransactionsSize {
				break
			}
			if err := builder.PushExtrinsic(tx.Original); err != nil {
				evicted = append(evicted, tx.Hash)
				continue
			}
			size += tx.EncodedSize
		}
	})
	if err != nil {
		c.logger.Printf("aborting proposal attempt: pool access failed: %v", err)
		return fmt.Errorf("%w: %v", ErrPoolError, err)
	}

	if len(evicted) > 0 {
		c.pool.Remove(evicted, false)
	}
	return nil
}
