package consensus

import (
	"crypto/ed25519"
	"fmt"
	"log"

	"github.com/benbjohnson/clock"
	"golang.org/x/crypto/blake2b"
)

// ProposerFactory is the long-lived object that builds a Proposer for
// each new parent block (spec.md §4.7). It owns the collaborators that
// outlive any single session: the runtime client, pool, network and the
// process-wide offline tracker.
type ProposerFactory struct {
	clock   clock.Clock
	client  RuntimeClient
	pool    TransactionPool
	network Network
	offline *OfflineTracker
	localID ValidatorID
	signKey ed25519.PrivateKey
	logger  *log.Logger
}

// ProposerFactoryConfig groups a ProposerFactory's dependencies.
type ProposerFactoryConfig struct {
	Clock   clock.Clock // nil uses the real wall clock
	Client  RuntimeClient
	Pool    TransactionPool
	Network Network
	LocalID ValidatorID
	SignKey ed25519.PrivateKey
	Logger  *log.Logger
}

// NewProposerFactory validates a ProposerFactoryConfig and returns a ready
// factory with a fresh, empty OfflineTracker shared across every session
// it subsequently builds.
func NewProposerFactory(cfg ProposerFactoryConfig) (*ProposerFactory, error) {
	if cfg.Client == nil || cfg.Pool == nil || cfg.Network == nil {
		return nil, fmt.Errorf("%w: client, pool and network are required", ErrNotConfigured)
	}
	if len(cfg.SignKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: signing key must be an ed25519 private key", ErrNotConfigured)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = defaultLogger("PROPOSER-FACTORY")
	}
	return &ProposerFactory{
		clock:   clk,
		client:  cfg.Client,
		pool:    cfg.Pool,
		network: cfg.Network,
		offline: NewOfflineTracker(),
		localID: cfg.LocalID,
		signKey: cfg.SignKey,
		logger:  logger,
	}, nil
}

// Handle bundles a freshly built Proposer with the teardown function the
// caller must invoke once the session ends (spec.md §4.7, §9 tear-down
// signal, restored from original_source/'s drop-cancellation).
type Handle struct {
	Proposer *Proposer
	Router   TableRouter
	Input    <-chan Communication
	Output   chan<- Communication
	Cancel   func()
}

// Init builds a Proposer for the given parent: it queries the runtime for
// the duty roster, random seed and validator set, hashes the seed with
// BLAKE2-256, records the validator set in the shared offline tracker,
// opens a network communication session, and wires everything into a new
// Proposer (spec.md §4.7).
func (f *ProposerFactory) Init(parentHash Hash, parentNumber uint64, table CandidateTable, thresholds []InclusionThreshold) (*Handle, error) {
	parent := BlockID{Hash: parentHash}

	if _, err := f.client.DutyRoster(parent); err != nil {
		return nil, fmt.Errorf("%w: duty roster: %v", ErrClient, err)
	}

	rawSeed, err := f.client.RandomSeed(parent)
	if err != nil {
		return nil, fmt.Errorf("%w: random seed: %v", ErrClient, err)
	}
	seed := blake2b.Sum256(rawSeed)

	validators, err := f.client.Validators(parent)
	if err != nil {
		return nil, fmt.Errorf("%w: validators: %v", ErrClient, err)
	}
	f.offline.NoteNewBlock(validators)

	router, input, output, cancel := f.network.CommunicationFor(validators)

	session := &Session{
		ParentHash:   parentHash,
		ParentNumber: parentNumber,
		ParentID:     parent,
		RandomSeed:   seed,
		Validators:   validators,
		LocalID:      f.localID,
	}

	reporter, err := NewMisbehaviorReporter(f.localID, f.signKey, f.pool, f.client, f.logger)
	if err != nil {
		cancel()
		return nil, err
	}

	proposer, err := NewProposer(ProposerConfig{
		Clock:     f.clock,
		Session:   session,
		Client:    f.client,
		Pool:      f.pool,
		Table:     table,
		Offline:   f.offline,
		Inclusion: NewDynamicInclusion(f.clock, thresholds),
		Reporter:  reporter,
		Logger:    f.logger,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	return &Handle{Proposer: proposer, Router: router, Input: input, Output: output, Cancel: cancel}, nil
}
