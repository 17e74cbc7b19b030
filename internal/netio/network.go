// Package netio implements consensus.Network with in-process channels: a
// broadcast hub every session's participants register with, grounded on
// the teacher's internal/network.Server (peer map + broadcast-to-all
// loop) but with goroutine channels standing in for TCP connections,
// since this package targets a single-process demo/test topology rather
// than a real wire transport. Outbound messages round-trip through
// wireformat's protobuf-primitive codec so the encode/decode path is
// genuinely exercised even though peers share memory.
package netio

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/empower1/bftconsensus/internal/consensus"
	"github.com/empower1/bftconsensus/internal/wireformat"
)

// Hub is a process-wide in-memory broadcast fabric. Every validator in a
// session registers an inbox with the Hub via CommunicationFor;
// Output-side sends fan out to every other registered inbox.
type Hub struct {
	mu      sync.Mutex
	inboxes map[consensus.ValidatorID]chan consensus.Communication
	logger  *log.Logger
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{
		inboxes: make(map[consensus.ValidatorID]chan consensus.Communication),
		logger:  log.New(os.Stdout, "NETIO: ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// router is this package's consensus.TableRouter stub. A demo/single-
// process topology has no actual availability network, so LocalCandidate
// only logs the announcement and FetchBlockData sends no request: it
// blocks until ctx is done and returns ctx.Err(). Real deployments
// replace this router entirely.
type router struct {
	local consensus.ValidatorID
	hub   *Hub
}

func (r *router) LocalCandidate(candidate consensus.CandidateReceipt, _ []byte) {
	r.hub.logger.Printf("%s announces local candidate %s", r.local, candidate.CandidateHash)
}

func (r *router) FetchBlockData(ctx context.Context, candidate consensus.CandidateReceipt) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// CommunicationFor implements consensus.Network: it registers an inbox
// for every validator in the set that does not already have one and
// returns, for the local side (validators[0]), a fan-out output channel
// and the fan-in input channel, plus a cancel func that closes and
// deregisters the inboxes this call registered (spec.md §5 Cancellation,
// §9 tear-down signal).
func (h *Hub) CommunicationFor(validators []consensus.ValidatorID) (consensus.TableRouter, <-chan consensus.Communication, chan<- consensus.Communication, func()) {
	h.mu.Lock()
	registered := make([]consensus.ValidatorID, 0, len(validators))
	for _, v := range validators {
		if _, ok := h.inboxes[v]; ok {
			continue
		}
		h.inboxes[v] = make(chan consensus.Communication, 64)
		registered = append(registered, v)
	}
	h.mu.Unlock()

	local := consensus.ValidatorID{}
	if len(validators) > 0 {
		local = validators[0]
	}

	input := h.inboxes[local]
	output := make(chan consensus.Communication, 64)

	ctx, cancel := context.WithCancel(context.Background())
	go h.pump(ctx, local, validators, output)

	teardown := func() {
		cancel()
		h.mu.Lock()
		for _, v := range registered {
			if ch, ok := h.inboxes[v]; ok {
				close(ch)
				delete(h.inboxes, v)
			}
		}
		h.mu.Unlock()
	}

	return &router{local: local, hub: h}, input, output, teardown
}

// pump drains the local output channel and fans each message out to
// every other registered validator's inbox, round-tripping through
// wireformat so the wire codec participates even in this in-process
// loopback transport.
func (h *Hub) pump(ctx context.Context, local consensus.ValidatorID, peers []consensus.ValidatorID, output <-chan consensus.Communication) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-output:
			if !ok {
				return
			}
			wire := wireformat.EncodeCommunication(msg)
			decoded, err := wireformat.DecodeCommunication(wire)
			if err != nil {
				h.logger.Printf("dropping malformed outbound message from %s: %v", local, err)
				continue
			}
			h.broadcast(peers, local, decoded)
		}
	}
}

func (h *Hub) broadcast(peers []consensus.ValidatorID, from consensus.ValidatorID, msg consensus.Communication) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range peers {
		if v == from {
			continue
		}
		ch, ok := h.inboxes[v]
		if !ok {
			continue
		}
		select {
		case ch <- msg:
		default:
			h.logger.Printf("inbox for %s full, dropping message", v)
		}
	}
}
