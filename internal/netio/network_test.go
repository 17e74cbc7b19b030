package netio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/empower1/bftconsensus/internal/consensus"
)

func TestHub_BroadcastsToOtherRegisteredValidators(t *testing.T) {
	hub := NewHub()
	validators := []consensus.ValidatorID{{1}, {2}, {3}}

	_, inputA, outputA, cancelA := hub.CommunicationFor(validators)
	defer cancelA()
	_, inputB, _, cancelB := hub.CommunicationFor([]consensus.ValidatorID{validators[1], validators[0], validators[2]})
	defer cancelB()

	outputA <- consensus.Communication{Round: 1, Kind: "prepare", Body: []byte("hi")}

	select {
	case msg := <-inputB:
		assert.Equal(t, uint64(1), msg.Round)
		assert.Equal(t, "prepare", msg.Kind)
		assert.Equal(t, []byte("hi"), msg.Body)
	case <-time.After(time.Second):
		t.Fatal("broadcast message never reached the other validator's inbox")
	}

	select {
	case <-inputA:
		t.Fatal("a validator's own output must not loop back to its own inbox")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHub_CancelTearsDownInbox(t *testing.T) {
	hub := NewHub()
	validators := []consensus.ValidatorID{{1}, {2}}
	_, input, _, cancel := hub.CommunicationFor(validators)
	cancel()

	_, ok := <-input
	assert.False(t, ok, "cancel must close the registered inbox")
}

func TestRouter_FetchBlockDataRespectsCancellation(t *testing.T) {
	hub := NewHub()
	validators := []consensus.ValidatorID{{1}, {2}}
	router, _, _, cancel := hub.CommunicationFor(validators)
	defer cancel()

	ctx, cancelFetch := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := router.FetchBlockData(ctx, consensus.CandidateReceipt{CandidateHash: consensus.Hash{1}})
		done <- err
	}()
	cancelFetch()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("FetchBlockData did not unblock on context cancellation")
	}
}
