package consensus

import (
	"context"
)

// fakeClient is a minimal RuntimeClient test double.
type fakeClient struct {
	evaluateResult bool
	evaluateErr    error
	index          uint64
	indexErr       error
}

func (f *fakeClient) DutyRoster(BlockID) (DutyRoster, error)    { return DutyRoster{}, nil }
func (f *fakeClient) RandomSeed(BlockID) ([]byte, error)        { return make([]byte, 32), nil }
func (f *fakeClient) Validators(BlockID) ([]ValidatorID, error) { return nil, nil }
func (f *fakeClient) Index(BlockID, ValidatorID) (uint64, error) {
	return f.index, f.indexErr
}
func (f *fakeClient) BuildBlock(BlockID, InherentData) (BlockBuilder, error) {
	return nil, nil
}
func (f *fakeClient) EvaluateBlock(BlockID, *Block) (bool, error) {
	return f.evaluateResult, f.evaluateErr
}

// fakePool is a minimal TransactionPool test double.
type fakePool struct {
	pending   []PendingTransaction
	submitted [][]byte
	submitErr error
}

func (f *fakePool) CullAndGetPending(_ context.Context, _ BlockID, fn func(pending []PendingTransaction)) error {
	fn(f.pending)
	return nil
}
func (f *fakePool) Remove([]Hash, bool) {}
func (f *fakePool) SubmitOne(_ context.Context, _ BlockID, encoded []byte) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, encoded)
	return nil
}

// fakeTable is a minimal CandidateTable test double: always reports the
// given includable count and resolves IncludableDelay immediately unless
// minimum exceeds it.
type fakeTable struct {
	includable int
}

func (f *fakeTable) IncludableCount() int { return f.includable }
func (f *fakeTable) WithProposal(fn func(candidates []CandidateReceipt)) []CandidateReceipt {
	fn(nil)
	return nil
}
func (f *fakeTable) IncludableDelay(ctx context.Context, minimum int) <-chan struct{} {
	done := make(chan struct{})
	if f.includable >= minimum {
		close(done)
		return done
	}
	go func() {
		<-ctx.Done()
		close(done)
	}()
	return done
}
