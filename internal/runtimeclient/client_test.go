package runtimeclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empower1/bftconsensus/internal/consensus"
)

func testChain(t *testing.T) (*Chain, []consensus.ValidatorID) {
	t.Helper()
	validators := []consensus.ValidatorID{{1}, {2}, {3}}
	genesis := &consensus.Block{Header: consensus.Header{Number: 0}}
	c, err := New(validators, genesis)
	require.NoError(t, err)
	return c, validators
}

func TestChain_ValidatorsAndHead(t *testing.T) {
	c, validators := testChain(t)
	got, err := c.Validators(consensus.BlockID{})
	require.NoError(t, err)
	assert.Equal(t, validators, got)
	assert.Equal(t, uint64(0), c.Head().Header.Number)
}

func TestChain_BuildBlockRequiresCurrentHead(t *testing.T) {
	c, _ := testChain(t)
	_, err := c.BuildBlock(consensus.BlockID{Hash: consensus.Hash{0xFF}}, consensus.InherentData{})
	assert.Error(t, err)
}

func TestChain_BuildAndBakeBlock(t *testing.T) {
	c, _ := testChain(t)
	headHash := BlockHash(c.Head())

	builder, err := c.BuildBlock(consensus.BlockID{Hash: headHash}, consensus.InherentData{Timestamp: 100})
	require.NoError(t, err)
	require.NoError(t, builder.PushExtrinsic([]byte{1, 2, 3}))

	block, err := builder.Bake()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), block.Header.Number)
	assert.Equal(t, headHash, block.Header.ParentHash)
	assert.Len(t, block.Extrinsics, 1)
}

func TestChain_BuilderRejectsEmptyExtrinsic(t *testing.T) {
	c, _ := testChain(t)
	headHash := BlockHash(c.Head())
	builder, err := c.BuildBlock(consensus.BlockID{Hash: headHash}, consensus.InherentData{})
	require.NoError(t, err)
	assert.Error(t, builder.PushExtrinsic(nil))
}

func TestChain_EvaluateBlockAcceptsWellFormedProposal(t *testing.T) {
	c, _ := testChain(t)
	headHash := BlockHash(c.Head())
	builder, err := c.BuildBlock(consensus.BlockID{Hash: headHash}, consensus.InherentData{Timestamp: 100})
	require.NoError(t, err)
	block, err := builder.Bake()
	require.NoError(t, err)

	ok, err := c.EvaluateBlock(consensus.BlockID{Hash: headHash}, block)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChain_AcceptAdvancesHead(t *testing.T) {
	c, _ := testChain(t)
	headHash := BlockHash(c.Head())
	builder, err := c.BuildBlock(consensus.BlockID{Hash: headHash}, consensus.InherentData{Timestamp: 100})
	require.NoError(t, err)
	block, err := builder.Bake()
	require.NoError(t, err)

	c.Accept(block)
	assert.Equal(t, uint64(1), c.Head().Header.Number)
}
