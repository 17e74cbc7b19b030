package wireformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empower1/bftconsensus/internal/consensus"
)

func TestCommunication_RoundTrips(t *testing.T) {
	in := consensus.Communication{
		Round: 42,
		From:  consensus.ValidatorID{1, 2, 3},
		Kind:  "prepare",
		Body:  []byte("payload"),
	}

	encoded := EncodeCommunication(in)
	out, err := DecodeCommunication(encoded)
	require.NoError(t, err)

	assert.Equal(t, in.Round, out.Round)
	assert.Equal(t, in.From, out.From)
	assert.Equal(t, in.Kind, out.Kind)
	assert.Equal(t, in.Body, out.Body)
}

func TestCommunication_EmptyBody(t *testing.T) {
	in := consensus.Communication{Round: 1, Kind: "commit"}
	out, err := DecodeCommunication(EncodeCommunication(in))
	require.NoError(t, err)
	assert.Equal(t, in.Round, out.Round)
	assert.Equal(t, in.Kind, out.Kind)
}

func TestDecodeCommunication_RejectsGarbage(t *testing.T) {
	_, err := DecodeCommunication([]byte{0xFF, 0xFF, 0xFF})
	assert.Error(t, err)
}
