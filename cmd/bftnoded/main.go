// Command bftnoded runs a demo BFT block proposer and vote evaluator
// node: an in-memory chain, transaction pool and candidate table wired
// to the consensus package, driven by the cobra CLI in cmd/bftnoded/cli.
// Grounded on the teacher's cmd/empower1d/main.go wiring order (engine,
// core state, network, then the operator-facing loop/CLI).
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log"
	"os"

	"github.com/empower1/bftconsensus/internal/candidatetable"
	"github.com/empower1/bftconsensus/internal/consensus"
	"github.com/empower1/bftconsensus/internal/netio"
	"github.com/empower1/bftconsensus/internal/runtimeclient"
	"github.com/empower1/bftconsensus/internal/txpool"

	nodecli "github.com/empower1/bftconsensus/cmd/bftnoded/cli"
)

const demoValidatorCount = 4

func main() {
	fmt.Println("Starting bftnoded...")

	validators, signKeys, err := generateDemoValidators(demoValidatorCount)
	if err != nil {
		log.Fatalf("failed to generate demo validator keys: %v", err)
	}
	local := validators[0]
	localKey := signKeys[0]

	genesis := &consensus.Block{Header: consensus.Header{Number: 0}}
	chain, err := runtimeclient.New(validators, genesis)
	if err != nil {
		log.Fatalf("failed to initialize chain: %v", err)
	}
	fmt.Printf("-> chain initialized at height %d with %d validators\n", chain.Head().Header.Number, len(validators))

	pool := txpool.New(decodeExtrinsic)
	fmt.Println("-> transaction pool initialized")

	table := candidatetable.New()
	hub := netio.NewHub()

	factory, err := consensus.NewProposerFactory(consensus.ProposerFactoryConfig{
		Client:  chain,
		Pool:    pool,
		Network: hub,
		LocalID: local,
		SignKey: localKey,
	})
	if err != nil {
		log.Fatalf("failed to initialize proposer factory: %v", err)
	}
	fmt.Println("-> proposer factory initialized")

	node := &nodecli.Node{Chain: chain, Factory: factory, Table: table}
	if err := nodecli.NewCLI(node).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// generateDemoValidators creates n fresh ed25519 identities for a
// single-process demo session.
func generateDemoValidators(n int) ([]consensus.ValidatorID, []ed25519.PrivateKey, error) {
	validators := make([]consensus.ValidatorID, n)
	keys := make([]ed25519.PrivateKey, n)
	for i := 0; i < n; i++ {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, nil, err
		}
		copy(validators[i][:], pub)
		keys[i] = priv
	}
	return validators, keys, nil
}

// decodeExtrinsic is the demo pool's Decoder: it treats a submitted
// extrinsic as a gob-encoded consensus.UnsignedExtrinsic wrapped in a
// consensus.SignedExtrinsic and verifies the signature before accepting
// it.
func decodeExtrinsic(encoded []byte) (consensus.ValidatorID, uint64, error) {
	signed, err := consensus.DecodeSigned(encoded)
	if err != nil {
		return consensus.ValidatorID{}, 0, err
	}
	unsignedBytes, err := consensus.EncodeUnsignedForVerification(signed.Unsigned)
	if err != nil {
		return consensus.ValidatorID{}, 0, err
	}
	if !ed25519.Verify(signed.Unsigned.Signed[:], unsignedBytes, signed.Signature[:]) {
		return consensus.ValidatorID{}, 0, fmt.Errorf("bftnoded: invalid extrinsic signature")
	}
	return signed.Unsigned.Signed, signed.Unsigned.Index, nil
}
