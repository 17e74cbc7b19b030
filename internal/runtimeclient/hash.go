package runtimeclient

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"time"

	"github.com/empower1/bftconsensus/internal/consensus"
)

// BlockHash computes the demo chain's block identifier: SHA-256 of the
// block's gob encoding. A real runtime derives this from the codec named
// in spec.md §1; this stands in for "some canonical block hash".
func BlockHash(block *consensus.Block) consensus.Hash {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(block)
	return consensus.Hash(sha256.Sum256(buf.Bytes()))
}

func blockHash(block *consensus.Block) consensus.Hash {
	return BlockHash(block)
}

func unixNow() time.Time {
	return time.Now()
}
