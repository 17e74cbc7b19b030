// Package wireformat encodes the BFT protocol envelope
// (consensus.Communication) for transport. It is grounded on the
// teacher's use of google.golang.org/protobuf (internal/core/mempool.go
// marshals pb.Transaction with proto.Marshal) but, since this package has
// no .proto-generated message types of its own, it encodes directly with
// protowire's low-level varint/length-delimited primitives rather than
// inventing a parallel ad hoc binary format.
package wireformat

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/empower1/bftconsensus/internal/consensus"
)

const (
	fieldRound = protowire.Number(1)
	fieldFrom  = protowire.Number(2)
	fieldKind  = protowire.Number(3)
	fieldBody  = protowire.Number(4)
)

// EncodeCommunication serializes a Communication envelope.
func EncodeCommunication(c consensus.Communication) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldRound, protowire.VarintType)
	b = protowire.AppendVarint(b, c.Round)
	b = protowire.AppendTag(b, fieldFrom, protowire.BytesType)
	b = protowire.AppendBytes(b, c.From[:])
	b = protowire.AppendTag(b, fieldKind, protowire.BytesType)
	b = protowire.AppendString(b, c.Kind)
	b = protowire.AppendTag(b, fieldBody, protowire.BytesType)
	b = protowire.AppendBytes(b, c.Body)
	return b
}

// DecodeCommunication is the inverse of EncodeCommunication.
func DecodeCommunication(data []byte) (consensus.Communication, error) {
	var c consensus.Communication
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return c, fmt.Errorf("wireformat: malformed tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case fieldRound:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return c, fmt.Errorf("wireformat: malformed round: %w", protowire.ParseError(n))
			}
			c.Round = v
			data = data[n:]
		case fieldFrom:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return c, fmt.Errorf("wireformat: malformed from: %w", protowire.ParseError(n))
			}
			copy(c.From[:], v)
			data = data[n:]
		case fieldKind:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return c, fmt.Errorf("wireformat: malformed kind: %w", protowire.ParseError(n))
			}
			c.Kind = string(v)
			data = data[n:]
		case fieldBody:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return c, fmt.Errorf("wireformat: malformed body: %w", protowire.ParseError(n))
			}
			c.Body = append([]byte(nil), v...)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return c, fmt.Errorf("wireformat: malformed field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return c, nil
}
