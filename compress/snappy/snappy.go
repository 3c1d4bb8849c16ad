// Package snappy implements the SNAPPY ORC compression codec.
package snappy

import (
	"github.com/klauspost/compress/snappy"

	"github.com/orc-go/orc-go/format"
)

type Codec struct{}

func (c *Codec) String() string { return "SNAPPY" }

func (c *Codec) CompressionKind() format.CompressionKind {
	return format.CompressionSnappy
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return snappy.Encode(dst, src), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return snappy.Decode(dst, src)
}
