// Package uncompressed implements the compress.Codec interface for files
// written without compression.
package uncompressed

import (
	"github.com/orc-go/orc-go/format"
)

type Codec struct{}

func (c *Codec) String() string { return "UNCOMPRESSED" }

func (c *Codec) CompressionKind() format.CompressionKind {
	return format.CompressionNone
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}
