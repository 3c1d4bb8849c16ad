// Package lz4 implements the LZ4 ORC compression codec.
//
// ORC stores raw lz4 blocks without frame headers, so decompression relies
// on the caller providing a destination buffer with capacity for the
// maximum decompressed block size.
package lz4

import (
	"github.com/pierrec/lz4/v4"

	"github.com/orc-go/orc-go/format"
)

type Codec struct{}

func (c *Codec) String() string { return "LZ4" }

func (c *Codec) CompressionKind() format.CompressionKind {
	return format.CompressionLz4
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	if bound := lz4.CompressBlockBound(len(src)); cap(dst) < bound {
		dst = make([]byte, bound)
	}
	dst = dst[:cap(dst)]
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(src, dst)
	if err != nil {
		return dst[:0], err
	}
	if n == 0 && len(src) > 0 {
		// Incompressible input: emit a single literals-only sequence so
		// the output remains a valid block.
		return appendLiteralBlock(dst[:0], src), nil
	}
	return dst[:n], nil
}

func appendLiteralBlock(dst, src []byte) []byte {
	length := len(src)
	if length < 15 {
		dst = append(dst, byte(length)<<4)
	} else {
		dst = append(dst, 0xf0)
		for length -= 15; length >= 255; length -= 255 {
			dst = append(dst, 0xff)
		}
		dst = append(dst, byte(length))
	}
	return append(dst, src...)
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	dst = dst[:cap(dst)]
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return dst[:0], err
	}
	return dst[:n], nil
}
