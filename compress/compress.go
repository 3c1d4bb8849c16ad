// Package compress provides the compression codecs used by ORC streams.
//
// Codecs are resolved once when a decode context is constructed and passed
// explicitly to the readers that need them; there is no global registry.
package compress

import (
	"errors"

	"github.com/orc-go/orc-go/format"
)

// Codec is the interface implemented by the compression algorithms
// supported by ORC files.
//
// The Decode method is given a destination buffer whose capacity is at
// least the maximum decompressed block size of the file; codecs operating
// on raw blocks (lz4) rely on this bound.
type Codec interface {
	// String returns a human-readable representation of the codec.
	String() string

	// CompressionKind returns the format identifier of the codec.
	CompressionKind() format.CompressionKind

	// Encode compresses the src buffer into dst, returning the compressed
	// bytes. dst may be reused across calls to amortize allocations.
	Encode(dst, src []byte) ([]byte, error)

	// Decode decompresses the src buffer into dst, returning the
	// decompressed bytes.
	Decode(dst, src []byte) ([]byte, error)
}

// ErrCorrupted is wrapped by errors returned when a compressed block
// cannot be decoded, either because its framing is damaged or because the
// codec rejects its payload.
var ErrCorrupted = errors.New("orc: corrupted compressed block")
