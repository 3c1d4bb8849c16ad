// Package orc reads ORC files into typed, null-aware columnar batches.
//
// A File is opened from an io.ReaderAt and exposes the file schema and its
// stripes. Each stripe is decoded through its own StripeDecoder, which
// produces batches of up to a configured number of rows per call. Stripe
// decoders share no mutable state, so distinct stripes of the same file
// may be decoded concurrently.
package orc

import (
	"fmt"
	"io"

	"github.com/orc-go/orc-go/compress"
	"github.com/orc-go/orc-go/compress/lz4"
	"github.com/orc-go/orc-go/compress/snappy"
	"github.com/orc-go/orc-go/compress/zlib"
	"github.com/orc-go/orc-go/compress/zstd"
	"github.com/orc-go/orc-go/format"
)

const (
	magic = "ORC"

	// The postscript length is stored in the final byte, so the tail of
	// the file is read in one speculative chunk sized to cover the
	// postscript and a typical footer.
	defaultTailSize = 16 * 1024
)

// File is a parsed ORC file. The underlying reader must stay usable for as
// long as stripes of the file are being decoded.
type File struct {
	r          io.ReaderAt
	size       int64
	postScript format.PostScript
	footer     format.Footer
	schema     *Type
	codec      compress.Codec
	blockSize  int
}

// OpenFile parses the metadata tail of an ORC file available through r.
func OpenFile(r io.ReaderAt, size int64) (*File, error) {
	if size < int64(len(magic))+1 {
		return nil, fmt.Errorf("%w: file of %d bytes is too small", ErrTruncated, size)
	}

	tailSize := min(size, defaultTailSize)
	tail := make([]byte, tailSize)
	if _, err := r.ReadAt(tail, size-tailSize); err != nil {
		return nil, fmt.Errorf("orc: reading file tail: %w", err)
	}

	psLen := int64(tail[len(tail)-1])
	if psLen+1 > tailSize {
		return nil, fmt.Errorf("%w: postscript of %d bytes exceeds file size", ErrTruncated, psLen)
	}
	ps, err := format.DecodePostScript(tail[tailSize-1-psLen : tailSize-1])
	if err != nil {
		return nil, err
	}
	if ps.Magic != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidEncoding, ps.Magic)
	}

	f := &File{
		r:          r,
		size:       size,
		postScript: *ps,
		blockSize:  int(ps.CompressionBlockSize),
	}
	if f.codec, err = newCodec(ps.Compression); err != nil {
		return nil, err
	}

	footerEnd := size - 1 - psLen
	footerStart := footerEnd - int64(ps.FooterLength)
	if footerStart < 0 {
		return nil, fmt.Errorf("%w: footer of %d bytes exceeds file size", ErrTruncated, ps.FooterLength)
	}
	var footerRaw []byte
	if footerStart >= size-tailSize {
		footerRaw = tail[footerStart-(size-tailSize) : footerEnd-(size-tailSize)]
	} else {
		footerRaw = make([]byte, ps.FooterLength)
		if _, err := r.ReadAt(footerRaw, footerStart); err != nil {
			return nil, fmt.Errorf("orc: reading footer: %w", err)
		}
	}
	footerBytes, err := compress.NewBlockReader(f.codec, footerRaw, f.blockSize).ReadAll()
	if err != nil {
		return nil, err
	}
	footer, err := format.DecodeFooter(footerBytes)
	if err != nil {
		return nil, err
	}
	f.footer = *footer
	if f.schema, err = newSchema(f.footer.Types); err != nil {
		return nil, err
	}
	return f, nil
}

// newCodec maps the postscript compression kind to a block codec; None
// maps to nil, which bypasses block framing.
func newCodec(kind format.CompressionKind) (compress.Codec, error) {
	switch kind {
	case format.CompressionNone:
		return nil, nil
	case format.CompressionZlib:
		return new(zlib.Codec), nil
	case format.CompressionSnappy:
		return new(snappy.Codec), nil
	case format.CompressionLz4:
		return new(lz4.Codec), nil
	case format.CompressionZstd:
		return new(zstd.Codec), nil
	default:
		return nil, fmt.Errorf("orc: unsupported compression kind %s", kind)
	}
}

// Schema returns the root of the logical type tree, always a struct.
func (f *File) Schema() *Type { return f.schema }

// NumRows returns the total row count of the file.
func (f *File) NumRows() uint64 { return f.footer.NumberOfRows }

// NumStripes returns the number of stripes in the file.
func (f *File) NumStripes() int { return len(f.footer.Stripes) }

// Compression returns the file's compression kind.
func (f *File) Compression() format.CompressionKind { return f.postScript.Compression }

// Metadata returns the application-defined key/value pairs of the footer.
func (f *File) Metadata() []format.UserMetadataItem { return f.footer.Metadata }

// WriterVersion returns the writer version recorded in the postscript.
func (f *File) WriterVersion() uint32 { return f.postScript.WriterVersion }

// Version returns the file format version pair from the postscript.
func (f *File) Version() []uint32 { return f.postScript.Version }

// StripeInfo returns the location metadata for stripe i.
func (f *File) StripeInfo(i int) format.StripeInformation { return f.footer.Stripes[i] }

// decodeConfig carries the per-decoder options.
type decodeConfig struct {
	batchSize int
	columns   []string
}

// DefaultBatchSize is the number of rows produced per batch unless
// overridden with BatchSize.
const DefaultBatchSize = 8192

// DecodeOption configures a StripeDecoder.
type DecodeOption func(*decodeConfig)

// BatchSize sets the maximum number of rows per decoded batch.
func BatchSize(n int) DecodeOption {
	return func(c *decodeConfig) { c.batchSize = n }
}

// Columns projects the decode to the named top-level fields, in schema
// order. An unknown name is an error at decoder construction.
func Columns(names ...string) DecodeOption {
	return func(c *decodeConfig) { c.columns = names }
}
