package orc

import (
	"errors"

	"github.com/orc-go/orc-go/compress"
	"github.com/orc-go/orc-go/encoding/rle"
)

var (
	// ErrTruncated is wrapped by errors caused by a stream, block or file
	// region ending before the structure being decoded completes.
	ErrTruncated = errors.New("orc: truncated data")

	// ErrInvalidEncoding is wrapped by errors caused by malformed run
	// headers, unknown encoding codes or inconsistent stream metadata.
	ErrInvalidEncoding = rle.ErrInvalidEncoding

	// ErrOverflow is wrapped by errors caused by decoded values that do
	// not fit the type they decode into.
	ErrOverflow = rle.ErrOverflow

	// ErrCompression is wrapped by errors caused by compressed blocks
	// that the configured codec rejects.
	ErrCompression = compress.ErrCorrupted

	// ErrRowCountMismatch is wrapped by errors caused by nested column
	// streams whose lengths disagree with the declared row structure.
	ErrRowCountMismatch = errors.New("orc: row count mismatch")
)
