package compress

import (
	"fmt"
	"io"
)

// DefaultBlockSize is the maximum decompressed block size assumed when the
// file does not declare one. The ORC specification states 256 KiB as the
// default.
const DefaultBlockSize = 256 * 1024

// BlockReader reads one logical stream stored as a sequence of compressed
// blocks, exposing the decompressed bytes through io.Reader/io.ByteReader.
//
// Each block starts with a 3-byte little-endian header; the low bit flags a
// block stored in its original uncompressed form and the remaining 23 bits
// give the byte length of the block body. Blocks are pulled lazily as the
// reader is consumed.
//
// A nil codec bypasses block framing entirely and serves the raw bytes,
// which is how streams of uncompressed files are stored.
type BlockReader struct {
	codec        Codec
	src          []byte
	maxBlockSize int
	cur          []byte
	scratch      []byte
}

// NewBlockReader returns a reader over the decompressed contents of data.
// maxBlockSize bounds the decompressed size of a single block; values <= 0
// select DefaultBlockSize.
func NewBlockReader(codec Codec, data []byte, maxBlockSize int) *BlockReader {
	if maxBlockSize <= 0 {
		maxBlockSize = DefaultBlockSize
	}
	return &BlockReader{
		codec:        codec,
		src:          data,
		maxBlockSize: maxBlockSize,
	}
}

// next loads the next decompressed chunk into r.cur, returning io.EOF when
// the stream is exhausted at a block boundary.
func (r *BlockReader) next() error {
	if len(r.src) == 0 {
		return io.EOF
	}
	if r.codec == nil {
		r.cur, r.src = r.src, nil
		return nil
	}
	if len(r.src) < 3 {
		return fmt.Errorf("%w: truncated block header", ErrCorrupted)
	}
	v := uint32(r.src[0]) | uint32(r.src[1])<<8 | uint32(r.src[2])<<16
	original := v&1 != 0
	length := int(v >> 1)
	if length > r.maxBlockSize {
		return fmt.Errorf("%w: block length %d exceeds maximum block size %d",
			ErrCorrupted, length, r.maxBlockSize)
	}
	if length > len(r.src)-3 {
		return fmt.Errorf("%w: block length %d exceeds remaining stream length %d",
			ErrCorrupted, length, len(r.src)-3)
	}
	body := r.src[3 : 3+length]
	r.src = r.src[3+length:]
	if original {
		r.cur = body
		return nil
	}
	if cap(r.scratch) < r.maxBlockSize {
		r.scratch = make([]byte, r.maxBlockSize)
	}
	chunk, err := r.codec.Decode(r.scratch[:0], body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupted, r.codec, err)
	}
	r.scratch = chunk[:0:cap(chunk)]
	r.cur = chunk
	return nil
}

// Read implements io.Reader.
func (r *BlockReader) Read(p []byte) (int, error) {
	for len(r.cur) == 0 {
		if err := r.next(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	return n, nil
}

// ReadByte implements io.ByteReader.
func (r *BlockReader) ReadByte() (byte, error) {
	for len(r.cur) == 0 {
		if err := r.next(); err != nil {
			return 0, err
		}
	}
	b := r.cur[0]
	r.cur = r.cur[1:]
	return b, nil
}

// Skip discards n decompressed bytes, decompressing any blocks they span.
func (r *BlockReader) Skip(n int) error {
	for n > 0 {
		if len(r.cur) == 0 {
			if err := r.next(); err != nil {
				if err == io.EOF {
					return io.ErrUnexpectedEOF
				}
				return err
			}
		}
		m := min(n, len(r.cur))
		r.cur = r.cur[m:]
		n -= m
	}
	return nil
}

// ReadAll drains the remaining decompressed bytes. It is used for short
// metadata sections such as stripe footers.
func (r *BlockReader) ReadAll() ([]byte, error) {
	var out []byte
	for {
		if len(r.cur) > 0 {
			out = append(out, r.cur...)
			r.cur = nil
		}
		if err := r.next(); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, err
		}
	}
}
