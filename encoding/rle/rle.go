// Package rle implements the run-length encodings used by ORC streams:
// the v1 and v2 integer encodings, the byte run-length encoding, and the
// boolean encoding layered on top of it.
//
// Decoders pull bytes lazily from their source and fill caller-provided
// slices; a source that ends before a requested value completes yields
// io.ErrUnexpectedEOF. Decoders are restartable only by constructing a new
// instance over a fresh source.
package rle

import (
	"errors"
	"io"
)

// Reader is the byte source decoders consume. *compress.BlockReader,
// *bytes.Reader and *bufio.Reader all satisfy it.
type Reader interface {
	io.Reader
	io.ByteReader
}

var (
	// ErrInvalidEncoding is wrapped by errors caused by malformed run
	// headers, out-of-table bit widths or inconsistent patch lists.
	ErrInvalidEncoding = errors.New("orc: invalid run length encoding")

	// ErrOverflow is wrapped by errors caused by decoded values that do
	// not fit the requested target type.
	ErrOverflow = errors.New("orc: decoded value overflows target type")
)

// readUvarint decodes an unsigned base-128 varint. It mirrors
// binary.ReadUvarint but reports truncation as io.ErrUnexpectedEOF
// regardless of how many bytes were consumed, since a varint is never the
// first item of a stream here.
func readUvarint(r io.ByteReader) (uint64, error) {
	var x uint64
	var s uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if s >= 64 || (s == 63 && b > 1) {
			return 0, ErrOverflow
		}
		x |= uint64(b&0x7f) << s
		if b&0x80 == 0 {
			return x, nil
		}
		s += 7
	}
}

// readSvarint decodes a zigzag-encoded signed base-128 varint.
func readSvarint(r io.ByteReader) (int64, error) {
	u, err := readUvarint(r)
	if err != nil {
		return 0, err
	}
	return zigzagDecode(u), nil
}

// zigzagDecode maps the unsigned zigzag representation back to a signed
// integer: 0 => 0, 1 => -1, 2 => 1, 3 => -2, ...
func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// zigzagEncode is the inverse of zigzagDecode. Exercised by the round-trip
// tests and the dictionary index sanity checks.
func zigzagEncode(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func readByte(r io.ByteReader) (byte, error) {
	b, err := r.ReadByte()
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return b, err
}
