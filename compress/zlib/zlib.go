// Package zlib implements the ZLIB ORC compression codec.
//
// Despite the name inherited from the ORC specification, blocks are raw
// DEFLATE streams without the zlib header and checksum.
package zlib

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/orc-go/orc-go/format"
)

type Codec struct {
	// Level is the DEFLATE compression level used by Encode.
	Level int
}

func (c *Codec) String() string { return "ZLIB" }

func (c *Codec) CompressionKind() format.CompressionKind {
	return format.CompressionZlib
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = flate.DefaultCompression
	}
	buf := bytes.NewBuffer(dst[:0])
	w, err := flate.NewWriter(buf, level)
	if err != nil {
		return dst[:0], err
	}
	if _, err := w.Write(src); err != nil {
		return dst[:0], err
	}
	if err := w.Close(); err != nil {
		return dst[:0], err
	}
	return buf.Bytes(), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()
	buf := bytes.NewBuffer(dst[:0])
	if _, err := io.Copy(buf, r); err != nil {
		return dst[:0], err
	}
	return buf.Bytes(), nil
}
