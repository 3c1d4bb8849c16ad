// Package zstd implements the ZSTD ORC compression codec.
package zstd

import (
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/orc-go/orc-go/format"
)

type Codec struct {
	// Level is the zstd encoder level used by Encode.
	Level zstd.EncoderLevel

	init    sync.Once
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	err     error
}

func (c *Codec) String() string { return "ZSTD" }

func (c *Codec) CompressionKind() format.CompressionKind {
	return format.CompressionZstd
}

func (c *Codec) load() error {
	c.init.Do(func() {
		level := c.Level
		if level == 0 {
			level = zstd.SpeedDefault
		}
		c.encoder, c.err = zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
		if c.err != nil {
			return
		}
		c.decoder, c.err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return c.err
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	if err := c.load(); err != nil {
		return dst[:0], err
	}
	return c.encoder.EncodeAll(src, dst[:0]), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	if err := c.load(); err != nil {
		return dst[:0], err
	}
	return c.decoder.DecodeAll(src, dst[:0])
}
