package orc

import (
	"fmt"
	"io"
	"time"

	"github.com/orc-go/orc-go/compress"
	"github.com/orc-go/orc-go/format"
)

type streamID struct {
	column uint32
	kind   format.StreamKind
}

type streamSpan struct {
	offset int64
	length int64
}

// Stripe is one independently decodable row group. It resolves (column,
// stream kind) pairs to byte ranges of the file and hands out decompressing
// readers over them.
type Stripe struct {
	file     *File
	index    int
	info     format.StripeInformation
	footer   format.StripeFooter
	streams  map[streamID]streamSpan
	timezone *time.Location
}

// Stripe reads the footer of stripe i and resolves its stream layout.
func (f *File) Stripe(i int) (*Stripe, error) {
	if i < 0 || i >= len(f.footer.Stripes) {
		return nil, fmt.Errorf("orc: stripe index %d out of range [0, %d)", i, len(f.footer.Stripes))
	}
	info := f.footer.Stripes[i]

	raw := make([]byte, info.FooterLength)
	footerOffset := int64(info.Offset + info.IndexLength + info.DataLength)
	if _, err := f.r.ReadAt(raw, footerOffset); err != nil {
		return nil, fmt.Errorf("orc: reading stripe %d footer: %w", i, err)
	}
	decoded, err := compress.NewBlockReader(f.codec, raw, f.blockSize).ReadAll()
	if err != nil {
		return nil, err
	}
	footer, err := format.DecodeStripeFooter(decoded)
	if err != nil {
		return nil, err
	}

	s := &Stripe{
		file:    f,
		index:   i,
		info:    info,
		footer:  *footer,
		streams: make(map[streamID]streamSpan, len(footer.Streams)),
	}

	// Stream byte ranges are implied by declaration order, starting at the
	// stripe offset with the index streams first.
	offset := int64(info.Offset)
	for _, stream := range footer.Streams {
		id := streamID{column: stream.Column, kind: stream.Kind}
		s.streams[id] = streamSpan{offset: offset, length: int64(stream.Length)}
		offset += int64(stream.Length)
	}
	if end := footerOffset; offset > end {
		return nil, fmt.Errorf("%w: stripe %d streams span %d bytes beyond the data section",
			ErrTruncated, i, offset-end)
	}

	if tz := footer.WriterTimezone; tz != "" && tz != "UTC" {
		if s.timezone, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("orc: stripe %d writer timezone: %w", i, err)
		}
	}
	return s, nil
}

// NumRows returns the stripe's row count.
func (s *Stripe) NumRows() uint64 { return s.info.NumberOfRows }

// WriterTimezone returns the timezone the stripe was written in, or nil
// when the writer recorded none (implying UTC).
func (s *Stripe) WriterTimezone() *time.Location { return s.timezone }

// Footer returns the stripe's stream list and column encodings.
func (s *Stripe) Footer() format.StripeFooter { return s.footer }

func (s *Stripe) encoding(column int) (format.ColumnEncoding, error) {
	if column < 0 || column >= len(s.footer.Columns) {
		return format.ColumnEncoding{}, fmt.Errorf("%w: stripe %d has no encoding for column %d",
			ErrInvalidEncoding, s.index, column)
	}
	return s.footer.Columns[column], nil
}

// stream opens a decompressing reader over the stream identified by
// (column, kind), or nil when the stripe does not carry that stream.
func (s *Stripe) stream(column int, kind format.StreamKind) (*compress.BlockReader, error) {
	span, ok := s.streams[streamID{column: uint32(column), kind: kind}]
	if !ok {
		return nil, nil
	}
	raw := make([]byte, span.length)
	if _, err := s.file.r.ReadAt(raw, span.offset); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = fmt.Errorf("%w: stream %s of column %d ends beyond the file", ErrTruncated, kind, column)
		}
		return nil, err
	}
	return compress.NewBlockReader(s.file.codec, raw, s.file.blockSize), nil
}

// mustStream is stream for the kinds a column's encoding requires.
func (s *Stripe) mustStream(column int, kind format.StreamKind) (*compress.BlockReader, error) {
	r, err := s.stream(column, kind)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: column %d is missing its %s stream",
			ErrInvalidEncoding, column, kind)
	}
	return r, nil
}

// timestampBase returns the epoch seconds of the timestamp zero point,
// 2015-01-01 midnight in the stripe's writer timezone.
func (s *Stripe) timestampBase() int64 {
	if s.timezone == nil {
		return orcEpochSeconds
	}
	return time.Date(2015, time.January, 1, 0, 0, 0, 0, s.timezone).Unix()
}

// Decoder builds a fresh decode context over the stripe. Decoders are
// stateful and single-use; re-reading a stripe requires a new one.
func (s *Stripe) Decoder(options ...DecodeOption) (*StripeDecoder, error) {
	config := decodeConfig{batchSize: DefaultBatchSize}
	for _, opt := range options {
		opt(&config)
	}
	if config.batchSize <= 0 {
		return nil, fmt.Errorf("orc: batch size %d must be positive", config.batchSize)
	}

	root := s.file.schema
	if config.columns != nil {
		projected, err := projectSchema(root, config.columns)
		if err != nil {
			return nil, err
		}
		root = projected
	}
	decoder, err := newColumnDecoder(s, root)
	if err != nil {
		return nil, err
	}
	return &StripeDecoder{
		root:      decoder,
		batchSize: config.batchSize,
		remaining: int(s.info.NumberOfRows),
	}, nil
}

// StripeDecoder drives batch production for one stripe.
type StripeDecoder struct {
	root      columnDecoder
	batchSize int
	remaining int
}

// NextBatch decodes the next window of rows into a Batch, returning io.EOF
// once the stripe's rows are exhausted. The returned batch and its buffers
// are reused by the following call.
func (d *StripeDecoder) NextBatch() (*Batch, error) {
	if d.remaining == 0 {
		return nil, io.EOF
	}
	n := min(d.batchSize, d.remaining)
	batch, err := d.root.nextBatch(n, nil)
	if err != nil {
		return nil, err
	}
	d.remaining -= n
	return batch, nil
}

// projectSchema narrows the root struct to the named fields, keeping
// schema order.
func projectSchema(root *Type, names []string) (*Type, error) {
	selected := make(map[string]bool, len(names))
	for _, name := range names {
		if root.Field(name) == nil {
			return nil, fmt.Errorf("orc: no column named %q in %s", name, root)
		}
		selected[name] = true
	}
	projected := &Type{ID: root.ID, Kind: root.Kind}
	for i, name := range root.Names {
		if selected[name] {
			projected.Names = append(projected.Names, name)
			projected.Children = append(projected.Children, root.Children[i])
		}
	}
	return projected, nil
}
