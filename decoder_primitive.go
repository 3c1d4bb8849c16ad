package orc

import (
	"fmt"
	"io"
	"math"

	"github.com/orc-go/orc-go/compress"
	"github.com/orc-go/orc-go/encoding/rle"
	"github.com/orc-go/orc-go/format"
	"github.com/orc-go/orc-go/internal/unsafecast"
)

type booleanColumnDecoder struct {
	typ     *Type
	present *presentDecoder
	data    *rle.BooleanDecoder
	batch   Batch
}

func newBooleanColumnDecoder(s *Stripe, t *Type) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	data, err := s.mustStream(t.ID, format.StreamData)
	if err != nil {
		return nil, err
	}
	return &booleanColumnDecoder{
		typ:     t,
		present: present,
		data:    rle.NewBooleanDecoder(data),
		batch:   Batch{Type: t},
	}, nil
}

func (d *booleanColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present
	b.Bools = resize(b.Bools, n)
	if present == nil {
		if err := d.data.Decode(b.Bools); err != nil {
			return nil, err
		}
		return b, nil
	}
	k := countPresent(present, n)
	if err := d.data.Decode(b.Bools[:k]); err != nil {
		return nil, err
	}
	spread(b.Bools, present, k)
	return b, nil
}

type byteColumnDecoder struct {
	typ     *Type
	present *presentDecoder
	data    *rle.ByteDecoder
	scratch []byte
	batch   Batch
}

func newByteColumnDecoder(s *Stripe, t *Type) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	data, err := s.mustStream(t.ID, format.StreamData)
	if err != nil {
		return nil, err
	}
	return &byteColumnDecoder{
		typ:     t,
		present: present,
		data:    rle.NewByteDecoder(data),
		batch:   Batch{Type: t},
	}, nil
}

func (d *byteColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present
	b.Int8s = resize(b.Int8s, n)
	k := countPresent(present, n)
	d.scratch = resize(d.scratch, k)
	if err := d.data.Decode(d.scratch); err != nil {
		return nil, err
	}
	j := 0
	for i := 0; i < n; i++ {
		if present == nil || present[i] {
			b.Int8s[i] = int8(d.scratch[j])
			j++
		} else {
			b.Int8s[i] = 0
		}
	}
	return b, nil
}

type intColumnDecoder struct {
	typ     *Type
	present *presentDecoder
	data    intDecoder
	scratch []int64
	batch   Batch
}

func newIntColumnDecoder(s *Stripe, t *Type, encoding format.ColumnEncoding) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	data, err := s.mustStream(t.ID, format.StreamData)
	if err != nil {
		return nil, err
	}
	return &intColumnDecoder{
		typ:     t,
		present: present,
		data:    newIntDecoder(data, encoding.Kind, true),
		batch:   Batch{Type: t},
	}, nil
}

func (d *intColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present

	d.scratch = resize(d.scratch, n)
	if err := decodeSpacedInt64(d.data, d.scratch, present); err != nil {
		return nil, err
	}

	// Narrowing below the stored 64-bit width is strict: values outside
	// the target range are corruption, not candidates for truncation.
	switch d.typ.Kind {
	case format.TypeShort:
		b.Int16s = resize(b.Int16s, n)
		for i, v := range d.scratch {
			if v < math.MinInt16 || v > math.MaxInt16 {
				return nil, fmt.Errorf("%w: value %d does not fit smallint column %d",
					ErrOverflow, v, d.typ.ID)
			}
			b.Int16s[i] = int16(v)
		}
	case format.TypeInt:
		b.Int32s = resize(b.Int32s, n)
		for i, v := range d.scratch {
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, fmt.Errorf("%w: value %d does not fit int column %d",
					ErrOverflow, v, d.typ.ID)
			}
			b.Int32s[i] = int32(v)
		}
	default:
		b.Int64s = resize(b.Int64s, n)
		copy(b.Int64s, d.scratch)
	}
	return b, nil
}

type floatColumnDecoder struct {
	typ     *Type
	present *presentDecoder
	data    *compress.BlockReader
	scratch []byte
	batch   Batch
}

func newFloatColumnDecoder(s *Stripe, t *Type) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	data, err := s.mustStream(t.ID, format.StreamData)
	if err != nil {
		return nil, err
	}
	return &floatColumnDecoder{
		typ:     t,
		present: present,
		data:    data,
		batch:   Batch{Type: t},
	}, nil
}

func (d *floatColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present

	// Floats are stored as raw IEEE 754 little-endian values, one per
	// present row, with no run-length layer.
	k := countPresent(present, n)
	width := 8
	if d.typ.Kind == format.TypeFloat {
		width = 4
	}
	d.scratch = resize(d.scratch, k*width)
	if _, err := io.ReadFull(d.data, d.scratch); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = fmt.Errorf("%w: float stream of column %d ends mid batch", ErrTruncated, d.typ.ID)
		}
		return nil, err
	}

	// The stored layout is IEEE 754 little-endian, the same as the
	// in-memory representation, so the bytes are reinterpreted in place.
	if d.typ.Kind == format.TypeFloat {
		b.Float32s = resize(b.Float32s, n)
		copy(b.Float32s[:k], unsafecast.Slice[float32](d.scratch))
		if present != nil {
			spread(b.Float32s, present, k)
		}
	} else {
		b.Float64s = resize(b.Float64s, n)
		copy(b.Float64s[:k], unsafecast.Slice[float64](d.scratch))
		if present != nil {
			spread(b.Float64s, present, k)
		}
	}
	return b, nil
}

type dateColumnDecoder struct {
	typ     *Type
	present *presentDecoder
	data    intDecoder
	scratch []int64
	batch   Batch
}

func newDateColumnDecoder(s *Stripe, t *Type, encoding format.ColumnEncoding) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	data, err := s.mustStream(t.ID, format.StreamData)
	if err != nil {
		return nil, err
	}
	return &dateColumnDecoder{
		typ:     t,
		present: present,
		data:    newIntDecoder(data, encoding.Kind, true),
		batch:   Batch{Type: t},
	}, nil
}

func (d *dateColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present

	d.scratch = resize(d.scratch, n)
	if err := decodeSpacedInt64(d.data, d.scratch, present); err != nil {
		return nil, err
	}
	b.Int32s = resize(b.Int32s, n)
	for i, v := range d.scratch {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("%w: day offset %d does not fit date column %d",
				ErrOverflow, v, d.typ.ID)
		}
		b.Int32s[i] = int32(v)
	}
	return b, nil
}
