package orc

import (
	"fmt"
	"math/bits"

	"github.com/orc-go/orc-go/compress"
	"github.com/orc-go/orc-go/format"
)

// decimalColumnDecoder decodes decimal columns: the Data stream holds one
// unbounded zigzag varint per present row, the Secondary stream its scale.
// Values are rescaled to the scale declared on the type, and checked
// against the declared precision.
type decimalColumnDecoder struct {
	typ     *Type
	present *presentDecoder
	data    *compress.BlockReader
	scales  intDecoder
	scratch []int64
	limit   Int128
	batch   Batch
}

func newDecimalColumnDecoder(s *Stripe, t *Type, encoding format.ColumnEncoding) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	data, err := s.mustStream(t.ID, format.StreamData)
	if err != nil {
		return nil, err
	}
	scales, err := s.mustStream(t.ID, format.StreamSecondary)
	if err != nil {
		return nil, err
	}
	d := &decimalColumnDecoder{
		typ:     t,
		present: present,
		data:    data,
		scales:  newIntDecoder(scales, encoding.Kind, true),
		batch:   Batch{Type: t},
	}
	if t.Precision < 38 {
		// Only narrower precisions need a magnitude bound; 10^38 itself
		// exceeds anything a 128-bit unscaled value can hold.
		d.limit, _ = scaleInt128(Int128FromInt64(1), t.Precision)
	}
	return d, nil
}

func (d *decimalColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present
	b.Decimals = resize(b.Decimals, n)

	k := countPresent(present, n)
	d.scratch = resize(d.scratch, k)
	if err := d.scales.Decode(d.scratch); err != nil {
		return nil, err
	}
	for i := 0; i < k; i++ {
		unscaled, err := readVarint128(d.data)
		if err != nil {
			return nil, err
		}
		if unscaled, err = d.rescale(unscaled, int(d.scratch[i])); err != nil {
			return nil, err
		}
		b.Decimals[i] = unscaled
	}
	if present != nil {
		spread(b.Decimals, present, k)
	}
	return b, nil
}

// rescale aligns one value's stored scale with the column's fixed scale.
func (d *decimalColumnDecoder) rescale(v Int128, scale int) (Int128, error) {
	fixed := d.typ.Scale
	switch {
	case scale > fixed:
		v = divPow10(v, scale-fixed)
	case scale < fixed:
		scaled, ok := scaleInt128(v, fixed-scale)
		if !ok {
			return Int128{}, fmt.Errorf("%w: decimal value %s overflows at scale %d in column %d",
				ErrOverflow, v, fixed, d.typ.ID)
		}
		v = scaled
	}
	if d.typ.Precision < 38 && !fitsPrecision(v, d.limit) {
		return Int128{}, fmt.Errorf("%w: decimal value %s exceeds precision %d in column %d",
			ErrOverflow, v, d.typ.Precision, d.typ.ID)
	}
	return v, nil
}

// divPow10 divides by 10^shift, truncating toward zero.
func divPow10(v Int128, shift int) Int128 {
	neg := v.IsNegative()
	hi, lo := v.Abs()
	for shift > 0 && (hi != 0 || lo != 0) {
		rem := hi % 10
		hi /= 10
		lo, _ = bits.Div64(rem, lo, 10)
		shift--
	}
	out := Int128{Hi: int64(hi), Lo: lo}
	if neg {
		out = out.Neg()
	}
	return out
}

// fitsPrecision reports whether |v| < limit, limit being 10^precision.
func fitsPrecision(v Int128, limit Int128) bool {
	hi, lo := v.Abs()
	lhi, llo := uint64(limit.Hi), limit.Lo
	if hi != lhi {
		return hi < lhi
	}
	return lo < llo
}
