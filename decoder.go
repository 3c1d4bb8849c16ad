package orc

import (
	"fmt"

	"github.com/orc-go/orc-go/encoding/rle"
	"github.com/orc-go/orc-go/format"
)

// columnDecoder produces typed batches for one column of the type tree.
//
// nextBatch advances the decoder by n logical rows. parentPresent, when
// non-nil, is the parent's null mask over those rows: rows the parent
// marks null consume no bytes from this column's streams and come back
// null. Decoders are stateful; rows can only be read forward.
type columnDecoder interface {
	nextBatch(n int, parentPresent []bool) (*Batch, error)
}

// intDecoder is the shared shape of the v1 and v2 integer run decoders.
type intDecoder interface {
	Decode([]int64) error
}

// newIntDecoder selects the run-length version from the column encoding.
func newIntDecoder(r rle.Reader, kind format.ColumnEncodingKind, signed bool) intDecoder {
	if kind.IsV2() {
		return rle.NewV2Decoder(r, signed)
	}
	return rle.NewV1Decoder(r, signed)
}

// presentDecoder decodes a column's Present stream bitmap.
type presentDecoder struct {
	bits *rle.BooleanDecoder
}

// newPresentDecoder returns nil without error when the column carries no
// Present stream, which declares every row non-null.
func newPresentDecoder(s *Stripe, column int) (*presentDecoder, error) {
	r, err := s.stream(column, format.StreamPresent)
	if err != nil || r == nil {
		return nil, err
	}
	return &presentDecoder{bits: rle.NewBooleanDecoder(r)}, nil
}

func (d *presentDecoder) next(dst []bool) error {
	return d.bits.Decode(dst)
}

// derivePresent combines a column's own Present stream with the mask
// handed down by its parent. The column's stream only holds bits for rows
// the parent marks present, so those bits are scattered back into parent
// positions; rows the parent nulled stay null. A nil result means every
// row is present.
func derivePresent(own *presentDecoder, parent []bool, n int) ([]bool, error) {
	switch {
	case own == nil && parent == nil:
		return nil, nil
	case own == nil:
		return parent, nil
	case parent == nil:
		present := make([]bool, n)
		if err := own.next(present); err != nil {
			return nil, err
		}
		return present, nil
	default:
		bits := make([]bool, countPresent(parent, n))
		if err := own.next(bits); err != nil {
			return nil, err
		}
		present := make([]bool, len(parent))
		j := 0
		for i, p := range parent {
			if p {
				present[i] = bits[j]
				j++
			}
		}
		return present, nil
	}
}

// resize returns s with length n, reallocating only when it grew.
func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	s = s[:n]
	clear(s)
	return s
}

// spread scatters the k decoded values at the front of dst onto the rows
// present marks set, zeroing null rows. It walks backwards so dst can hold
// both the compact and the spaced form.
func spread[T any](dst []T, present []bool, k int) {
	var zero T
	j := k - 1
	for i := len(dst) - 1; i >= 0; i-- {
		if present[i] {
			dst[i] = dst[j]
			j--
		} else {
			dst[i] = zero
		}
	}
}

// decodeSpacedInt64 fills dst row-aligned from a decoder that only stores
// values for present rows.
func decodeSpacedInt64(d intDecoder, dst []int64, present []bool) error {
	if present == nil {
		return d.Decode(dst)
	}
	k := countPresent(present, len(dst))
	if err := d.Decode(dst[:k]); err != nil {
		return err
	}
	spread(dst, present, k)
	return nil
}

// newColumnDecoder builds the decoder for one node of the type tree,
// recursing into nested children.
func newColumnDecoder(s *Stripe, t *Type) (columnDecoder, error) {
	encoding, err := s.encoding(t.ID)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case format.TypeBoolean:
		return newBooleanColumnDecoder(s, t)
	case format.TypeByte:
		return newByteColumnDecoder(s, t)
	case format.TypeShort, format.TypeInt, format.TypeLong:
		return newIntColumnDecoder(s, t, encoding)
	case format.TypeFloat, format.TypeDouble:
		return newFloatColumnDecoder(s, t)
	case format.TypeDate:
		return newDateColumnDecoder(s, t, encoding)
	case format.TypeString, format.TypeVarchar, format.TypeChar, format.TypeBinary:
		return newBinaryColumnDecoder(s, t, encoding)
	case format.TypeDecimal:
		return newDecimalColumnDecoder(s, t, encoding)
	case format.TypeTimestamp:
		return newTimestampColumnDecoder(s, t, encoding)
	case format.TypeStruct:
		return newStructColumnDecoder(s, t)
	case format.TypeList:
		return newListColumnDecoder(s, t, encoding)
	case format.TypeMap:
		return newMapColumnDecoder(s, t, encoding)
	case format.TypeUnion:
		return newUnionColumnDecoder(s, t)
	default:
		return nil, fmt.Errorf("%w: unsupported type kind %s for column %d",
			ErrInvalidEncoding, t.Kind, t.ID)
	}
}
