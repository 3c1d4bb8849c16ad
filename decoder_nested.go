package orc

import (
	"fmt"
	"math"

	"github.com/orc-go/orc-go/encoding/rle"
	"github.com/orc-go/orc-go/format"
)

type structColumnDecoder struct {
	typ      *Type
	present  *presentDecoder
	children []columnDecoder
	batch    Batch
}

func newStructColumnDecoder(s *Stripe, t *Type) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	d := &structColumnDecoder{
		typ:     t,
		present: present,
		batch:   Batch{Type: t},
	}
	for _, child := range t.Children {
		decoder, err := newColumnDecoder(s, child)
		if err != nil {
			return nil, err
		}
		d.children = append(d.children, decoder)
	}
	d.batch.Children = make([]*Batch, len(d.children))
	return d, nil
}

func (d *structColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present

	// Children advance by the same logical rows and receive the combined
	// mask, so fields of null structs consume no data.
	for i, child := range d.children {
		if b.Children[i], err = child.nextBatch(n, present); err != nil {
			return nil, err
		}
	}
	return b, nil
}

type listColumnDecoder struct {
	typ     *Type
	present *presentDecoder
	lengths intDecoder
	child   columnDecoder
	scratch []int64
	batch   Batch
}

func newListColumnDecoder(s *Stripe, t *Type, encoding format.ColumnEncoding) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	lengths, err := s.mustStream(t.ID, format.StreamLength)
	if err != nil {
		return nil, err
	}
	child, err := newColumnDecoder(s, t.Children[0])
	if err != nil {
		return nil, err
	}
	return &listColumnDecoder{
		typ:     t,
		present: present,
		lengths: newIntDecoder(lengths, encoding.Kind, false),
		child:   child,
		batch:   Batch{Type: t, Children: make([]*Batch, 1)},
	}, nil
}

func (d *listColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present

	total, err := d.decodeOffsets(b, n, present)
	if err != nil {
		return nil, err
	}
	// The child holds one row per element; null list rows contributed no
	// elements, so presence does not thread further down.
	if b.Children[0], err = d.child.nextBatch(total, nil); err != nil {
		return nil, err
	}
	return b, nil
}

// decodeOffsets turns the spaced per-row lengths into cumulative offsets,
// returning the total element count. Null rows have zero length.
func (d *listColumnDecoder) decodeOffsets(b *Batch, n int, present []bool) (int, error) {
	d.scratch = resize(d.scratch, n)
	if err := decodeSpacedInt64(d.lengths, d.scratch, present); err != nil {
		return 0, err
	}
	b.Offsets = resize(b.Offsets, n+1)
	b.Offsets[0] = 0
	total := int64(0)
	for i, length := range d.scratch {
		if length < 0 {
			return 0, fmt.Errorf("%w: negative length %d in column %d",
				ErrRowCountMismatch, length, d.typ.ID)
		}
		total += length
		b.Offsets[i+1] = total
	}
	if total > math.MaxInt {
		return 0, fmt.Errorf("%w: %d child rows in one batch of column %d",
			ErrRowCountMismatch, total, d.typ.ID)
	}
	return int(total), nil
}

type mapColumnDecoder struct {
	typ     *Type
	present *presentDecoder
	lengths intDecoder
	keys    columnDecoder
	values  columnDecoder
	scratch []int64
	batch   Batch
}

func newMapColumnDecoder(s *Stripe, t *Type, encoding format.ColumnEncoding) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	lengths, err := s.mustStream(t.ID, format.StreamLength)
	if err != nil {
		return nil, err
	}
	keys, err := newColumnDecoder(s, t.Children[0])
	if err != nil {
		return nil, err
	}
	values, err := newColumnDecoder(s, t.Children[1])
	if err != nil {
		return nil, err
	}
	return &mapColumnDecoder{
		typ:     t,
		present: present,
		lengths: newIntDecoder(lengths, encoding.Kind, false),
		keys:    keys,
		values:  values,
		batch:   Batch{Type: t, Children: make([]*Batch, 2)},
	}, nil
}

func (d *mapColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present

	d.scratch = resize(d.scratch, n)
	if err := decodeSpacedInt64(d.lengths, d.scratch, present); err != nil {
		return nil, err
	}
	b.Offsets = resize(b.Offsets, n+1)
	b.Offsets[0] = 0
	total := int64(0)
	for i, length := range d.scratch {
		if length < 0 {
			return nil, fmt.Errorf("%w: negative length %d in column %d",
				ErrRowCountMismatch, length, d.typ.ID)
		}
		total += length
		b.Offsets[i+1] = total
	}

	// Keys and values advance in lockstep over the same element count.
	if b.Children[0], err = d.keys.nextBatch(int(total), nil); err != nil {
		return nil, err
	}
	if b.Children[1], err = d.values.nextBatch(int(total), nil); err != nil {
		return nil, err
	}
	return b, nil
}

// unionColumnDecoder decodes tagged unions into a sparse layout: every
// variant batch is full-length and a row's value lives in the variant its
// tag selects, with the other variants null at that row.
type unionColumnDecoder struct {
	typ      *Type
	present  *presentDecoder
	tags     *rle.ByteDecoder
	variants []columnDecoder
	masks    [][]bool
	batch    Batch
}

func newUnionColumnDecoder(s *Stripe, t *Type) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	tags, err := s.mustStream(t.ID, format.StreamData)
	if err != nil {
		return nil, err
	}
	d := &unionColumnDecoder{
		typ:     t,
		present: present,
		tags:    rle.NewByteDecoder(tags),
		masks:   make([][]bool, len(t.Children)),
		batch:   Batch{Type: t, Children: make([]*Batch, len(t.Children))},
	}
	for _, child := range t.Children {
		decoder, err := newColumnDecoder(s, child)
		if err != nil {
			return nil, err
		}
		d.variants = append(d.variants, decoder)
	}
	return d, nil
}

func (d *unionColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present

	b.Tags = resize(b.Tags, n)
	k := countPresent(present, n)
	if err := d.tags.Decode(b.Tags[:k]); err != nil {
		return nil, err
	}
	if present != nil {
		spread(b.Tags, present, k)
	}

	// Each variant advances by the full row window with a mask selecting
	// only its tagged rows; unselected rows are null-filled.
	for v := range d.variants {
		mask := resize(d.masks[v], n)
		for i, tag := range b.Tags {
			if int(tag) >= len(d.variants) {
				return nil, fmt.Errorf("%w: union tag %d with %d variants in column %d",
					ErrInvalidEncoding, tag, len(d.variants), d.typ.ID)
			}
			mask[i] = int(tag) == v && (present == nil || present[i])
		}
		d.masks[v] = mask
		if b.Children[v], err = d.variants[v].nextBatch(n, mask); err != nil {
			return nil, err
		}
	}
	return b, nil
}
