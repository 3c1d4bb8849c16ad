package orc

import (
	"fmt"
	"io"

	"github.com/orc-go/orc-go/compress"
	"github.com/orc-go/orc-go/format"
)

// binaryColumnDecoder handles string, char, varchar and binary columns.
// Direct encodings read a Length stream plus concatenated bytes from the
// Data stream; dictionary encodings materialize the dictionary up front
// and read entry indexes from the Data stream.
type binaryColumnDecoder struct {
	typ     *Type
	present *presentDecoder

	// Direct.
	lengths intDecoder
	data    *compress.BlockReader

	// Dictionary.
	dict    [][]byte
	indexes intDecoder

	scratch []int64
	batch   Batch
}

func newBinaryColumnDecoder(s *Stripe, t *Type, encoding format.ColumnEncoding) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	d := &binaryColumnDecoder{
		typ:     t,
		present: present,
		batch:   Batch{Type: t},
	}

	if !encoding.Kind.IsDictionary() {
		lengths, err := s.mustStream(t.ID, format.StreamLength)
		if err != nil {
			return nil, err
		}
		if d.data, err = s.mustStream(t.ID, format.StreamData); err != nil {
			return nil, err
		}
		d.lengths = newIntDecoder(lengths, encoding.Kind, false)
		return d, nil
	}

	// The whole dictionary is decoded at construction: entry lengths from
	// the Length stream, entry bytes concatenated in DictionaryData.
	lengths, err := s.mustStream(t.ID, format.StreamLength)
	if err != nil {
		return nil, err
	}
	dictData, err := s.mustStream(t.ID, format.StreamDictionaryData)
	if err != nil {
		return nil, err
	}
	size := int(encoding.DictionarySize)
	entryLengths := make([]int64, size)
	if err := newIntDecoder(lengths, encoding.Kind, false).Decode(entryLengths); err != nil {
		return nil, err
	}
	d.dict = make([][]byte, size)
	for i, length := range entryLengths {
		if length < 0 {
			return nil, fmt.Errorf("%w: negative dictionary entry length %d in column %d",
				ErrInvalidEncoding, length, t.ID)
		}
		entry := make([]byte, length)
		if _, err := io.ReadFull(dictData, entry); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				err = fmt.Errorf("%w: dictionary of column %d ends mid entry", ErrTruncated, t.ID)
			}
			return nil, err
		}
		d.dict[i] = entry
	}

	indexes, err := s.mustStream(t.ID, format.StreamData)
	if err != nil {
		return nil, err
	}
	d.indexes = newIntDecoder(indexes, encoding.Kind, false)
	return d, nil
}

func (d *binaryColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present
	b.Offsets = resize(b.Offsets, n+1)
	b.Data = b.Data[:0]

	if d.dict != nil {
		return d.nextDictionaryBatch(b, n, present)
	}

	d.scratch = resize(d.scratch, n)
	if err := decodeSpacedInt64(d.lengths, d.scratch, present); err != nil {
		return nil, err
	}
	total := int64(0)
	b.Offsets[0] = 0
	for i, length := range d.scratch {
		if length < 0 {
			return nil, fmt.Errorf("%w: negative value length %d in column %d",
				ErrInvalidEncoding, length, d.typ.ID)
		}
		total += length
		b.Offsets[i+1] = total
	}
	b.Data = resize(b.Data, int(total))
	if _, err := io.ReadFull(d.data, b.Data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = fmt.Errorf("%w: data stream of column %d ends mid batch", ErrTruncated, d.typ.ID)
		}
		return nil, err
	}
	return b, nil
}

func (d *binaryColumnDecoder) nextDictionaryBatch(b *Batch, n int, present []bool) (*Batch, error) {
	k := countPresent(present, n)
	d.scratch = resize(d.scratch, k)
	if err := d.indexes.Decode(d.scratch); err != nil {
		return nil, err
	}
	b.Offsets[0] = 0
	j := 0
	for i := 0; i < n; i++ {
		if present == nil || present[i] {
			index := d.scratch[j]
			j++
			if index < 0 || index >= int64(len(d.dict)) {
				return nil, fmt.Errorf("%w: dictionary index %d out of range [0, %d) in column %d",
					ErrInvalidEncoding, index, len(d.dict), d.typ.ID)
			}
			b.Data = append(b.Data, d.dict[index]...)
		}
		b.Offsets[i+1] = int64(len(b.Data))
	}
	return b, nil
}
