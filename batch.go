package orc

import "github.com/orc-go/orc-go/internal/unsafecast"

// Batch is the decoded output of one column over a window of rows. The
// value buffer in use depends on the column's type kind; the others stay
// nil. Present is the null mask, true marking rows that carry a value; a
// nil Present means every row does.
//
// Batches and their buffers are reused across NextBatch calls of the same
// decoder; callers that retain values across calls must copy them out.
type Batch struct {
	Type    *Type
	Length  int
	Present []bool

	// Primitive buffers.
	Bools    []bool    // boolean
	Int8s    []int8    // tinyint
	Int16s   []int16   // smallint
	Int32s   []int32   // int, date (days since the Unix epoch)
	Int64s   []int64   // bigint, timestamp (nanoseconds since the Unix epoch)
	Float32s []float32 // float
	Float64s []float64 // double
	Decimals []Int128  // decimal unscaled values, scale on Type

	// Variable-length buffers: value i spans Data[Offsets[i]:Offsets[i+1]].
	Data    []byte
	Offsets []int64

	// Nested children: struct fields, list element, map key and value, or
	// union variants. List and map children span the sum of row lengths,
	// addressed through Offsets; union variants are full-length and
	// sparse, selected per row by Tags.
	Children []*Batch
	Tags     []byte
}

// Bytes returns the raw bytes of variable-length value i.
func (b *Batch) Bytes(i int) []byte {
	return b.Data[b.Offsets[i]:b.Offsets[i+1]]
}

// String returns variable-length value i as a string sharing the batch's
// data buffer, so it is only valid until the next batch is decoded.
func (b *Batch) String(i int) string {
	return unsafecast.BytesToString(b.Bytes(i))
}

// IsPresent reports whether row i carries a value.
func (b *Batch) IsPresent(i int) bool {
	return b.Present == nil || b.Present[i]
}

// Decimal returns the unscaled value and scale of decimal row i.
func (b *Batch) Decimal(i int) (unscaled Int128, scale int) {
	return b.Decimals[i], b.Type.Scale
}

func newBatch(t *Type, n int) *Batch {
	return &Batch{Type: t, Length: n}
}

// countPresent returns the number of set rows, with nil meaning all rows.
func countPresent(present []bool, n int) int {
	if present == nil {
		return n
	}
	count := 0
	for _, p := range present {
		if p {
			count++
		}
	}
	return count
}
