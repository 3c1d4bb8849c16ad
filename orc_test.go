package orc

import (
	"bytes"
	"testing"

	"github.com/orc-go/orc-go/format"
)

// Test fixtures build stripes directly in memory: streams are laid out
// back to back in declaration order over an uncompressed byte source, the
// way they would appear in a file written without compression.

type streamSpec struct {
	column int
	kind   format.StreamKind
	data   []byte
}

func newTestStripe(t *testing.T, numRows int, types []format.Type, encodings []format.ColumnEncoding, streams []streamSpec) *Stripe {
	t.Helper()

	schema, err := newSchema(types)
	if err != nil {
		t.Fatal(err)
	}

	var data []byte
	footer := format.StripeFooter{Columns: encodings}
	spans := make(map[streamID]streamSpan, len(streams))
	for _, spec := range streams {
		spans[streamID{column: uint32(spec.column), kind: spec.kind}] = streamSpan{
			offset: int64(len(data)),
			length: int64(len(spec.data)),
		}
		footer.Streams = append(footer.Streams, format.Stream{
			Kind:   spec.kind,
			Column: uint32(spec.column),
			Length: uint64(len(spec.data)),
		})
		data = append(data, spec.data...)
	}

	file := &File{
		r:      bytes.NewReader(data),
		size:   int64(len(data)),
		schema: schema,
	}
	return &Stripe{
		file:    file,
		info:    format.StripeInformation{NumberOfRows: uint64(numRows)},
		footer:  footer,
		streams: spans,
	}
}

// appendUvarint and appendSvarint write base-128 varints the way integer
// streams store them.
func appendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

func appendSvarint(dst []byte, v int64) []byte {
	return appendUvarint(dst, uint64(v<<1)^uint64(v>>63))
}

// v1Literals encodes values as RLE v1 literal runs.
func v1Literals(signed bool, values ...int64) []byte {
	var out []byte
	for len(values) > 0 {
		n := min(len(values), 128)
		out = append(out, byte(0x100-n))
		for _, v := range values[:n] {
			if signed {
				out = appendSvarint(out, v)
			} else {
				out = appendUvarint(out, uint64(v))
			}
		}
		values = values[n:]
	}
	return out
}

// byteLiterals encodes values as byte RLE literal runs.
func byteLiterals(values ...byte) []byte {
	var out []byte
	for len(values) > 0 {
		n := min(len(values), 128)
		out = append(out, byte(0x100-n))
		out = append(out, values[:n]...)
		values = values[n:]
	}
	return out
}

// boolBits packs booleans eight per byte, high bit first, and wraps them
// in byte RLE literal runs the way Present streams are stored.
func boolBits(values ...bool) []byte {
	packed := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v {
			packed[i/8] |= 0x80 >> (i % 8)
		}
	}
	return byteLiterals(packed...)
}

func direct() format.ColumnEncoding {
	return format.ColumnEncoding{Kind: format.ColumnEncodingDirect}
}

// structSchema is the two-entry type list of struct<a:child> fixtures.
func structSchema(child format.TypeKind) []format.Type {
	return []format.Type{
		{Kind: format.TypeStruct, Subtypes: []uint32{1}, FieldNames: []string{"a"}},
		{Kind: child},
	}
}
