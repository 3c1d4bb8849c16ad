package orc

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/orc-go/orc-go/format"
)

func appendVarintField(dst []byte, num protowire.Number, v uint64) []byte {
	dst = protowire.AppendTag(dst, num, protowire.VarintType)
	return protowire.AppendVarint(dst, v)
}

func appendBytesField(dst []byte, num protowire.Number, v []byte) []byte {
	dst = protowire.AppendTag(dst, num, protowire.BytesType)
	return protowire.AppendBytes(dst, v)
}

func appendStream(dst []byte, s format.Stream) []byte {
	var msg []byte
	msg = appendVarintField(msg, 1, uint64(s.Kind))
	msg = appendVarintField(msg, 2, uint64(s.Column))
	msg = appendVarintField(msg, 3, s.Length)
	return appendBytesField(dst, 1, msg)
}

func appendEncoding(dst []byte, e format.ColumnEncoding) []byte {
	var msg []byte
	msg = appendVarintField(msg, 1, uint64(e.Kind))
	if e.DictionarySize != 0 {
		msg = appendVarintField(msg, 2, uint64(e.DictionarySize))
	}
	return appendBytesField(dst, 2, msg)
}

func appendType(dst []byte, t format.Type) []byte {
	var msg []byte
	msg = appendVarintField(msg, 1, uint64(t.Kind))
	if len(t.Subtypes) > 0 {
		var packed []byte
		for _, sub := range t.Subtypes {
			packed = protowire.AppendVarint(packed, uint64(sub))
		}
		msg = appendBytesField(msg, 2, packed)
	}
	for _, name := range t.FieldNames {
		msg = appendBytesField(msg, 3, []byte(name))
	}
	return appendBytesField(dst, 4, msg)
}

// buildTestFile assembles a complete single-stripe uncompressed file:
// the 3-byte magic header, the stream data, the stripe footer, the file
// footer, the postscript, and the postscript length byte.
func buildTestFile(t *testing.T, numRows int, types []format.Type, encodings []format.ColumnEncoding, streams []streamSpec) []byte {
	t.Helper()

	var data []byte
	var stripeFooter []byte
	for _, spec := range streams {
		stripeFooter = appendStream(stripeFooter, format.Stream{
			Kind:   spec.kind,
			Column: uint32(spec.column),
			Length: uint64(len(spec.data)),
		})
		data = append(data, spec.data...)
	}
	for _, e := range encodings {
		stripeFooter = appendEncoding(stripeFooter, e)
	}

	var stripeInfo []byte
	stripeInfo = appendVarintField(stripeInfo, 1, uint64(len(magic)))
	stripeInfo = appendVarintField(stripeInfo, 3, uint64(len(data)))
	stripeInfo = appendVarintField(stripeInfo, 4, uint64(len(stripeFooter)))
	stripeInfo = appendVarintField(stripeInfo, 5, uint64(numRows))

	var meta []byte
	meta = appendBytesField(meta, 1, []byte("writer"))
	meta = appendBytesField(meta, 2, []byte("orc-go"))

	var footer []byte
	footer = appendVarintField(footer, 1, uint64(len(magic)))
	footer = appendVarintField(footer, 2, uint64(len(magic)+len(data)+len(stripeFooter)))
	footer = appendBytesField(footer, 3, stripeInfo)
	for _, ft := range types {
		footer = appendType(footer, ft)
	}
	footer = appendBytesField(footer, 5, meta)
	footer = appendVarintField(footer, 6, uint64(numRows))

	var ps []byte
	ps = appendVarintField(ps, 1, uint64(len(footer)))
	ps = appendVarintField(ps, 2, uint64(format.CompressionNone))
	ps = appendBytesField(ps, 4, protowire.AppendVarint(protowire.AppendVarint(nil, 0), 12))
	ps = appendVarintField(ps, 6, 6)
	ps = appendBytesField(ps, 8000, []byte(magic))

	file := []byte(magic)
	file = append(file, data...)
	file = append(file, stripeFooter...)
	file = append(file, footer...)
	file = append(file, ps...)
	return append(file, byte(len(ps)))
}

func testFileBytes(t *testing.T) []byte {
	return buildTestFile(t, 5,
		[]format.Type{
			{Kind: format.TypeStruct, Subtypes: []uint32{1, 2, 3}, FieldNames: []string{"id", "name", "flag"}},
			{Kind: format.TypeLong},
			{Kind: format.TypeString},
			{Kind: format.TypeBoolean},
		},
		[]format.ColumnEncoding{direct(), direct(), direct(), direct()},
		[]streamSpec{
			{1, format.StreamData, v1Literals(true, 1, 2, 3, 4, 5)},
			{2, format.StreamLength, v1Literals(false, 2, 3, 1, 2, 3)},
			{2, format.StreamData, []byte("goorcabcdef")},
			{3, format.StreamData, boolBits(true, false, true, false, true)},
		},
	)
}

func openTestFile(t *testing.T) *File {
	t.Helper()
	data := testFileBytes(t)
	f, err := OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestOpenFile(t *testing.T) {
	f := openTestFile(t)
	if got, want := f.Schema().String(), "struct<id:bigint,name:string,flag:boolean>"; got != want {
		t.Errorf("got schema %s, want %s", got, want)
	}
	if f.NumRows() != 5 {
		t.Errorf("got %d rows, want 5", f.NumRows())
	}
	if f.NumStripes() != 1 {
		t.Errorf("got %d stripes, want 1", f.NumStripes())
	}
	if f.Compression() != format.CompressionNone {
		t.Errorf("got compression %s, want none", f.Compression())
	}
	if got, want := f.Version(), []uint32{0, 12}; !reflect.DeepEqual(got, want) {
		t.Errorf("got version %v, want %v", got, want)
	}
	if f.WriterVersion() != 6 {
		t.Errorf("got writer version %d, want 6", f.WriterVersion())
	}
	meta := f.Metadata()
	if len(meta) != 1 || meta[0].Name != "writer" || string(meta[0].Value) != "orc-go" {
		t.Errorf("got metadata %v, want writer=orc-go", meta)
	}
}

func TestFileDecode(t *testing.T) {
	f := openTestFile(t)
	stripe, err := f.Stripe(0)
	if err != nil {
		t.Fatal(err)
	}
	if stripe.NumRows() != 5 {
		t.Errorf("got %d stripe rows, want 5", stripe.NumRows())
	}
	if stripe.WriterTimezone() != nil {
		t.Errorf("got timezone %v, want nil", stripe.WriterTimezone())
	}

	b := decodeAll(t, stripe)
	if b.Length != 5 {
		t.Fatalf("got batch length %d, want 5", b.Length)
	}
	if want := []int64{1, 2, 3, 4, 5}; !reflect.DeepEqual(b.Children[0].Int64s, want) {
		t.Errorf("got ids %v, want %v", b.Children[0].Int64s, want)
	}
	names := b.Children[1]
	for i, want := range []string{"go", "orc", "a", "bc", "def"} {
		if got := names.String(i); got != want {
			t.Errorf("row %d: got name %q, want %q", i, got, want)
		}
	}
	if want := []bool{true, false, true, false, true}; !reflect.DeepEqual(b.Children[2].Bools, want) {
		t.Errorf("got flags %v, want %v", b.Children[2].Bools, want)
	}
}

func TestFileDecodeIsRepeatable(t *testing.T) {
	f := openTestFile(t)
	collect := func() ([]int64, []string) {
		stripe, err := f.Stripe(0)
		if err != nil {
			t.Fatal(err)
		}
		d, err := stripe.Decoder(BatchSize(2))
		if err != nil {
			t.Fatal(err)
		}
		var ids []int64
		var names []string
		for {
			b, err := d.NextBatch()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatal(err)
			}
			ids = append(ids, b.Children[0].Int64s...)
			for i := 0; i < b.Length; i++ {
				// Strings alias the batch buffer, so they are copied out
				// before the next call.
				names = append(names, string(b.Children[1].Bytes(i)))
			}
		}
		return ids, names
	}

	ids1, names1 := collect()
	ids2, names2 := collect()
	if !reflect.DeepEqual(ids1, ids2) {
		t.Errorf("got %v then %v decoding the same stripe twice", ids1, ids2)
	}
	if !reflect.DeepEqual(names1, names2) {
		t.Errorf("got %v then %v decoding the same stripe twice", names1, names2)
	}
	if want := []int64{1, 2, 3, 4, 5}; !reflect.DeepEqual(ids1, want) {
		t.Errorf("got ids %v, want %v", ids1, want)
	}
}

func TestFileColumnProjection(t *testing.T) {
	f := openTestFile(t)
	stripe, err := f.Stripe(0)
	if err != nil {
		t.Fatal(err)
	}
	b := decodeAll(t, stripe, Columns("name"))
	if len(b.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(b.Children))
	}
	if got := b.Children[0].String(1); got != "orc" {
		t.Errorf("got %q, want %q", got, "orc")
	}

	if _, err := stripe.Decoder(Columns("nope")); err == nil {
		t.Error("want an error for an unknown column name")
	}
}

func TestOpenFileErrors(t *testing.T) {
	t.Run("too small", func(t *testing.T) {
		data := []byte{1, 2}
		if _, err := OpenFile(bytes.NewReader(data), int64(len(data))); !errors.Is(err, ErrTruncated) {
			t.Errorf("got %v, want ErrTruncated", err)
		}
	})

	t.Run("bad magic", func(t *testing.T) {
		var ps []byte
		ps = appendVarintField(ps, 1, 0)
		ps = appendBytesField(ps, 8000, []byte("NOT"))
		data := append([]byte("NOT"), ps...)
		data = append(data, byte(len(ps)))
		if _, err := OpenFile(bytes.NewReader(data), int64(len(data))); !errors.Is(err, ErrInvalidEncoding) {
			t.Errorf("got %v, want ErrInvalidEncoding", err)
		}
	})

	t.Run("postscript length beyond file", func(t *testing.T) {
		data := []byte{0, 0, 0, 200}
		if _, err := OpenFile(bytes.NewReader(data), int64(len(data))); !errors.Is(err, ErrTruncated) {
			t.Errorf("got %v, want ErrTruncated", err)
		}
	})

	t.Run("footer length beyond file", func(t *testing.T) {
		var ps []byte
		ps = appendVarintField(ps, 1, 1000)
		ps = appendBytesField(ps, 8000, []byte(magic))
		data := append([]byte(magic), ps...)
		data = append(data, byte(len(ps)))
		if _, err := OpenFile(bytes.NewReader(data), int64(len(data))); !errors.Is(err, ErrTruncated) {
			t.Errorf("got %v, want ErrTruncated", err)
		}
	})
}

func TestStripeIndexOutOfRange(t *testing.T) {
	f := openTestFile(t)
	if _, err := f.Stripe(1); err == nil {
		t.Error("want an error for stripe 1 of a single-stripe file")
	}
	if _, err := f.Stripe(-1); err == nil {
		t.Error("want an error for a negative stripe index")
	}
}

func TestUnsupportedCompressionKind(t *testing.T) {
	var ps []byte
	ps = appendVarintField(ps, 1, 0)
	ps = appendVarintField(ps, 2, uint64(format.CompressionLzo))
	ps = appendBytesField(ps, 8000, []byte(magic))
	data := append([]byte(magic), ps...)
	data = append(data, byte(len(ps)))
	if _, err := OpenFile(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Error("want an error for lzo compression")
	}
}
