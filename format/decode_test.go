package format

import (
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func appendTagged(dst []byte, num protowire.Number, v uint64) []byte {
	dst = protowire.AppendTag(dst, num, protowire.VarintType)
	return protowire.AppendVarint(dst, v)
}

func appendBytesField(dst []byte, num protowire.Number, v []byte) []byte {
	dst = protowire.AppendTag(dst, num, protowire.BytesType)
	return protowire.AppendBytes(dst, v)
}

func TestDecodePostScript(t *testing.T) {
	var data []byte
	data = appendTagged(data, 1, 140)
	data = appendTagged(data, 2, uint64(CompressionZstd))
	data = appendTagged(data, 3, 262144)
	data = appendBytesField(data, 4, protowire.AppendVarint(protowire.AppendVarint(nil, 0), 12))
	data = appendTagged(data, 5, 80)
	data = appendTagged(data, 6, 6)
	data = appendBytesField(data, 8000, []byte("ORC"))

	ps, err := DecodePostScript(data)
	if err != nil {
		t.Fatal(err)
	}
	want := PostScript{
		FooterLength:         140,
		Compression:          CompressionZstd,
		CompressionBlockSize: 262144,
		Version:              []uint32{0, 12},
		MetadataLength:       80,
		WriterVersion:        6,
		Magic:                "ORC",
	}
	if !reflect.DeepEqual(*ps, want) {
		t.Errorf("got %+v, want %+v", *ps, want)
	}
}

func TestDecodePostScriptUnpackedVersion(t *testing.T) {
	// Old writers emit the version list as individual varints rather than
	// one packed field.
	var data []byte
	data = appendTagged(data, 4, 0)
	data = appendTagged(data, 4, 12)
	data = appendBytesField(data, 8000, []byte("ORC"))

	ps, err := DecodePostScript(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ps.Version, []uint32{0, 12}) {
		t.Errorf("got version %v, want [0 12]", ps.Version)
	}
}

func TestDecodeFooter(t *testing.T) {
	var stripe []byte
	stripe = appendTagged(stripe, 1, 3)
	stripe = appendTagged(stripe, 2, 0)
	stripe = appendTagged(stripe, 3, 1024)
	stripe = appendTagged(stripe, 4, 64)
	stripe = appendTagged(stripe, 5, 500)

	var structType []byte
	structType = appendTagged(structType, 1, uint64(TypeStruct))
	structType = appendBytesField(structType, 2, protowire.AppendVarint(nil, 1))
	structType = appendBytesField(structType, 3, []byte("a"))

	var longType []byte
	longType = appendTagged(longType, 1, uint64(TypeLong))

	var meta []byte
	meta = appendBytesField(meta, 1, []byte("writer"))
	meta = appendBytesField(meta, 2, []byte("orc-go"))

	var data []byte
	data = appendTagged(data, 1, 3)
	data = appendTagged(data, 2, 2048)
	data = appendBytesField(data, 3, stripe)
	data = appendBytesField(data, 4, structType)
	data = appendBytesField(data, 4, longType)
	data = appendBytesField(data, 5, meta)
	data = appendTagged(data, 6, 500)
	data = appendTagged(data, 8, 10000)

	f, err := DecodeFooter(data)
	if err != nil {
		t.Fatal(err)
	}
	want := Footer{
		HeaderLength:  3,
		ContentLength: 2048,
		Stripes: []StripeInformation{
			{Offset: 3, IndexLength: 0, DataLength: 1024, FooterLength: 64, NumberOfRows: 500},
		},
		Types: []Type{
			{Kind: TypeStruct, Subtypes: []uint32{1}, FieldNames: []string{"a"}},
			{Kind: TypeLong},
		},
		Metadata:       []UserMetadataItem{{Name: "writer", Value: []byte("orc-go")}},
		NumberOfRows:   500,
		RowIndexStride: 10000,
	}
	if !reflect.DeepEqual(*f, want) {
		t.Errorf("got %+v, want %+v", *f, want)
	}
}

func TestDecodeStripeFooter(t *testing.T) {
	var stream []byte
	stream = appendTagged(stream, 1, uint64(StreamData))
	stream = appendTagged(stream, 2, 1)
	stream = appendTagged(stream, 3, 256)

	var encoding []byte
	encoding = appendTagged(encoding, 1, uint64(ColumnEncodingDictionaryV2))
	encoding = appendTagged(encoding, 2, 42)

	var data []byte
	data = appendBytesField(data, 1, stream)
	data = appendBytesField(data, 2, encoding)
	data = appendBytesField(data, 3, []byte("America/New_York"))

	f, err := DecodeStripeFooter(data)
	if err != nil {
		t.Fatal(err)
	}
	want := StripeFooter{
		Streams:        []Stream{{Kind: StreamData, Column: 1, Length: 256}},
		Columns:        []ColumnEncoding{{Kind: ColumnEncodingDictionaryV2, DictionarySize: 42}},
		WriterTimezone: "America/New_York",
	}
	if !reflect.DeepEqual(*f, want) {
		t.Errorf("got %+v, want %+v", *f, want)
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	var data []byte
	data = appendTagged(data, 999, 7)
	data = appendBytesField(data, 998, []byte("future"))
	data = appendBytesField(data, 8000, []byte("ORC"))

	ps, err := DecodePostScript(data)
	if err != nil {
		t.Fatal(err)
	}
	if ps.Magic != "ORC" {
		t.Errorf("got magic %q, want ORC", ps.Magic)
	}
}
