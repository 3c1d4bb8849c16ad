// Package format defines the ORC file metadata structures and provides
// decoders for their protobuf wire representation.
//
// The decoders parse the wire format directly, so no generated code is
// required. Unknown fields are skipped to stay compatible with newer
// writers.
package format

import "fmt"

// CompressionKind is the compression algorithm applied to all compressed
// byte streams of a file. It is fixed per file in the postscript.
type CompressionKind int32

const (
	CompressionNone CompressionKind = iota
	CompressionZlib
	CompressionSnappy
	CompressionLzo
	CompressionLz4
	CompressionZstd
)

func (k CompressionKind) String() string {
	switch k {
	case CompressionNone:
		return "NONE"
	case CompressionZlib:
		return "ZLIB"
	case CompressionSnappy:
		return "SNAPPY"
	case CompressionLzo:
		return "LZO"
	case CompressionLz4:
		return "LZ4"
	case CompressionZstd:
		return "ZSTD"
	default:
		return fmt.Sprintf("CompressionKind(%d)", int32(k))
	}
}

// StreamKind identifies the role of one byte stream within a stripe.
type StreamKind int32

const (
	StreamPresent StreamKind = iota
	StreamData
	StreamLength
	StreamDictionaryData
	StreamDictionaryCount
	StreamSecondary
	StreamRowIndex
	StreamBloomFilter
)

func (k StreamKind) String() string {
	switch k {
	case StreamPresent:
		return "PRESENT"
	case StreamData:
		return "DATA"
	case StreamLength:
		return "LENGTH"
	case StreamDictionaryData:
		return "DICTIONARY_DATA"
	case StreamDictionaryCount:
		return "DICTIONARY_COUNT"
	case StreamSecondary:
		return "SECONDARY"
	case StreamRowIndex:
		return "ROW_INDEX"
	case StreamBloomFilter:
		return "BLOOM_FILTER"
	default:
		return fmt.Sprintf("StreamKind(%d)", int32(k))
	}
}

// ColumnEncodingKind selects how a column's value streams are encoded.
type ColumnEncodingKind int32

const (
	ColumnEncodingDirect ColumnEncodingKind = iota
	ColumnEncodingDictionary
	ColumnEncodingDirectV2
	ColumnEncodingDictionaryV2
)

func (k ColumnEncodingKind) String() string {
	switch k {
	case ColumnEncodingDirect:
		return "DIRECT"
	case ColumnEncodingDictionary:
		return "DICTIONARY"
	case ColumnEncodingDirectV2:
		return "DIRECT_V2"
	case ColumnEncodingDictionaryV2:
		return "DICTIONARY_V2"
	default:
		return fmt.Sprintf("ColumnEncodingKind(%d)", int32(k))
	}
}

// IsV2 reports whether the encoding uses the RLE v2 integer format.
func (k ColumnEncodingKind) IsV2() bool {
	return k == ColumnEncodingDirectV2 || k == ColumnEncodingDictionaryV2
}

// IsDictionary reports whether the encoding stores values through a
// dictionary.
func (k ColumnEncodingKind) IsDictionary() bool {
	return k == ColumnEncodingDictionary || k == ColumnEncodingDictionaryV2
}

// TypeKind is the logical type of a column in the file schema.
type TypeKind int32

const (
	TypeBoolean TypeKind = iota
	TypeByte
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeString
	TypeBinary
	TypeTimestamp
	TypeList
	TypeMap
	TypeStruct
	TypeUnion
	TypeDecimal
	TypeDate
	TypeVarchar
	TypeChar
)

var typeKindNames = [...]string{
	"BOOLEAN", "BYTE", "SHORT", "INT", "LONG", "FLOAT", "DOUBLE", "STRING",
	"BINARY", "TIMESTAMP", "LIST", "MAP", "STRUCT", "UNION", "DECIMAL",
	"DATE", "VARCHAR", "CHAR",
}

func (k TypeKind) String() string {
	if k >= 0 && int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return fmt.Sprintf("TypeKind(%d)", int32(k))
}

// PostScript is the last metadata section of a file; it is never compressed
// and its serialized length is stored in the final byte of the file.
type PostScript struct {
	FooterLength         uint64
	Compression          CompressionKind
	CompressionBlockSize uint64
	Version              []uint32
	MetadataLength       uint64
	WriterVersion        uint32
	Magic                string
}

// StripeInformation locates one stripe within the file.
type StripeInformation struct {
	Offset       uint64
	IndexLength  uint64
	DataLength   uint64
	FooterLength uint64
	NumberOfRows uint64
}

// Type is one node of the flattened schema tree stored in the footer.
// Subtypes are column ids of child nodes in pre-order.
type Type struct {
	Kind          TypeKind
	Subtypes      []uint32
	FieldNames    []string
	MaximumLength uint32
	Precision     uint32
	Scale         uint32
}

// UserMetadataItem is an application-defined key/value pair in the footer.
type UserMetadataItem struct {
	Name  string
	Value []byte
}

// Footer describes the file: schema, stripe locations and row counts.
type Footer struct {
	HeaderLength   uint64
	ContentLength  uint64
	Stripes        []StripeInformation
	Types          []Type
	Metadata       []UserMetadataItem
	NumberOfRows   uint64
	RowIndexStride uint32
}

// Stream maps (column, kind) to a length in the stripe data section.
// Stream byte ranges are implied by the order streams appear in the
// stripe footer.
type Stream struct {
	Kind   StreamKind
	Column uint32
	Length uint64
}

// ColumnEncoding is the per-column encoding selection for one stripe.
type ColumnEncoding struct {
	Kind           ColumnEncodingKind
	DictionarySize uint32
}

// StripeFooter lists the streams and column encodings of one stripe.
type StripeFooter struct {
	Streams        []Stream
	Columns        []ColumnEncoding
	WriterTimezone string
}
