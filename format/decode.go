package format

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

type buffer struct {
	data []byte
	pos  int
}

func (b *buffer) len() int { return len(b.data) - b.pos }

func (b *buffer) readTag() (protowire.Number, protowire.Type, error) {
	num, typ, n := protowire.ConsumeTag(b.data[b.pos:])
	if n < 0 {
		return 0, 0, fmt.Errorf("orc: invalid protobuf tag: %w", protowire.ParseError(n))
	}
	b.pos += n
	return num, typ, nil
}

func (b *buffer) readVarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(b.data[b.pos:])
	if n < 0 {
		return 0, fmt.Errorf("orc: invalid protobuf varint: %w", protowire.ParseError(n))
	}
	b.pos += n
	return v, nil
}

func (b *buffer) readBytes() ([]byte, error) {
	v, n := protowire.ConsumeBytes(b.data[b.pos:])
	if n < 0 {
		return nil, fmt.Errorf("orc: invalid protobuf bytes field: %w", protowire.ParseError(n))
	}
	b.pos += n
	return v, nil
}

func (b *buffer) skip(num protowire.Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, b.data[b.pos:])
	if n < 0 {
		return fmt.Errorf("orc: invalid protobuf field %d: %w", num, protowire.ParseError(n))
	}
	b.pos += n
	return nil
}

// readPackedUint32 handles a repeated uint32 field which may be written
// either packed or as individual varints.
func (b *buffer) readPackedUint32(typ protowire.Type, dst []uint32) ([]uint32, error) {
	if typ == protowire.BytesType {
		packed, err := b.readBytes()
		if err != nil {
			return nil, err
		}
		inner := buffer{data: packed}
		for inner.len() > 0 {
			v, err := inner.readVarint()
			if err != nil {
				return nil, err
			}
			dst = append(dst, uint32(v))
		}
		return dst, nil
	}
	v, err := b.readVarint()
	if err != nil {
		return nil, err
	}
	return append(dst, uint32(v)), nil
}

// DecodePostScript decodes the uncompressed postscript section.
func DecodePostScript(data []byte) (*PostScript, error) {
	b := buffer{data: data}
	ps := new(PostScript)
	for b.len() > 0 {
		num, typ, err := b.readTag()
		if err != nil {
			return nil, err
		}
		switch num {
		case 1:
			ps.FooterLength, err = b.readVarint()
		case 2:
			var v uint64
			v, err = b.readVarint()
			ps.Compression = CompressionKind(v)
		case 3:
			ps.CompressionBlockSize, err = b.readVarint()
		case 4:
			ps.Version, err = b.readPackedUint32(typ, ps.Version)
		case 5:
			ps.MetadataLength, err = b.readVarint()
		case 6:
			var v uint64
			v, err = b.readVarint()
			ps.WriterVersion = uint32(v)
		case 8000:
			var v []byte
			v, err = b.readBytes()
			ps.Magic = string(v)
		default:
			err = b.skip(num, typ)
		}
		if err != nil {
			return nil, err
		}
	}
	return ps, nil
}

func decodeStripeInformation(data []byte) (si StripeInformation, err error) {
	b := buffer{data: data}
	for b.len() > 0 {
		num, typ, err := b.readTag()
		if err != nil {
			return si, err
		}
		switch num {
		case 1:
			si.Offset, err = b.readVarint()
		case 2:
			si.IndexLength, err = b.readVarint()
		case 3:
			si.DataLength, err = b.readVarint()
		case 4:
			si.FooterLength, err = b.readVarint()
		case 5:
			si.NumberOfRows, err = b.readVarint()
		default:
			err = b.skip(num, typ)
		}
		if err != nil {
			return si, err
		}
	}
	return si, nil
}

func decodeType(data []byte) (t Type, err error) {
	b := buffer{data: data}
	for b.len() > 0 {
		num, typ, err := b.readTag()
		if err != nil {
			return t, err
		}
		switch num {
		case 1:
			var v uint64
			v, err = b.readVarint()
			t.Kind = TypeKind(v)
		case 2:
			t.Subtypes, err = b.readPackedUint32(typ, t.Subtypes)
		case 3:
			var v []byte
			v, err = b.readBytes()
			t.FieldNames = append(t.FieldNames, string(v))
		case 4:
			var v uint64
			v, err = b.readVarint()
			t.MaximumLength = uint32(v)
		case 5:
			var v uint64
			v, err = b.readVarint()
			t.Precision = uint32(v)
		case 6:
			var v uint64
			v, err = b.readVarint()
			t.Scale = uint32(v)
		default:
			err = b.skip(num, typ)
		}
		if err != nil {
			return t, err
		}
	}
	return t, nil
}

func decodeUserMetadataItem(data []byte) (m UserMetadataItem, err error) {
	b := buffer{data: data}
	for b.len() > 0 {
		num, typ, err := b.readTag()
		if err != nil {
			return m, err
		}
		switch num {
		case 1:
			var v []byte
			v, err = b.readBytes()
			m.Name = string(v)
		case 2:
			m.Value, err = b.readBytes()
		default:
			err = b.skip(num, typ)
		}
		if err != nil {
			return m, err
		}
	}
	return m, nil
}

// DecodeFooter decodes the (already decompressed) file footer.
func DecodeFooter(data []byte) (*Footer, error) {
	b := buffer{data: data}
	f := new(Footer)
	for b.len() > 0 {
		num, typ, err := b.readTag()
		if err != nil {
			return nil, err
		}
		switch num {
		case 1:
			f.HeaderLength, err = b.readVarint()
		case 2:
			f.ContentLength, err = b.readVarint()
		case 3:
			var v []byte
			if v, err = b.readBytes(); err == nil {
				var si StripeInformation
				if si, err = decodeStripeInformation(v); err == nil {
					f.Stripes = append(f.Stripes, si)
				}
			}
		case 4:
			var v []byte
			if v, err = b.readBytes(); err == nil {
				var t Type
				if t, err = decodeType(v); err == nil {
					f.Types = append(f.Types, t)
				}
			}
		case 5:
			var v []byte
			if v, err = b.readBytes(); err == nil {
				var m UserMetadataItem
				if m, err = decodeUserMetadataItem(v); err == nil {
					f.Metadata = append(f.Metadata, m)
				}
			}
		case 6:
			f.NumberOfRows, err = b.readVarint()
		case 8:
			var v uint64
			v, err = b.readVarint()
			f.RowIndexStride = uint32(v)
		default:
			err = b.skip(num, typ)
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

func decodeStream(data []byte) (s Stream, err error) {
	b := buffer{data: data}
	for b.len() > 0 {
		num, typ, err := b.readTag()
		if err != nil {
			return s, err
		}
		switch num {
		case 1:
			var v uint64
			v, err = b.readVarint()
			s.Kind = StreamKind(v)
		case 2:
			var v uint64
			v, err = b.readVarint()
			s.Column = uint32(v)
		case 3:
			s.Length, err = b.readVarint()
		default:
			err = b.skip(num, typ)
		}
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

func decodeColumnEncoding(data []byte) (c ColumnEncoding, err error) {
	b := buffer{data: data}
	for b.len() > 0 {
		num, typ, err := b.readTag()
		if err != nil {
			return c, err
		}
		switch num {
		case 1:
			var v uint64
			v, err = b.readVarint()
			c.Kind = ColumnEncodingKind(v)
		case 2:
			var v uint64
			v, err = b.readVarint()
			c.DictionarySize = uint32(v)
		default:
			err = b.skip(num, typ)
		}
		if err != nil {
			return c, err
		}
	}
	return c, nil
}

// DecodeStripeFooter decodes the (already decompressed) footer of one stripe.
func DecodeStripeFooter(data []byte) (*StripeFooter, error) {
	b := buffer{data: data}
	f := new(StripeFooter)
	for b.len() > 0 {
		num, typ, err := b.readTag()
		if err != nil {
			return nil, err
		}
		switch num {
		case 1:
			var v []byte
			if v, err = b.readBytes(); err == nil {
				var s Stream
				if s, err = decodeStream(v); err == nil {
					f.Streams = append(f.Streams, s)
				}
			}
		case 2:
			var v []byte
			if v, err = b.readBytes(); err == nil {
				var c ColumnEncoding
				if c, err = decodeColumnEncoding(v); err == nil {
					f.Columns = append(f.Columns, c)
				}
			}
		case 3:
			var v []byte
			v, err = b.readBytes()
			f.WriterTimezone = string(v)
		default:
			err = b.skip(num, typ)
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}
