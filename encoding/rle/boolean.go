package rle

// BooleanDecoder decodes booleans packed eight per byte, most significant
// bit first, with the packed bytes themselves byte run-length encoded.
//
// The encoding carries no row count, so the final byte may hold unused low
// bits; callers decode exactly the number of rows they know about and the
// padding is never observed.
type BooleanDecoder struct {
	bytes *ByteDecoder
	data  byte
	bits  int
}

func NewBooleanDecoder(r Reader) *BooleanDecoder {
	return &BooleanDecoder{bytes: NewByteDecoder(r)}
}

// Decode fills dst with the next len(dst) booleans of the sequence.
func (d *BooleanDecoder) Decode(dst []bool) error {
	for i := range dst {
		if d.bits == 0 {
			var buf [1]byte
			if err := d.bytes.Decode(buf[:]); err != nil {
				return err
			}
			d.data = buf[0]
			d.bits = 8
		}
		dst[i] = d.data&0x80 != 0
		d.data <<= 1
		d.bits--
	}
	return nil
}
