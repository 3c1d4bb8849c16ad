package rle

// V1Decoder decodes the v1 integer run-length encoding.
//
// A control byte in [0, 127] starts a run of control+3 values: the next
// byte is a signed delta and a varint base follows, each emitted value
// stepping by the delta. A negative control byte is followed by its
// magnitude of literal varint values. Signed streams store values
// zigzag-encoded; unsigned streams store them directly.
type V1Decoder struct {
	r      Reader
	signed bool

	literal bool
	length  int
	base    int64
	delta   int64
}

func NewV1Decoder(r Reader, signed bool) *V1Decoder {
	return &V1Decoder{r: r, signed: signed}
}

func (d *V1Decoder) readValue() (int64, error) {
	if d.signed {
		return readSvarint(d.r)
	}
	u, err := readUvarint(d.r)
	return int64(u), err
}

func (d *V1Decoder) readHeader() error {
	control, err := readByte(d.r)
	if err != nil {
		return err
	}
	if control >= 0x80 {
		d.literal = true
		d.length = 0x100 - int(control)
		return nil
	}
	d.literal = false
	d.length = int(control) + 3
	deltaByte, err := readByte(d.r)
	if err != nil {
		return err
	}
	d.delta = int64(int8(deltaByte))
	d.base, err = d.readValue()
	return err
}

// Decode fills dst with the next len(dst) integers of the sequence.
func (d *V1Decoder) Decode(dst []int64) error {
	for i := range dst {
		if d.length == 0 {
			if err := d.readHeader(); err != nil {
				return err
			}
		}
		if d.literal {
			v, err := d.readValue()
			if err != nil {
				return err
			}
			dst[i] = v
		} else {
			dst[i] = d.base
			d.base += d.delta
		}
		d.length--
	}
	return nil
}
