package rle

import "io"

const (
	byteMinRepeat  = 3
	byteMaxRepeat  = 130
	byteMaxLiteral = 128
)

// ByteDecoder decodes the byte run-length encoding: a control byte in
// [0, 127] repeats the following byte control+3 times, a control byte in
// [-128, -1] is followed by that many literal bytes.
type ByteDecoder struct {
	r Reader

	literals [byteMaxLiteral]byte
	n        int
	used     int
	repeat   bool
}

func NewByteDecoder(r Reader) *ByteDecoder {
	return &ByteDecoder{r: r}
}

func (d *ByteDecoder) refill() error {
	control, err := readByte(d.r)
	if err != nil {
		return err
	}
	d.used = 0
	if control < 0x80 {
		d.repeat = true
		d.n = int(control) + byteMinRepeat
		d.literals[0], err = readByte(d.r)
		return err
	}
	d.repeat = false
	d.n = 0x100 - int(control)
	if _, err := io.ReadFull(d.r, d.literals[:d.n]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// Decode fills dst with the next len(dst) bytes of the sequence.
func (d *ByteDecoder) Decode(dst []byte) error {
	for i := range dst {
		if d.used == d.n {
			if err := d.refill(); err != nil {
				return err
			}
		}
		if d.repeat {
			dst[i] = d.literals[0]
		} else {
			dst[i] = d.literals[d.used]
		}
		d.used++
	}
	return nil
}
