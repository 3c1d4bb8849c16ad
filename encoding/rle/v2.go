package rle

import "fmt"

// maxRunLength is the largest number of values a single v2 run can carry.
const maxRunLength = 512

// V2Decoder decodes the v2 integer run-length encoding. The top two bits
// of each header byte select one of four sub-encodings: ShortRepeat,
// Direct, PatchedBase and Delta.
type V2Decoder struct {
	r      Reader
	signed bool

	buf      []int64
	used     int
	unpacked []uint64
}

func NewV2Decoder(r Reader, signed bool) *V2Decoder {
	return &V2Decoder{
		r:      r,
		signed: signed,
		buf:    make([]int64, 0, maxRunLength),
	}
}

// Decode fills dst with the next len(dst) integers of the sequence.
func (d *V2Decoder) Decode(dst []int64) error {
	i := 0
	for i < len(dst) {
		if d.used == len(d.buf) {
			if err := d.readRun(); err != nil {
				return err
			}
		}
		n := copy(dst[i:], d.buf[d.used:])
		d.used += n
		i += n
	}
	return nil
}

func (d *V2Decoder) readRun() error {
	header, err := readByte(d.r)
	if err != nil {
		return err
	}
	d.buf = d.buf[:0]
	d.used = 0
	switch header >> 6 {
	case 0:
		return d.readShortRepeat(header)
	case 1:
		return d.readDirect(header)
	case 2:
		return d.readPatchedBase(header)
	default:
		return d.readDelta(header)
	}
}

// runLength reads the second header byte and combines it with the length
// bit of the first into the run length. The 9-bit field encodes [0, 511]
// and is stored one off from the actual [1, 512].
func (d *V2Decoder) runLength(header byte) (int, error) {
	second, err := readByte(d.r)
	if err != nil {
		return 0, err
	}
	return (int(header&1)<<8 | int(second)) + 1, nil
}

func (d *V2Decoder) scratch(n int) []uint64 {
	if cap(d.unpacked) < n {
		d.unpacked = make([]uint64, n)
	}
	return d.unpacked[:n]
}

// readShortRepeat decodes the 00 sub-encoding: a single value stored
// big-endian in 1-8 bytes, repeated 3-10 times.
func (d *V2Decoder) readShortRepeat(header byte) error {
	byteWidth := int(header>>3&0x07) + 1
	runLength := int(header&0x07) + 3
	u, err := readBigEndian(d.r, byteWidth)
	if err != nil {
		return err
	}
	v := int64(u)
	if d.signed {
		v = zigzagDecode(u)
	}
	for k := 0; k < runLength; k++ {
		d.buf = append(d.buf, v)
	}
	return nil
}

// readDirect decodes the 01 sub-encoding: values bit-packed contiguously
// at a width drawn from the canonical table.
func (d *V2Decoder) readDirect(header byte) error {
	bitWidth := decodeBitWidth(int(header >> 1 & 0x1f))
	length, err := d.runLength(header)
	if err != nil {
		return err
	}
	values := d.scratch(length)
	if err := readBitPacked(d.r, values, bitWidth); err != nil {
		return err
	}
	for _, u := range values {
		v := int64(u)
		if d.signed {
			v = zigzagDecode(u)
		}
		d.buf = append(d.buf, v)
	}
	return nil
}

// readPatchedBase decodes the 10 sub-encoding: bit-packed values offset by
// a base, with a patch list restoring the high bits of outliers. Values
// are never zigzag-encoded here; the base carries an explicit sign bit in
// its most significant encoded bit.
func (d *V2Decoder) readPatchedBase(header byte) error {
	valueWidth := decodeBitWidth(int(header >> 1 & 0x1f))
	length, err := d.runLength(header)
	if err != nil {
		return err
	}
	third, err := readByte(d.r)
	if err != nil {
		return err
	}
	fourth, err := readByte(d.r)
	if err != nil {
		return err
	}
	baseWidth := int(third>>5&0x07) + 1
	patchWidth := decodeBitWidth(int(third & 0x1f))
	gapWidth := int(fourth>>5&0x07) + 1
	patchListLength := int(fourth & 0x1f)
	if patchWidth+gapWidth > 64 {
		return fmt.Errorf("%w: combined patch width %d and gap width %d exceed 64 bits",
			ErrInvalidEncoding, patchWidth, gapWidth)
	}

	baseBits, err := readBigEndian(d.r, baseWidth)
	if err != nil {
		return err
	}
	base := decodeSignedMSB(baseBits, baseWidth)

	values := d.scratch(length)
	if err := readBitPacked(d.r, values, valueWidth); err != nil {
		return err
	}

	patches := make([]uint64, patchListLength)
	if err := readBitPacked(d.r, patches, closestFixedBits(patchWidth+gapWidth)); err != nil {
		return err
	}

	if len(patches) == 0 {
		// Degenerate run with no outliers; behaves like Direct plus base.
		for _, u := range values {
			v, err := checkedAdd(int64(u), base)
			if err != nil {
				return err
			}
			d.buf = append(d.buf, v)
		}
		return nil
	}

	patchMask := uint64(1)<<patchWidth - 1
	patchIndex := 0
	currentGap, currentPatch, err := nextPatch(patches, &patchIndex, patchWidth, patchMask)
	if err != nil {
		return err
	}
	actualGap := currentGap

	for idx, u := range values {
		v := int64(u)
		if uint64(idx) == actualGap {
			if currentPatch>>(64-valueWidth) != 0 {
				return fmt.Errorf("%w: patch bits overflow when shifted by value width %d",
					ErrInvalidEncoding, valueWidth)
			}
			v |= int64(currentPatch << valueWidth)
			patchIndex++
			if patchIndex < len(patches) {
				currentGap, currentPatch, err = nextPatch(patches, &patchIndex, patchWidth, patchMask)
				if err != nil {
					return err
				}
				actualGap = currentGap + uint64(idx)
			}
		}
		v, err := checkedAdd(v, base)
		if err != nil {
			return err
		}
		d.buf = append(d.buf, v)
	}
	return nil
}

// nextPatch reads the patch record at *patchIndex, folding in the special
// (gap=255, patch=0) continuation records that extend gaps beyond 255.
func nextPatch(patches []uint64, patchIndex *int, patchWidth int, patchMask uint64) (gap, patch uint64, err error) {
	gap = patches[*patchIndex] >> patchWidth
	patch = patches[*patchIndex] & patchMask
	for gap == 255 && patch == 0 {
		*patchIndex++
		if *patchIndex >= len(patches) {
			return 0, 0, fmt.Errorf("%w: patch list ends inside a gap continuation", ErrInvalidEncoding)
		}
		gap += patches[*patchIndex] >> patchWidth
		patch = patches[*patchIndex] & patchMask
	}
	return gap, patch, nil
}

// readDelta decodes the 11 sub-encoding: a varint base, a signed varint
// first delta, then optionally bit-packed further deltas whose direction
// follows the sign of the first. A delta width of zero means the whole run
// steps by the first delta.
func (d *V2Decoder) readDelta(header byte) error {
	deltaWidth := 0
	if code := int(header >> 1 & 0x1f); code != 0 {
		deltaWidth = decodeBitWidth(code)
	}
	length, err := d.runLength(header)
	if err != nil {
		return err
	}
	if deltaWidth != 0 && length < 2 {
		return fmt.Errorf("%w: delta run of %d values declares packed deltas",
			ErrInvalidEncoding, length)
	}

	var base int64
	if d.signed {
		base, err = readSvarint(d.r)
	} else {
		var u uint64
		u, err = readUvarint(d.r)
		base = int64(u)
	}
	if err != nil {
		return err
	}
	deltaBase, err := readSvarint(d.r)
	if err != nil {
		return err
	}
	d.buf = append(d.buf, base)

	if deltaWidth == 0 {
		acc := base
		for k := 0; k < length-1; k++ {
			acc += deltaBase
			d.buf = append(d.buf, acc)
		}
		return nil
	}

	acc := base + deltaBase
	d.buf = append(d.buf, acc)
	deltas := d.scratch(length - 2)
	if err := readBitPacked(d.r, deltas, deltaWidth); err != nil {
		return err
	}
	for _, delta := range deltas {
		if deltaBase < 0 {
			acc -= int64(delta)
		} else {
			acc += int64(delta)
		}
		d.buf = append(d.buf, acc)
	}
	return nil
}

// decodeSignedMSB interprets the most significant bit of an n-byte
// big-endian value as a sign flag over the magnitude in the lower bits.
func decodeSignedMSB(u uint64, byteWidth int) int64 {
	msbMask := uint64(1) << (byteWidth*8 - 1)
	if u&msbMask == 0 {
		return int64(u)
	}
	return -int64(u &^ msbMask)
}

func checkedAdd(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%w: patched base addition overflows int64 (%d + %d)",
			ErrOverflow, a, b)
	}
	return sum, nil
}
