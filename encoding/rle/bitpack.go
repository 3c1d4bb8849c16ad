package rle

import (
	"fmt"
	"io"
)

// decodeBitWidth maps the 5-bit width code used by the v2 Direct, Patched
// Base and Delta headers to an actual bit width. Codes 0-23 map linearly to
// widths 1-24; the remaining codes select the larger aligned widths. The
// table is part of the wire format and must not be altered.
func decodeBitWidth(encoded int) int {
	switch {
	case encoded >= 0 && encoded <= 23:
		return encoded + 1
	case encoded == 24:
		return 26
	case encoded == 25:
		return 28
	case encoded == 26:
		return 30
	case encoded == 27:
		return 32
	case encoded == 28:
		return 40
	case encoded == 29:
		return 48
	case encoded == 30:
		return 56
	default:
		return 64
	}
}

// closestFixedBits rounds a width up to the nearest width expressible by
// the table above. The reference implementation applies this to the
// combined patch+gap width of Patched Base runs even though the ORC
// specification does not mention it.
func closestFixedBits(width int) int {
	switch {
	case width <= 24:
		if width < 1 {
			return 1
		}
		return width
	case width <= 26:
		return 26
	case width <= 28:
		return 28
	case width <= 30:
		return 30
	case width <= 32:
		return 32
	case width <= 40:
		return 40
	case width <= 48:
		return 48
	case width <= 56:
		return 56
	default:
		return 64
	}
}

// readBigEndian reads n bytes as a big-endian unsigned integer.
func readBigEndian(r Reader, n int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[8-n:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	var v uint64
	for _, b := range buf[8-n:] {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// readBitPacked fills dst with len(dst) unsigned values packed at bitWidth
// bits each, big-endian bit order within bytes. The final byte of a run may
// carry unused low bits, which are discarded.
func readBitPacked(r Reader, dst []uint64, bitWidth int) error {
	if bitWidth < 1 || bitWidth > 64 {
		return fmt.Errorf("%w: bit width %d out of range", ErrInvalidEncoding, bitWidth)
	}
	switch {
	case bitWidth == 1:
		return readBitPackedSmall(r, dst, 1, 8)
	case bitWidth == 2:
		return readBitPackedSmall(r, dst, 2, 4)
	case bitWidth == 4:
		return readBitPackedSmall(r, dst, 4, 2)
	case bitWidth%8 == 0:
		return readBitPackedAligned(r, dst, bitWidth/8)
	default:
		return readBitPackedUnaligned(r, dst, bitWidth)
	}
}

// readBitPackedSmall handles the sub-byte widths that divide 8 evenly.
func readBitPackedSmall(r Reader, dst []uint64, bitWidth, perByte int) error {
	mask := byte(1<<bitWidth - 1)
	for i := 0; i < len(dst); i += perByte {
		b, err := readByte(r)
		if err != nil {
			return err
		}
		n := min(perByte, len(dst)-i)
		for j := 0; j < n; j++ {
			shift := 8 - bitWidth*(j+1)
			dst[i+j] = uint64((b >> shift) & mask)
		}
	}
	return nil
}

func readBitPackedAligned(r Reader, dst []uint64, numBytes int) error {
	for i := range dst {
		v, err := readBigEndian(r, numBytes)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func readBitPackedUnaligned(r Reader, dst []uint64, bitWidth int) error {
	bitsLeft := 0
	current := byte(0)
	for i := range dst {
		var result uint64
		bitsToRead := bitWidth
		for bitsToRead > bitsLeft {
			result <<= bitsLeft
			result |= uint64(current & (1<<bitsLeft - 1))
			bitsToRead -= bitsLeft
			b, err := readByte(r)
			if err != nil {
				return err
			}
			current = b
			bitsLeft = 8
		}
		if bitsToRead > 0 {
			result <<= bitsToRead
			bitsLeft -= bitsToRead
			result |= uint64(current>>bitsLeft) & (1<<bitsToRead - 1)
		}
		dst[i] = result
	}
	return nil
}
