package orc

import (
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/orc-go/orc-go/encoding/rle"
)

// Int128 is a signed 128-bit integer in two's complement, used for the
// unscaled values of decimal columns.
type Int128 struct {
	Hi int64
	Lo uint64
}

func Int128FromInt64(v int64) Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return Int128{Hi: hi, Lo: uint64(v)}
}

func (v Int128) IsNegative() bool { return v.Hi < 0 }

func (v Int128) Neg() Int128 {
	lo := -v.Lo
	hi := ^v.Hi
	if lo == 0 {
		hi++
	}
	return Int128{Hi: hi, Lo: lo}
}

func (v Int128) Add(w Int128) Int128 {
	lo, carry := bits.Add64(v.Lo, w.Lo, 0)
	return Int128{Hi: v.Hi + w.Hi + int64(carry), Lo: lo}
}

// Mul64 multiplies by a small positive constant, reporting overflow.
func (v Int128) Mul64(m uint64) (Int128, bool) {
	neg := v.IsNegative()
	if neg {
		v = v.Neg()
	}
	hi, lo := bits.Mul64(v.Lo, m)
	overflowHi, hiLo := bits.Mul64(uint64(v.Hi), m)
	hi, carry := bits.Add64(hi, hiLo, 0)
	if overflowHi != 0 || carry != 0 || hi > math.MaxInt64 {
		return Int128{}, false
	}
	out := Int128{Hi: int64(hi), Lo: lo}
	if neg {
		out = out.Neg()
	}
	return out, true
}

// Int64 converts to int64, reporting whether the value fits.
func (v Int128) Int64() (int64, bool) {
	switch v.Hi {
	case 0:
		return int64(v.Lo), v.Lo <= math.MaxInt64
	case -1:
		return int64(v.Lo), v.Lo > math.MaxInt64
	default:
		return 0, false
	}
}

// Abs returns the magnitude as an unsigned 128-bit (hi, lo) pair.
func (v Int128) Abs() (uint64, uint64) {
	if v.IsNegative() {
		v = v.Neg()
	}
	return uint64(v.Hi), v.Lo
}

// String formats the value in decimal.
func (v Int128) String() string {
	if v.Hi == 0 && v.Lo <= math.MaxInt64 {
		return fmt.Sprintf("%d", int64(v.Lo))
	}
	if v.Hi == -1 && v.Lo > math.MaxInt64 {
		return fmt.Sprintf("%d", int64(v.Lo))
	}
	neg := v.IsNegative()
	hi, lo := v.Abs()
	var digits [40]byte
	i := len(digits)
	for hi != 0 || lo != 0 {
		// Long division of the 128-bit magnitude by 10.
		rem := uint64(0)
		hi, rem = hi/10, hi%10
		q, r := bits.Div64(rem, lo, 10)
		lo = q
		i--
		digits[i] = '0' + byte(r)
	}
	if neg {
		i--
		digits[i] = '-'
	}
	return string(digits[i:])
}

// pow10x64 holds 10^0 through 10^19; larger powers need 128-bit math.
var pow10x64 = [...]uint64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000,
	1000000000, 10000000000, 100000000000, 1000000000000, 10000000000000,
	100000000000000, 1000000000000000, 10000000000000000,
	100000000000000000, 1000000000000000000, 10000000000000000000,
}

// scaleInt128 multiplies v by 10^shift, reporting overflow of the 128-bit
// range.
func scaleInt128(v Int128, shift int) (Int128, bool) {
	for shift > 0 {
		step := min(shift, 19)
		scaled, ok := v.Mul64(pow10x64[step])
		if !ok {
			return Int128{}, false
		}
		v = scaled
		shift -= step
	}
	return v, true
}

// readVarint128 decodes an unbounded zigzag-encoded base-128 varint into a
// 128-bit integer, as used by the Data stream of decimal columns.
func readVarint128(r io.ByteReader) (Int128, error) {
	var lo, hi uint64
	var s uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Int128{}, err
		}
		if s >= 128 || (s == 126 && b > 3) {
			return Int128{}, fmt.Errorf("%w: decimal varint exceeds 128 bits", rle.ErrOverflow)
		}
		part := uint64(b & 0x7f)
		switch {
		case s < 64:
			lo |= part << s
			if s > 57 {
				hi |= part >> (64 - s)
			}
		default:
			hi |= part << (s - 64)
		}
		if b&0x80 == 0 {
			break
		}
		s += 7
	}
	// Unsigned zigzag over the full 128-bit range.
	sign := lo & 1
	lo = lo>>1 | hi<<63
	hi >>= 1
	v := Int128{Hi: int64(hi), Lo: lo}
	if sign != 0 {
		v = Int128{Hi: ^v.Hi, Lo: ^v.Lo}
	}
	return v, nil
}
