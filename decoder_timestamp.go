package orc

import (
	"fmt"
	"math"

	"github.com/orc-go/orc-go/format"
)

// orcEpochSeconds is the Unix epoch offset of the timestamp zero point,
// 2015-01-01T00:00:00 UTC.
const orcEpochSeconds = 1_420_070_400

const nanosPerSecond = 1_000_000_000

// timestampColumnDecoder decodes timestamp columns into nanoseconds since
// the Unix epoch. The Data stream holds seconds relative to the 2015-01-01
// zero point in the writer's timezone; the Secondary stream holds the
// sub-second nanoseconds with their trailing decimal zeros compacted.
type timestampColumnDecoder struct {
	typ       *Type
	present   *presentDecoder
	seconds   intDecoder
	nanos     intDecoder
	base      int64
	scratch   []int64
	secondary []int64
	batch     Batch
}

func newTimestampColumnDecoder(s *Stripe, t *Type, encoding format.ColumnEncoding) (columnDecoder, error) {
	present, err := newPresentDecoder(s, t.ID)
	if err != nil {
		return nil, err
	}
	data, err := s.mustStream(t.ID, format.StreamData)
	if err != nil {
		return nil, err
	}
	secondary, err := s.mustStream(t.ID, format.StreamSecondary)
	if err != nil {
		return nil, err
	}
	return &timestampColumnDecoder{
		typ:     t,
		present: present,
		seconds: newIntDecoder(data, encoding.Kind, true),
		nanos:   newIntDecoder(secondary, encoding.Kind, false),
		base:    s.timestampBase(),
		batch:   Batch{Type: t},
	}, nil
}

func (d *timestampColumnDecoder) nextBatch(n int, parentPresent []bool) (*Batch, error) {
	present, err := derivePresent(d.present, parentPresent, n)
	if err != nil {
		return nil, err
	}
	b := &d.batch
	b.Length, b.Present = n, present
	b.Int64s = resize(b.Int64s, n)

	k := countPresent(present, n)
	d.scratch = resize(d.scratch, k)
	d.secondary = resize(d.secondary, k)
	if err := d.seconds.Decode(d.scratch); err != nil {
		return nil, err
	}
	if err := d.nanos.Decode(d.secondary); err != nil {
		return nil, err
	}
	for i := 0; i < k; i++ {
		nanos, err := decodeTimestamp(d.base, d.scratch[i], d.secondary[i])
		if err != nil {
			return nil, fmt.Errorf("%w in column %d", err, d.typ.ID)
		}
		b.Int64s[i] = nanos
	}
	if present != nil {
		spread(b.Int64s, present, k)
	}
	return b, nil
}

// decodeTimestamp combines the seconds and compacted-nanoseconds pair into
// nanoseconds since the Unix epoch.
func decodeTimestamp(base, secondsSinceBase, encodedNanos int64) (int64, error) {
	nanos := uint64(encodedNanos)
	// The low 3 bits count the trailing decimal zeros dropped before
	// encoding; zero means none were dropped.
	zeros := nanos & 0x7
	nanos >>= 3
	if zeros != 0 {
		for z := uint64(0); z < zeros+1; z++ {
			nanos *= 10
		}
	}
	if nanos >= nanosPerSecond {
		return 0, fmt.Errorf("%w: timestamp sub-second value %d", ErrInvalidEncoding, nanos)
	}
	seconds := secondsSinceBase + base
	// Negative timestamps with a sub-second component are stored one
	// second ahead of their value (ORC-763).
	if seconds < 0 && nanos > 999_999 {
		seconds--
	}
	if seconds > math.MaxInt64/nanosPerSecond || seconds < math.MinInt64/nanosPerSecond {
		return 0, fmt.Errorf("%w: timestamp %d seconds does not fit 64-bit nanoseconds", ErrOverflow, seconds)
	}
	result := seconds*nanosPerSecond + int64(nanos)
	if seconds > 0 && result < 0 {
		return 0, fmt.Errorf("%w: timestamp %d seconds does not fit 64-bit nanoseconds", ErrOverflow, seconds)
	}
	return result, nil
}
