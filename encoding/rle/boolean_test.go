package rle

import (
	"bytes"
	"reflect"
	"testing"
)

func TestBooleanDecoder(t *testing.T) {
	tests := []struct {
		scenario string
		input    []byte
		expect   []bool
	}{
		{
			scenario: "long false run",
			input:    []byte{0x61, 0x00},
			expect:   make([]bool, 800),
		},

		{
			scenario: "literal bytes",
			input:    []byte{0xfe, 0b01000100, 0b01000101},
			expect: []bool{
				false, true, false, false, false, true, false, false,
				false, true, false, false, false, true, false, true,
			},
		},

		{
			scenario: "one true then seven false",
			input:    []byte{0xff, 0x80},
			expect:   []bool{true, false, false, false, false, false, false, false},
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			d := NewBooleanDecoder(bytes.NewReader(test.input))
			got := make([]bool, len(test.expect))
			if err := d.Decode(got); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, test.expect) {
				t.Errorf("got=%v want=%v", got, test.expect)
			}
		})
	}
}

func TestBooleanDecoderTrailingBits(t *testing.T) {
	// Five rows packed into one literal byte; the three padding bits must
	// never be requested.
	d := NewBooleanDecoder(bytes.NewReader([]byte{0xff, 0b10110000}))
	got := make([]bool, 5)
	if err := d.Decode(got); err != nil {
		t.Fatal(err)
	}
	expect := []bool{true, false, true, true, false}
	if !reflect.DeepEqual(got, expect) {
		t.Errorf("got=%v want=%v", got, expect)
	}
}
