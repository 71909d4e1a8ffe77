package bitvec

import "github.com/rv32toy/rv32sim/faults"

// nibbleTable maps a 4-bit pattern (MSB-first, index 0..15) to its hex
// digit. The inverse table below is built from this one so the two can
// never drift apart.
var nibbleTable = [16]byte{
	'0', '1', '2', '3', '4', '5', '6', '7',
	'8', '9', 'a', 'b', 'c', 'd', 'e', 'f',
}

var nibbleInverse = buildNibbleInverse()

func buildNibbleInverse() map[byte]int {
	m := make(map[byte]int, 32)
	for i, c := range nibbleTable {
		m[c] = i
		if c >= 'a' && c <= 'f' {
			m[c-'a'+'A'] = i
		}
	}
	return m
}

// FormatHex renders v as a lowercase hex string using the nibble table.
// v's width must be a multiple of 4.
func FormatHex(v Vector) string {
	if v.Width()%4 != 0 {
		panic(faults.New(component, faults.KindWidthMismatch, "hex format requires width multiple of 4, got %d", v.Width()))
	}
	nibbles := v.Width() / 4
	out := make([]byte, nibbles)
	for n := 0; n < nibbles; n++ {
		nib := v.Slice(n*4, n*4+4)
		idx := nibbleToIndex(nib)
		out[n] = nibbleTable[idx]
	}
	return string(out)
}

func nibbleToIndex(nib Vector) int {
	idx := 0
	weight := [4]int{8, 4, 2, 1}
	for i := 0; i < 4; i++ {
		if nib.Get(i) {
			idx += weight[i]
		}
	}
	return idx
}

// ParseHex parses a hex string (case-insensitive) into a vector of the
// given width, which must equal 4*len(s). An odd-length or non-hex string
// is a fatal error.
func ParseHex(s string, width int) (Vector, error) {
	if len(s)%2 != 0 {
		return Vector{}, faults.New(component, faults.KindMalformedInput, "hex string %q has odd length", s)
	}
	if width != len(s)*4 {
		return Vector{}, faults.New(component, faults.KindWidthMismatch, "hex string %q encodes %d bits, want %d", s, len(s)*4, width)
	}
	bits := make([]bool, 0, width)
	for _, c := range []byte(s) {
		idx, ok := nibbleInverse[c]
		if !ok {
			return Vector{}, faults.New(component, faults.KindMalformedInput, "invalid hex digit %q in %q", c, s)
		}
		weight := [4]int{8, 4, 2, 1}
		for _, w := range weight {
			bits = append(bits, idx >= w)
			if idx >= w {
				idx -= w
			}
		}
	}
	return Vector{bits: bits}, nil
}
