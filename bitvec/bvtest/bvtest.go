// Package bvtest holds the test-only host-integer <-> bitvec.Vector
// conversions. It is physically segregated from bitvec itself so that no
// functional-unit code can accidentally depend on it: this package may use
// %, /, and << because it is never imported outside _test.go files.
package bvtest

import "github.com/rv32toy/rv32sim/bitvec"

// FromUint64 builds a width-bit vector (MSB-first) from a host unsigned
// integer. Test utility only.
func FromUint64(width int, value uint64) bitvec.Vector {
	bits := make([]bool, width)
	for i := width - 1; i >= 0; i-- {
		bits[i] = value%2 == 1
		value /= 2
	}
	return bitvec.FromBits(bits)
}

// ToUint64 reads a vector MSB-first into a host unsigned integer. Test
// utility only.
func ToUint64(v bitvec.Vector) uint64 {
	var acc uint64
	for i := 0; i < v.Width(); i++ {
		acc = acc*2 + boolToUint64(v.Get(i))
	}
	return acc
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// FromInt32 builds a 32-bit two's-complement vector from a host int32.
func FromInt32(value int32) bitvec.Vector {
	return FromUint64(32, uint64(uint32(value)))
}

// ToInt32 reads a 32-bit vector as a host int32.
func ToInt32(v bitvec.Vector) int32 {
	return int32(uint32(ToUint64(v)))
}
