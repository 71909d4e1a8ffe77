// Package twoscomplement converts between signed host integers and 32-bit
// bitvec.Vector encodings. Per spec, the conversion is built only from
// addition, subtraction, and comparison on nonnegative integers: no host
// multiplication, shift, or modulus touches the value being encoded.
package twoscomplement

import "github.com/rv32toy/rv32sim/bitvec"

const width = 32

// powersOfTwo holds 2^0 .. 2^31, built by repeated self-addition (doubling)
// starting from 1 -- never by multiplication or shifting.
var powersOfTwo = buildPowers()

func buildPowers() [width]int64 {
	var p [width]int64
	p[0] = 1
	for i := 1; i < width; i++ {
		p[i] = p[i-1] + p[i-1]
	}
	return p
}

// twoPow32 is 2^32, one more doubling past the last entry of powersOfTwo.
var twoPow32 = powersOfTwo[width-1] + powersOfTwo[width-1]

// Encoded is the result of encoding a signed integer into a 32-bit vector.
type Encoded struct {
	Bin      bitvec.Vector
	Hex      string
	Overflow bool
}

// Encode converts value into its 32-bit two's-complement bit vector. Values
// outside [-2^31, 2^31-1] set Overflow and are truncated to their low 32
// bits, computed via the same strict algorithm.
func Encode(value int64) Encoded {
	const minVal = -2147483648
	const maxVal = 2147483647
	overflow := value < minVal || value > maxVal

	nonneg := toNonnegativeRepresentative(value)

	bits := make([]bool, width)
	remaining := nonneg
	for i := 0; i < width; i++ {
		power := powersOfTwo[width-1-i]
		if remaining >= power {
			bits[i] = true
			remaining -= power
		} else {
			bits[i] = false
		}
	}

	vec := bitvec.FromBits(bits)
	return Encoded{Bin: vec, Hex: bitvec.FormatHex(vec), Overflow: overflow}
}

// toNonnegativeRepresentative maps value into [0, 2^32) using only
// addition, subtraction and comparison: add 2^32 once if negative (per
// spec), then normalize any further excess by repeated addition/subtraction
// of 2^32 for values further outside the 32-bit range.
func toNonnegativeRepresentative(value int64) int64 {
	nonneg := value
	for nonneg < 0 {
		nonneg += twoPow32
	}
	for nonneg >= twoPow32 {
		nonneg -= twoPow32
	}
	return nonneg
}

// Decode converts a 32-bit vector into its signed integer value in
// [-2^31, 2^31-1], walking MSB-first and doubling an accumulator by
// self-addition.
func Decode(v bitvec.Vector) int64 {
	if v.Width() != width {
		panic("twoscomplement: Decode requires a 32-bit vector")
	}
	var acc int64
	for i := 0; i < width; i++ {
		acc = acc + acc
		if v.Get(i) {
			acc++
		}
	}
	if v.MSB() {
		acc -= twoPow32
	}
	return acc
}
