package fpu

import "github.com/rv32toy/rv32sim/bitvec"

// Unpack decomposes a 32-bit IEEE-754 vector into sign, biased exponent,
// explicit-hidden-bit significand and classification.
func Unpack(v bitvec.Vector) Unpacked {
	sign := v.Get(0)
	exponent := v.Slice(1, 9)
	fraction := v.Slice(9, 32)

	expZero := exponent.IsZero()
	expOnes := allOnes(exponent)
	fracZero := fraction.IsZero()

	var class Class
	var hidden bool
	switch {
	case expZero && fracZero:
		class = ClassZero
		hidden = false
	case expZero && !fracZero:
		class = ClassSubnormal
		hidden = false
	case expOnes && fracZero:
		class = ClassInfinity
		hidden = true
	case expOnes && !fracZero:
		class = ClassNaN
		hidden = true
	default:
		class = ClassNormal
		hidden = true
	}

	significand := bitvec.Concat(boolVec(hidden), fraction)
	return Unpacked{Sign: sign, Exponent: exponent, Significand: significand, Class: class}
}

// Repack assembles sign, biased exponent, and a 23-bit fraction (the hidden
// bit dropped) into a 32-bit vector.
func Repack(sign bool, exponent bitvec.Vector, fraction bitvec.Vector) bitvec.Vector {
	return bitvec.Concat(boolVec(sign), exponent, fraction)
}

func allOnes(v bitvec.Vector) bool {
	for i := 0; i < v.Width(); i++ {
		if !v.Get(i) {
			return false
		}
	}
	return true
}

func boolVec(b bool) bitvec.Vector {
	return bitvec.FromBits([]bool{b})
}

// quietNaN is the canonical quiet NaN bit pattern: sign 0, exponent all
// ones, fraction with its MSB set (quiet bit).
func quietNaN() bitvec.Vector {
	exp := bitvec.Repeat(true, expWidth)
	frac := bitvec.New(fracWidth).With(0, true)
	return Repack(false, exp, frac)
}

func infinity(sign bool) bitvec.Vector {
	exp := bitvec.Repeat(true, expWidth)
	frac := bitvec.New(fracWidth)
	return Repack(sign, exp, frac)
}

func signedZero(sign bool) bitvec.Vector {
	exp := bitvec.New(expWidth)
	frac := bitvec.New(fracWidth)
	return Repack(sign, exp, frac)
}
