// Package fpu implements the IEEE-754 single-precision pack/unpack and the
// add/subtract/multiply align-op-normalize-round-repack pipeline. Within
// arithmetic, no host float32/float64 operator is used -- operands and
// intermediate values are bitvec.Vectors and the exponent/significand math
// is synthesized from the alu and mdu packages, with significand shifts done
// by bit slicing and concatenation rather than the shifter package. The only place a
// host float touches this package is Pack/Unpack's memory-punning boundary
// (an I/O conversion, not arithmetic).
package fpu

import "github.com/rv32toy/rv32sim/bitvec"

// Class is the IEEE-754 classification of an unpacked operand.
type Class int

const (
	ClassZero Class = iota
	ClassSubnormal
	ClassNormal
	ClassInfinity
	ClassNaN
)

// RoundingMode mirrors FCSR's 3-bit rounding-mode field.
type RoundingMode int

const (
	RNE RoundingMode = iota // round to nearest, ties to even (required)
	RTZ                     // round toward zero (optional extension)
	RDN                     // round toward -infinity (optional extension)
	RUP                     // round toward +infinity (optional extension)
	RMM                     // round to nearest, ties to max magnitude (optional extension)
)

// Flags are the IEEE-754 exception flags this pipeline can raise. The
// caller OR-accumulates them into FCSR; this package never clears them.
type Flags struct {
	Invalid     bool
	DivideByZero bool
	Overflow    bool
	Underflow   bool
	Inexact     bool
}

// Or combines two flag sets by bitwise OR, matching FCSR's sticky
// accumulation semantics.
func (f Flags) Or(other Flags) Flags {
	return Flags{
		Invalid:      f.Invalid || other.Invalid,
		DivideByZero: f.DivideByZero || other.DivideByZero,
		Overflow:     f.Overflow || other.Overflow,
		Underflow:    f.Underflow || other.Underflow,
		Inexact:      f.Inexact || other.Inexact,
	}
}

// Result is the outcome of an arithmetic pipeline stage: the packed 32-bit
// result plus any exception flags raised producing it.
type Result struct {
	Value bitvec.Vector
	Flags Flags
}

// Unpacked is an operand broken into sign, biased exponent, significand
// (with the hidden bit made explicit for normals, 0 for subnormals/zero)
// and classification.
type Unpacked struct {
	Sign        bool
	Exponent    bitvec.Vector // 8 bits, as stored (biased)
	Significand bitvec.Vector // 24 bits: hidden bit ++ 23-bit fraction
	Class       Class
}

const (
	expWidth  = 8
	fracWidth = 23
	sigWidth  = fracWidth + 1
	bias      = 127
)
