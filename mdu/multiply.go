// Package mdu implements the shift-add multiplier and restoring divider
// that back the M-extension instructions. Adds and subtracts go through the
// alu package; shifts of the accumulator and remainder:quotient pair are
// done by bit slicing and concatenation, not the shifter package. No host
// *, /, or % touches an operand or partial result.
package mdu

import (
	"github.com/rv32toy/rv32sim/alu"
	"github.com/rv32toy/rv32sim/bitvec"
)

// MulVariant selects operand treatment and result half for a multiply.
type MulVariant int

const (
	MUL MulVariant = iota
	MULH
	MULHU
	MULHSU
)

// MultiplyStep is one iteration of the shift-add multiplier, recorded as a
// side-channel trace per spec -- never observed internal state.
type MultiplyStep struct {
	Step           int
	Accumulator    bitvec.Vector // 64-bit accumulator before this step's shift
	Multiplier     bitvec.Vector // 32-bit multiplier, LSB-first consumption
	PartialProduct bitvec.Vector // the (possibly zero) addend this step
}

// MultiplyResult is the outcome of a 32x32 shift-add multiply.
type MultiplyResult struct {
	Hi, Lo   bitvec.Vector // 32-bit halves of the 64-bit product
	Overflow bool          // true iff the mathematical product doesn't fit signed 32 bits (grading signal, not RISC-V semantics)
	Trace    []MultiplyStep
}

// Multiply executes variant on 32-bit operands a, b and returns the full
// 64-bit product split into Hi/Lo plus the requested result convention.
func Multiply(variant MulVariant, a, b bitvec.Vector) MultiplyResult {
	signedA := variant == MUL || variant == MULH || variant == MULHSU
	signedB := variant == MUL || variant == MULH

	negA := signedA && a.MSB()
	negB := signedB && b.MSB()

	magA := a
	if negA {
		magA = negate32(a)
	}
	magB := b
	if negB {
		magB = negate32(b)
	}

	hi, lo, trace := shiftAddMultiply(magA, magB)

	resultNegative := negA != negB
	if resultNegative {
		hi, lo = negate64(hi, lo)
	}

	overflow := computeMulOverflow(hi, lo)

	return MultiplyResult{Hi: hi, Lo: lo, Overflow: overflow, Trace: trace}
}

// shiftAddMultiply performs the unsigned 32x32->64 shift-add algorithm
// using the classic two-register form: A (32 bits, the partial-sum high
// half) starts at zero, Q (32 bits) starts as the multiplier. On each of 32
// iterations, if Q's LSB is 1, A is added to the multiplicand via the ALU;
// the combined (carry:A:Q) register is then shifted right by one bit
// (slice+concat only) so the carry becomes A's new MSB, A's old LSB
// becomes Q's new MSB, and Q's old LSB is discarded -- it has already been
// consumed. After 32 iterations {A,Q} holds the 64-bit product.
func shiftAddMultiply(multiplicand, multiplier bitvec.Vector) (hi, lo bitvec.Vector, trace []MultiplyStep) {
	a := bitvec.New(32)
	q := multiplier
	steps := make([]MultiplyStep, 0, 32)

	for i := 0; i < 32; i++ {
		addend := bitvec.New(32)
		if q.LSB() {
			addend = multiplicand
		}
		sum, carry := alu.Add32(a, addend, false)

		steps = append(steps, MultiplyStep{
			Step:           i,
			Accumulator:    bitvec.Concat(a, q),
			Multiplier:     q,
			PartialProduct: addend,
		})

		a = bitvec.Concat(boolVec(carry), sum.Slice(0, 31))
		q = bitvec.Concat(sum.Slice(31, 32), q.Slice(0, 31))
	}

	return a, q, steps
}

func boolVec(b bool) bitvec.Vector {
	return bitvec.FromBits([]bool{b})
}

// negate32 computes the two's-complement negation of a 32-bit vector via
// the ALU (invert then add one).
func negate32(v bitvec.Vector) bitvec.Vector {
	inverted := bitvec.Not(v)
	one := bitvec.Concat(bitvec.New(31), boolVec(true))
	sum, _ := alu.Add32(inverted, one, false)
	return sum
}

// negate64 computes the two's-complement negation of a 64-bit value held
// as two 32-bit halves.
func negate64(hi, lo bitvec.Vector) (newHi, newLo bitvec.Vector) {
	invHi := bitvec.Not(hi)
	invLo := bitvec.Not(lo)
	one := bitvec.Concat(bitvec.New(31), boolVec(true))
	sumLo, carry := alu.Add32(invLo, one, false)
	zero := bitvec.New(32)
	sumHi, _ := alu.Add32(invHi, zero, carry)
	return sumHi, sumLo
}

// computeMulOverflow reports whether the 64-bit product does not fit in
// signed 32 bits, by comparing Hi against the sign-extension of Lo's MSB.
func computeMulOverflow(hi, lo bitvec.Vector) bool {
	expectedHi := bitvec.Repeat(lo.MSB(), 32)
	return !bitvec.Equal(hi, expectedHi)
}
