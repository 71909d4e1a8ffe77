package fpu

import (
	"github.com/rv32toy/rv32sim/alu"
	"github.com/rv32toy/rv32sim/bitvec"
)

// roundNearestEven applies round-to-nearest-even to a sigWidth-bit
// significand given its guard, round and sticky bits. It returns the
// rounded significand and whether rounding overflowed into an implicit
// 25th bit (the caller must then shift right by one and bump the exponent).
func roundNearestEven(sig bitvec.Vector, guard, round, sticky bool) (rounded bitvec.Vector, carryOut, inexact bool) {
	inexact = guard || round || sticky
	if !guard {
		return sig, false, inexact
	}
	// Exactly halfway (round and sticky both clear) rounds to even: only
	// bump when the LSB is currently 1.
	if !round && !sticky {
		if !sig.LSB() {
			return sig, false, inexact
		}
	}
	// The ALU works on 32-bit operands: add in 32 bits and take the carry
	// out of the significand from the bit just above it.
	w := sig.Width()
	res := alu.Execute(alu.OpADD, bitvec.ZeroExtend(sig, 32), bitvec.New(32).With(31, true))
	return res.Value.Slice(32-w, 32), res.Value.Get(31 - w), inexact
}

// negateSig computes the two's-complement negation of a bit vector via the
// ALU's NOR/ADD primitives (invert then add one), used when an effective
// subtraction discovers the minuend was smaller than the subtrahend.
func negateSig(v bitvec.Vector) bitvec.Vector {
	inverted := bitvec.Not(v)
	one := bitvec.New(v.Width()).With(v.Width()-1, true)
	res := alu.Execute(alu.OpADD, inverted, one)
	return res.Value
}
