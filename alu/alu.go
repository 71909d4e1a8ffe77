// Package alu implements the 32-bit ripple-carry ALU: AND/OR/XOR/NOR and
// ADD/SUB built from one-bit full-adder cells. No host +, -, or comparison
// operator touches a 32-bit data value here; every bit of the result comes
// out of boolean logic.
package alu

import "github.com/rv32toy/rv32sim/bitvec"

// Op selects the ALU operation.
type Op int

const (
	OpAND Op = iota
	OpOR
	OpXOR
	OpNOR
	OpADD
	OpSUB
)

const width = 32

// Result carries the 32-bit output and the four ARM/RISC-V-style condition
// flags.
type Result struct {
	Value bitvec.Vector
	N, Z, C, V bool
}

// fullAdder computes sum = a xor b xor cin and cout = majority(a, b, cin),
// using only boolean primitives.
func fullAdder(a, b, cin bool) (sum, cout bool) {
	sum = (a != b) != cin
	cout = (a && b) || (cin && (a != b))
	return
}

// Add32 ripples a 32-bit addition LSB to MSB through one-bit full-adder
// cells, returning the sum and the final carry-out. It is exported so the
// MDU's wider accumulator chaining can reuse the same adder cells instead
// of re-deriving ripple-carry addition.
func Add32(a, b bitvec.Vector, carryIn bool) (sum bitvec.Vector, carryOut bool) {
	bits := make([]bool, width)
	carry := carryIn
	for i := width - 1; i >= 0; i-- {
		var s bool
		s, carry = fullAdder(a.Get(i), b.Get(i), carry)
		bits[i] = s
	}
	return bitvec.FromBits(bits), carry
}

// signOf reports the MSB (sign bit) of a 32-bit vector.
func signOf(v bitvec.Vector) bool {
	return v.MSB()
}

// Execute performs op on a and b and reports the result plus flags.
func Execute(op Op, a, b bitvec.Vector) Result {
	switch op {
	case OpAND:
		r := bitvec.And(a, b)
		return logicalResult(r)
	case OpOR:
		r := bitvec.Or(a, b)
		return logicalResult(r)
	case OpXOR:
		r := bitvec.Xor(a, b)
		return logicalResult(r)
	case OpNOR:
		r := bitvec.Nor(a, b)
		return logicalResult(r)
	case OpADD:
		sum, carry := Add32(a, b, false)
		overflow := (signOf(a) == signOf(b)) && (signOf(sum) != signOf(a))
		return Result{Value: sum, N: sum.MSB(), Z: sum.IsZero(), C: carry, V: overflow}
	case OpSUB:
		notB := bitvec.Not(b)
		diff, carry := Add32(a, notB, true)
		overflow := (signOf(a) != signOf(b)) && (signOf(diff) != signOf(a))
		return Result{Value: diff, N: diff.MSB(), Z: diff.IsZero(), C: carry, V: overflow}
	default:
		panic("alu: unknown op")
	}
}

func logicalResult(v bitvec.Vector) Result {
	return Result{Value: v, N: v.MSB(), Z: v.IsZero(), C: false, V: false}
}

// Add is a convenience wrapper for OpADD.
func Add(a, b bitvec.Vector) Result { return Execute(OpADD, a, b) }

// Sub is a convenience wrapper for OpSUB.
func Sub(a, b bitvec.Vector) Result { return Execute(OpSUB, a, b) }
