package fpu

import (
	"github.com/rv32toy/rv32sim/alu"
	"github.com/rv32toy/rv32sim/bitvec"
)

// expAdd adds two 8-bit biased exponents via the 32-bit ALU, returning the
// low 8 bits of the sum.
func expAdd(a, b bitvec.Vector) bitvec.Vector {
	sum := alu.Execute(alu.OpADD, bitvec.ZeroExtend(a, 32), bitvec.ZeroExtend(b, 32))
	return sum.Value.Slice(24, 32)
}

// expSubBias returns the exponent bias constant as a 32-bit vector; it does
// no subtraction itself.
func expSubBias() bitvec.Vector {
	return encodeSmallConst(bias, 32)
}

// expCompare returns the absolute difference |a - b| (as an 8-bit vector,
// via the ALU, comparing sign to decide operand order) and reports whether
// a >= b.
func expCompare(a, b bitvec.Vector) (diff bitvec.Vector, aGE bool) {
	wideA := bitvec.ZeroExtend(a, 32)
	wideB := bitvec.ZeroExtend(b, 32)
	res := alu.Execute(alu.OpSUB, wideA, wideB)
	if !res.N {
		// a - b >= 0
		return res.Value.Slice(24, 32), true
	}
	res2 := alu.Execute(alu.OpSUB, wideB, wideA)
	return res2.Value.Slice(24, 32), false
}

// expSub32 computes a - b via the ALU over 8-bit operands, returned widened
// to 32 bits (used for exponent adjustment where negative results, e.g.
// during underflow detection, must be observable).
func expSub32(a, b bitvec.Vector) alu.Result {
	return alu.Execute(alu.OpSUB, bitvec.ZeroExtend(a, 32), bitvec.ZeroExtend(b, 32))
}

func expAdd32(a, b bitvec.Vector) alu.Result {
	return alu.Execute(alu.OpADD, bitvec.ZeroExtend(a, 32), bitvec.ZeroExtend(b, 32))
}

// toSmallInt reads a small nonnegative bitvec (an exponent or exponent
// difference) into a host int for loop-bound/bookkeeping purposes. This is
// never used on data values that feed back into arithmetic results.
func toSmallInt(v bitvec.Vector) int {
	weight := 1
	weights := make([]int, v.Width())
	for i := v.Width() - 1; i >= 0; i-- {
		weights[i] = weight
		weight += weight
	}
	total := 0
	for i := 0; i < v.Width(); i++ {
		if v.Get(i) {
			total += weights[i]
		}
	}
	return total
}

// encodeSmallConst builds a width-bit vector representing the nonnegative
// host int n, via repeated halving comparisons (no *, /, %, <<, >>).
func encodeSmallConst(n int, width int) bitvec.Vector {
	bits := make([]bool, width)
	weight := 1
	weights := make([]int, width)
	for i := width - 1; i >= 0; i-- {
		weights[i] = weight
		weight += weight
	}
	remaining := n
	for i := 0; i < width; i++ {
		if remaining >= weights[i] {
			bits[i] = true
			remaining -= weights[i]
		}
	}
	return bitvec.FromBits(bits)
}
