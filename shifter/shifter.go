// Package shifter implements the 5-stage barrel shifter for SLL, SRL and
// SRA using only bitvec.Slice and bitvec.Concat -- no host << or >> ever
// touches the data being shifted.
package shifter

import "github.com/rv32toy/rv32sim/bitvec"

// Op selects the shift operation.
type Op int

const (
	OpSLL Op = iota
	OpSRL
	OpSRA
)

const width = 32

// Shift performs a barrel shift of data by amount (5-bit RISC-V shift
// amount semantics: the amount is masked to its low 5 bits before use).
func Shift(data bitvec.Vector, amount bitvec.Vector, op Op) bitvec.Vector {
	amt := maskTo5Bits(amount)
	return shiftByStages(data, amt, op)
}

// maskTo5Bits reduces a shift-amount vector of any width >= 5 to its low 5
// bits (RISC-V requires masking shift amounts greater than 31).
func maskTo5Bits(amount bitvec.Vector) [5]bool {
	var bits [5]bool
	w := amount.Width()
	for i := 0; i < 5; i++ {
		bits[i] = amount.Get(w - 5 + i)
	}
	return bits
}

// shiftByStages applies five conditional barrel stages, stage k shifting by
// 2^(4-k) bits (16, 8, 4, 2, 1) when the corresponding amount bit is set.
func shiftByStages(data bitvec.Vector, amt [5]bool, op Op) bitvec.Vector {
	stageShifts := [5]int{16, 8, 4, 2, 1}
	cur := data
	signBit := data.MSB()
	for stage := 0; stage < 5; stage++ {
		if !amt[stage] {
			continue
		}
		cur = applyStage(cur, stageShifts[stage], op, signBit)
	}
	return cur
}

func applyStage(v bitvec.Vector, s int, op Op, signBit bool) bitvec.Vector {
	switch op {
	case OpSLL:
		// Drop leading s bits, append s zero bits at the low end.
		kept := v.Slice(s, width)
		zeros := bitvec.New(s)
		return bitvec.Concat(kept, zeros)
	case OpSRL:
		// Prepend s zero bits, drop trailing s bits.
		kept := v.Slice(0, width-s)
		zeros := bitvec.New(s)
		return bitvec.Concat(zeros, kept)
	case OpSRA:
		// Same as SRL but prepend copies of the sign bit.
		kept := v.Slice(0, width-s)
		fill := bitvec.Repeat(signBit, s)
		return bitvec.Concat(fill, kept)
	default:
		panic("shifter: unknown op")
	}
}
