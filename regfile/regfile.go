// Package regfile implements the integer and floating-point register
// banks plus FCSR, grounded on the teacher's vm/cpu.go register/alias
// layout but widened from 15+CPSR to 32+32+FCSR for RV32I/F.
package regfile

import (
	"github.com/rv32toy/rv32sim/bitvec"
	"github.com/rv32toy/rv32sim/faults"
	"github.com/rv32toy/rv32sim/fpu"
)

const component = "regfile"

// ABI register aliases for the integer bank, for human-readable dumps.
var aliasNames = [32]string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

// AliasName returns the ABI name of integer register n (x0..x31).
func AliasName(n int) string {
	if n < 0 || n > 31 {
		return "?"
	}
	return aliasNames[n]
}

// IntBank is the 32 general-purpose integer registers. x0 is hardwired
// to zero: Set(0, ...) is accepted (matching real hardware, where writes
// to x0 are legal but discarded) and Get(0) always returns zero.
type IntBank struct {
	regs [32]bitvec.Vector
}

// NewIntBank returns a zeroed integer register file.
func NewIntBank() *IntBank {
	b := &IntBank{}
	for i := range b.regs {
		b.regs[i] = bitvec.New(32)
	}
	return b
}

func (b *IntBank) Get(n int) bitvec.Vector {
	if n < 0 || n > 31 {
		panic(faults.New(component, faults.KindOutOfRange, "integer register index %d out of range", n))
	}
	if n == 0 {
		return bitvec.New(32)
	}
	return b.regs[n]
}

func (b *IntBank) Set(n int, v bitvec.Vector) {
	if n < 0 || n > 31 {
		panic(faults.New(component, faults.KindOutOfRange, "integer register index %d out of range", n))
	}
	if v.Width() != 32 {
		panic(faults.New(component, faults.KindWidthMismatch, "register write requires 32 bits, got %d", v.Width()))
	}
	if n == 0 {
		return
	}
	b.regs[n] = v
}

// FloatBank is the 32 single-precision floating-point registers. Unlike
// the integer bank, f0 is an ordinary register (no tied zero).
type FloatBank struct {
	regs [32]bitvec.Vector
}

func NewFloatBank() *FloatBank {
	b := &FloatBank{}
	for i := range b.regs {
		b.regs[i] = bitvec.New(32)
	}
	return b
}

func (b *FloatBank) Get(n int) bitvec.Vector {
	if n < 0 || n > 31 {
		panic(faults.New(component, faults.KindOutOfRange, "float register index %d out of range", n))
	}
	return b.regs[n]
}

func (b *FloatBank) Set(n int, v bitvec.Vector) {
	if n < 0 || n > 31 {
		panic(faults.New(component, faults.KindOutOfRange, "float register index %d out of range", n))
	}
	if v.Width() != 32 {
		panic(faults.New(component, faults.KindWidthMismatch, "register write requires 32 bits, got %d", v.Width()))
	}
	b.regs[n] = v
}

// FCSR holds the floating-point control and status register: a 3-bit
// rounding mode field and 5 sticky exception flags (NV, DZ, OF, UF, NX).
type FCSR struct {
	RoundingMode fpu.RoundingMode
	Flags        fpu.Flags
}

// AccumulateFlags OR-accumulates newly raised exceptions into FCSR's
// sticky flags, matching RISC-V's "flags are only ever set, never
// cleared by arithmetic" rule.
func (f *FCSR) AccumulateFlags(newFlags fpu.Flags) {
	f.Flags = f.Flags.Or(newFlags)
}

// Value packs FCSR into its 8-bit hardware layout: bits[0:3] rounding
// mode, bits[3:8] NV,DZ,OF,UF,NX.
func (f *FCSR) Value() bitvec.Vector {
	bits := make([]bool, 8)
	switch f.RoundingMode {
	case fpu.RTZ:
		bits[2] = true
	case fpu.RDN:
		bits[1] = true
	case fpu.RUP:
		bits[1], bits[2] = true, true
	case fpu.RMM:
		bits[0] = true
	}
	bits[3] = f.Flags.Invalid
	bits[4] = f.Flags.DivideByZero
	bits[5] = f.Flags.Overflow
	bits[6] = f.Flags.Underflow
	bits[7] = f.Flags.Inexact
	return bitvec.FromBits(bits)
}

// Banks groups the integer and float register banks with the FCSR.
type Banks struct {
	Int   *IntBank
	Float *FloatBank
	FCSR  FCSR
}

func NewBanks() *Banks {
	return &Banks{Int: NewIntBank(), Float: NewFloatBank()}
}

// Reset clears both register banks and FCSR.
func (b *Banks) Reset() {
	b.Int = NewIntBank()
	b.Float = NewFloatBank()
	b.FCSR = FCSR{}
}
