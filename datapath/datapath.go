// Package datapath orchestrates one fetch/decode/operand-prepare/execute/
// memory/writeback/PC-update cycle, grounded on the teacher's
// vm/executor.go dispatch loop but generalized from ARM2's condition-code
// data-processing instructions to RV32I/M/F.
package datapath

import (
	"github.com/rv32toy/rv32sim/alu"
	"github.com/rv32toy/rv32sim/bitvec"
	"github.com/rv32toy/rv32sim/decoder"
	"github.com/rv32toy/rv32sim/faults"
	"github.com/rv32toy/rv32sim/fpu"
	"github.com/rv32toy/rv32sim/mdu"
	"github.com/rv32toy/rv32sim/memory"
	"github.com/rv32toy/rv32sim/regfile"
	"github.com/rv32toy/rv32sim/shifter"
)

const component = "datapath"

// Cycle records one executed instruction for tracing and statistics.
type Cycle struct {
	PC         uint32
	NextPC     uint32
	Instr      bitvec.Vector
	Decoded    decoder.Decoded
	BranchTaken bool
	MemRead     bool
	MemWrite    bool
	Ecall       bool
	Ebreak      bool
}

// Datapath bundles the register banks and memory a Step operates on.
type Datapath struct {
	Regs *regfile.Banks
	Mem  *memory.Memory
}

// New builds a datapath over fresh register banks and the given memory.
func New(mem *memory.Memory) *Datapath {
	return &Datapath{Regs: regfile.NewBanks(), Mem: mem}
}

// Step executes exactly one instruction at pc and returns its Cycle record,
// whose NextPC holds the address of the next instruction (pc+4, or the
// branch/jump target).
func (d *Datapath) Step(pc uint32) (Cycle, error) {
	raw, err := d.Mem.ReadWord(pc)
	if err != nil {
		return Cycle{}, faults.Wrap(component, faults.KindOutOfRange, err, "instruction fetch at 0x%08X", pc)
	}
	dec, err := decoder.Decode(raw)
	if err != nil {
		return Cycle{}, err
	}

	cyc := Cycle{PC: pc, NextPC: toAddress(pcPlus4(pc)), Instr: raw, Decoded: dec}

	if dec.Mnemonic == decoder.Unknown {
		return cyc, faults.New(component, faults.KindUnsupported, "instruction 0x%s at 0x%08X does not decode", bitvec.FormatHex(raw), pc)
	}

	if err := d.execute(pc, dec, &cyc); err != nil {
		return cyc, err
	}
	return cyc, nil
}

func toAddress(v bitvec.Vector) uint32 {
	weights := [32]uint32{}
	w := uint32(1)
	for i := 31; i >= 0; i-- {
		weights[i] = w
		w += w
	}
	var total uint32
	for i := 0; i < 32; i++ {
		if v.Get(i) {
			total += weights[i]
		}
	}
	return total
}

func fromAddress(a uint32) bitvec.Vector {
	bits := make([]bool, 32)
	weights := [32]uint32{}
	w := uint32(1)
	for i := 31; i >= 0; i-- {
		weights[i] = w
		w += w
	}
	remaining := a
	for i := 0; i < 32; i++ {
		if remaining >= weights[i] {
			bits[i] = true
			remaining -= weights[i]
		}
	}
	return bitvec.FromBits(bits)
}

// pcPlus4 computes the link/next-instruction address through the ALU
// rather than host addition, matching every other address computation
// in this datapath.
func pcPlus4(pc uint32) bitvec.Vector {
	return alu.Execute(alu.OpADD, fromAddress(pc), fromAddress(4)).Value
}

func (d *Datapath) execute(pc uint32, dec decoder.Decoded, cyc *Cycle) error {
	m := dec.Mnemonic
	r := d.Regs.Int

	switch m {
	case decoder.LUI:
		r.Set(dec.Rd, dec.Imm)
		return nil
	case decoder.AUIPC:
		res := alu.Execute(alu.OpADD, fromAddress(pc), dec.Imm)
		r.Set(dec.Rd, res.Value)
		return nil

	case decoder.JAL:
		r.Set(dec.Rd, pcPlus4(pc))
		target := alu.Execute(alu.OpADD, fromAddress(pc), dec.Imm).Value
		cyc.NextPC = toAddress(target)
		cyc.BranchTaken = true
		return nil
	case decoder.JALR:
		target := alu.Execute(alu.OpADD, r.Get(dec.Rs1), dec.Imm).Value
		target = bitvec.Concat(target.Slice(0, 31), bitvec.New(1))
		r.Set(dec.Rd, pcPlus4(pc))
		cyc.NextPC = toAddress(target)
		cyc.BranchTaken = true
		return nil

	case decoder.BEQ, decoder.BNE, decoder.BLT, decoder.BGE, decoder.BLTU, decoder.BGEU:
		return d.executeBranch(pc, dec, cyc)

	case decoder.LB, decoder.LH, decoder.LW, decoder.LBU, decoder.LHU:
		return d.executeLoad(dec, cyc)
	case decoder.SB, decoder.SH, decoder.SW:
		return d.executeStore(dec, cyc)

	case decoder.ADDI, decoder.SLTI, decoder.SLTIU, decoder.XORI, decoder.ORI, decoder.ANDI,
		decoder.SLLI, decoder.SRLI, decoder.SRAI:
		return d.executeOpImm(dec)

	case decoder.ADD, decoder.SUB, decoder.SLL, decoder.SLT, decoder.SLTU, decoder.XOR,
		decoder.SRL, decoder.SRA, decoder.OR, decoder.AND:
		return d.executeOp(dec)

	case decoder.MUL, decoder.MULH, decoder.MULHSU, decoder.MULHU:
		return d.executeMul(dec)
	case decoder.DIV, decoder.DIVU, decoder.REM, decoder.REMU:
		return d.executeDiv(dec)

	case decoder.FLW:
		addr := alu.Execute(alu.OpADD, r.Get(dec.Rs1), dec.Imm).Value
		v, err := d.Mem.ReadWord(toAddress(addr))
		if err != nil {
			return err
		}
		cyc.MemRead = true
		d.Regs.Float.Set(dec.Rd, v)
		return nil
	case decoder.FSW:
		addr := alu.Execute(alu.OpADD, r.Get(dec.Rs1), dec.Imm).Value
		cyc.MemWrite = true
		return d.Mem.WriteWord(toAddress(addr), d.Regs.Float.Get(dec.Rs2))

	case decoder.FADD_S, decoder.FSUB_S, decoder.FMUL_S:
		return d.executeFP(dec)

	case decoder.FENCE:
		return nil
	case decoder.ECALL:
		cyc.Ecall = true
		return nil
	case decoder.EBREAK:
		cyc.Ebreak = true
		return nil
	}
	return faults.New(component, faults.KindUnsupported, "mnemonic %s has no execute handler", m)
}

func (d *Datapath) executeBranch(pc uint32, dec decoder.Decoded, cyc *Cycle) error {
	r := d.Regs.Int
	a, b := r.Get(dec.Rs1), r.Get(dec.Rs2)
	cmp := alu.Execute(alu.OpSUB, a, b)

	var taken bool
	switch dec.Mnemonic {
	case decoder.BEQ:
		taken = bitvec.Equal(a, b)
	case decoder.BNE:
		taken = !bitvec.Equal(a, b)
	case decoder.BLT:
		taken = cmp.N != cmp.V
	case decoder.BGE:
		taken = cmp.N == cmp.V
	case decoder.BLTU:
		taken = !cmp.C
	case decoder.BGEU:
		taken = cmp.C
	}

	if taken {
		target := alu.Execute(alu.OpADD, fromAddress(pc), dec.Imm).Value
		cyc.NextPC = toAddress(target)
		cyc.BranchTaken = true
	}
	return nil
}

func (d *Datapath) executeLoad(dec decoder.Decoded, cyc *Cycle) error {
	r := d.Regs.Int
	addr := alu.Execute(alu.OpADD, r.Get(dec.Rs1), dec.Imm).Value
	address := toAddress(addr)
	cyc.MemRead = true

	switch dec.Mnemonic {
	case decoder.LW:
		v, err := d.Mem.ReadWord(address)
		if err != nil {
			return err
		}
		r.Set(dec.Rd, v)
	case decoder.LH:
		v, err := d.Mem.ReadHalf(address)
		if err != nil {
			return err
		}
		r.Set(dec.Rd, bitvec.SignExtend(v, 32))
	case decoder.LHU:
		v, err := d.Mem.ReadHalf(address)
		if err != nil {
			return err
		}
		r.Set(dec.Rd, bitvec.ZeroExtend(v, 32))
	case decoder.LB:
		b, err := d.Mem.ReadByte(address)
		if err != nil {
			return err
		}
		r.Set(dec.Rd, bitvec.SignExtend(byteVector(b), 32))
	case decoder.LBU:
		b, err := d.Mem.ReadByte(address)
		if err != nil {
			return err
		}
		r.Set(dec.Rd, bitvec.ZeroExtend(byteVector(b), 32))
	}
	return nil
}

func (d *Datapath) executeStore(dec decoder.Decoded, cyc *Cycle) error {
	r := d.Regs.Int
	addr := alu.Execute(alu.OpADD, r.Get(dec.Rs1), dec.Imm).Value
	address := toAddress(addr)
	value := r.Get(dec.Rs2)
	cyc.MemWrite = true

	switch dec.Mnemonic {
	case decoder.SW:
		return d.Mem.WriteWord(address, value)
	case decoder.SH:
		return d.Mem.WriteHalf(address, value.Slice(16, 32))
	case decoder.SB:
		return d.Mem.WriteByte(address, byteFromVector(value.Slice(24, 32)))
	}
	return nil
}

func byteVector(b byte) bitvec.Vector {
	weights := [8]int{128, 64, 32, 16, 8, 4, 2, 1}
	remaining := int(b)
	bits := make([]bool, 8)
	for i, w := range weights {
		if remaining >= w {
			bits[i] = true
			remaining -= w
		}
	}
	return bitvec.FromBits(bits)
}

func byteFromVector(v bitvec.Vector) byte {
	weights := [8]int{128, 64, 32, 16, 8, 4, 2, 1}
	total := 0
	for i := 0; i < 8; i++ {
		if v.Get(i) {
			total += weights[i]
		}
	}
	return byte(total)
}

func (d *Datapath) executeOpImm(dec decoder.Decoded) error {
	r := d.Regs.Int
	a, imm := r.Get(dec.Rs1), dec.Imm

	switch dec.Mnemonic {
	case decoder.ADDI:
		r.Set(dec.Rd, alu.Execute(alu.OpADD, a, imm).Value)
	case decoder.SLTI:
		res := alu.Execute(alu.OpSUB, a, imm)
		r.Set(dec.Rd, boolToWord(res.N != res.V))
	case decoder.SLTIU:
		res := alu.Execute(alu.OpSUB, a, imm)
		r.Set(dec.Rd, boolToWord(!res.C))
	case decoder.XORI:
		r.Set(dec.Rd, alu.Execute(alu.OpXOR, a, imm).Value)
	case decoder.ORI:
		r.Set(dec.Rd, alu.Execute(alu.OpOR, a, imm).Value)
	case decoder.ANDI:
		r.Set(dec.Rd, alu.Execute(alu.OpAND, a, imm).Value)
	case decoder.SLLI:
		r.Set(dec.Rd, shifter.Shift(a, shamt(dec), shifter.OpSLL))
	case decoder.SRLI:
		r.Set(dec.Rd, shifter.Shift(a, shamt(dec), shifter.OpSRL))
	case decoder.SRAI:
		r.Set(dec.Rd, shifter.Shift(a, shamt(dec), shifter.OpSRA))
	}
	return nil
}

// shamt extracts the 5-bit shift amount embedded in an I-type immediate's
// low bits (the encoding RISC-V uses for SLLI/SRLI/SRAI).
func shamt(dec decoder.Decoded) bitvec.Vector {
	return bitvec.ZeroExtend(dec.Imm.Slice(27, 32), 32)
}

func boolToWord(b bool) bitvec.Vector {
	if b {
		return bitvec.New(32).With(31, true)
	}
	return bitvec.New(32)
}

func (d *Datapath) executeOp(dec decoder.Decoded) error {
	r := d.Regs.Int
	a, b := r.Get(dec.Rs1), r.Get(dec.Rs2)

	switch dec.Mnemonic {
	case decoder.ADD:
		r.Set(dec.Rd, alu.Execute(alu.OpADD, a, b).Value)
	case decoder.SUB:
		r.Set(dec.Rd, alu.Execute(alu.OpSUB, a, b).Value)
	case decoder.SLL:
		r.Set(dec.Rd, shifter.Shift(a, b, shifter.OpSLL))
	case decoder.SLT:
		res := alu.Execute(alu.OpSUB, a, b)
		r.Set(dec.Rd, boolToWord(res.N != res.V))
	case decoder.SLTU:
		res := alu.Execute(alu.OpSUB, a, b)
		r.Set(dec.Rd, boolToWord(!res.C))
	case decoder.XOR:
		r.Set(dec.Rd, alu.Execute(alu.OpXOR, a, b).Value)
	case decoder.SRL:
		r.Set(dec.Rd, shifter.Shift(a, b, shifter.OpSRL))
	case decoder.SRA:
		r.Set(dec.Rd, shifter.Shift(a, b, shifter.OpSRA))
	case decoder.OR:
		r.Set(dec.Rd, alu.Execute(alu.OpOR, a, b).Value)
	case decoder.AND:
		r.Set(dec.Rd, alu.Execute(alu.OpAND, a, b).Value)
	}
	return nil
}

func (d *Datapath) executeMul(dec decoder.Decoded) error {
	r := d.Regs.Int
	a, b := r.Get(dec.Rs1), r.Get(dec.Rs2)

	var variant mdu.MulVariant
	switch dec.Mnemonic {
	case decoder.MUL:
		variant = mdu.MUL
	case decoder.MULH:
		variant = mdu.MULH
	case decoder.MULHSU:
		variant = mdu.MULHSU
	case decoder.MULHU:
		variant = mdu.MULHU
	}
	res := mdu.Multiply(variant, a, b)
	if dec.Mnemonic == decoder.MUL {
		r.Set(dec.Rd, res.Lo)
	} else {
		r.Set(dec.Rd, res.Hi)
	}
	return nil
}

func (d *Datapath) executeDiv(dec decoder.Decoded) error {
	r := d.Regs.Int
	a, b := r.Get(dec.Rs1), r.Get(dec.Rs2)

	var variant mdu.DivVariant
	switch dec.Mnemonic {
	case decoder.DIV:
		variant = mdu.DIV
	case decoder.DIVU:
		variant = mdu.DIVU
	case decoder.REM:
		variant = mdu.REM
	case decoder.REMU:
		variant = mdu.REMU
	}
	res := mdu.Divide(variant, a, b)
	if dec.Mnemonic == decoder.DIV || dec.Mnemonic == decoder.DIVU {
		r.Set(dec.Rd, res.Quotient)
	} else {
		r.Set(dec.Rd, res.Remainder)
	}
	return nil
}

func (d *Datapath) executeFP(dec decoder.Decoded) error {
	f := d.Regs.Float
	a, b := f.Get(dec.Rs1), f.Get(dec.Rs2)

	var res fpu.Result
	switch dec.Mnemonic {
	case decoder.FADD_S:
		res = fpu.Add(a, b, d.Regs.FCSR.RoundingMode)
	case decoder.FSUB_S:
		res = fpu.Sub(a, b, d.Regs.FCSR.RoundingMode)
	case decoder.FMUL_S:
		res = fpu.Mul(a, b, d.Regs.FCSR.RoundingMode)
	}
	f.Set(dec.Rd, res.Value)
	d.Regs.FCSR.AccumulateFlags(res.Flags)
	return nil
}
