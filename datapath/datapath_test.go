package datapath

import (
	"testing"

	"github.com/rv32toy/rv32sim/bitvec"
	"github.com/rv32toy/rv32sim/memory"
)

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) bitvec.Vector {
	raw := uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
	out := make([]bool, 32)
	for i := 0; i < 32; i++ {
		out[i] = (raw>>(31-i))&1 == 1
	}
	return bitvec.FromBits(out)
}

func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) bitvec.Vector {
	raw := funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
	out := make([]bool, 32)
	for i := 0; i < 32; i++ {
		out[i] = (raw>>(31-i))&1 == 1
	}
	return bitvec.FromBits(out)
}

func newDP(t *testing.T, instr bitvec.Vector) *Datapath {
	t.Helper()
	mem := memory.New()
	if err := mem.LoadWord(memory.InstructionSegmentStart, instr); err != nil {
		t.Fatal(err)
	}
	return New(mem)
}

func TestAddiWritesRegister(t *testing.T) {
	dp := newDP(t, encodeI(0b0010011, 1, 0b000, 0, 5)) // addi x1, x0, 5
	cyc, err := dp.Step(memory.InstructionSegmentStart)
	if err != nil {
		t.Fatal(err)
	}
	if toAddress(dp.Regs.Int.Get(1)) != 5 {
		t.Errorf("x1 = %d, want 5", toAddress(dp.Regs.Int.Get(1)))
	}
	if cyc.NextPC != memory.InstructionSegmentStart+4 {
		t.Errorf("unexpected next PC %#x", cyc.NextPC)
	}
}

func TestAddThenSub(t *testing.T) {
	mem := memory.New()
	_ = mem.LoadWord(memory.InstructionSegmentStart, encodeI(0b0010011, 1, 0b000, 0, 10))
	_ = mem.LoadWord(memory.InstructionSegmentStart+4, encodeI(0b0010011, 2, 0b000, 0, 3))
	_ = mem.LoadWord(memory.InstructionSegmentStart+8, encodeR(0b0110011, 3, 0b000, 1, 2, 0b0100000))
	dp := New(mem)

	pc := uint32(memory.InstructionSegmentStart)
	for i := 0; i < 3; i++ {
		cyc, err := dp.Step(pc)
		if err != nil {
			t.Fatal(err)
		}
		pc = cyc.NextPC
	}
	if toAddress(dp.Regs.Int.Get(3)) != 7 {
		t.Errorf("x3 = %d, want 7", toAddress(dp.Regs.Int.Get(3)))
	}
}

func TestX0WriteIsDiscarded(t *testing.T) {
	dp := newDP(t, encodeI(0b0010011, 0, 0b000, 0, 5)) // addi x0, x0, 5
	if _, err := dp.Step(memory.InstructionSegmentStart); err != nil {
		t.Fatal(err)
	}
	if !dp.Regs.Int.Get(0).IsZero() {
		t.Errorf("x0 should remain zero")
	}
}

func TestUnknownInstructionErrors(t *testing.T) {
	dp := newDP(t, bitvec.FromBits(func() []bool {
		b := make([]bool, 32)
		for i := range b {
			b[i] = true
		}
		return b
	}()))
	if _, err := dp.Step(memory.InstructionSegmentStart); err == nil {
		t.Errorf("expected unknown instruction to error")
	}
}
