// Package cpu is the top-level orchestrator: program loading, reset/step/
// run, halt-condition detection and execution statistics, grounded on the
// teacher's vm.VM run loop and vm/statistics.go exporters.
package cpu

import (
	"io"

	"github.com/rv32toy/rv32sim/datapath"
	"github.com/rv32toy/rv32sim/faults"
	"github.com/rv32toy/rv32sim/loader"
	"github.com/rv32toy/rv32sim/memory"
)

const component = "cpu"

// HaltCause explains why Run stopped. The constant order is not the check
// order; see Step and RunUntil for which condition wins when several hold.
type HaltCause int

const (
	HaltNone HaltCause = iota
	HaltInvalidInstruction
	HaltSelfBranch // JAL x0, 0: an infinite self-loop used as an explicit halt idiom
	HaltMaxCycles
	HaltTargetPC
	HaltEcall
	HaltEbreak
)

func (h HaltCause) String() string {
	switch h {
	case HaltInvalidInstruction:
		return "invalid instruction"
	case HaltSelfBranch:
		return "self branch (JAL x0, 0)"
	case HaltMaxCycles:
		return "max cycles reached"
	case HaltTargetPC:
		return "target PC reached"
	case HaltEcall:
		return "ecall"
	case HaltEbreak:
		return "ebreak"
	default:
		return "running"
	}
}

// CPU is the simulator's top-level state: a datapath plus the run-loop
// bookkeeping (PC, cycle count, halt cause, statistics).
type CPU struct {
	Datapath *datapath.Datapath
	PC       uint32

	MaxCycles uint64
	Stats     *Statistics

	HaltedBy HaltCause

	// TraceEnabled, when set, makes Step append every executed Cycle to
	// Trace for later inspection (e.g. a -trace CLI dump).
	TraceEnabled bool
	Trace        []datapath.Cycle
}

// New builds a CPU with fresh memory and a default instruction base.
func New() *CPU {
	return &CPU{
		Datapath:  datapath.New(memory.New()),
		PC:        memory.InstructionSegmentStart,
		MaxCycles: 1_000_000,
		Stats:     NewStatistics(),
	}
}

// LoadProgram reads a hex program image into the instruction segment and
// resets the PC to its base address.
func (c *CPU) LoadProgram(r io.Reader) (int, error) {
	n, err := loader.Load(r, c.Datapath.Mem, memory.InstructionSegmentStart)
	c.PC = memory.InstructionSegmentStart
	return n, err
}

// Reset clears register state and statistics and restarts at the
// instruction base address. Memory, and so the loaded program, is kept.
func (c *CPU) Reset() {
	c.Datapath.Regs.Reset()
	c.PC = memory.InstructionSegmentStart
	c.HaltedBy = HaltNone
	c.Stats = NewStatistics()
}

// Step executes exactly one instruction, updating PC and statistics.
func (c *CPU) Step() (HaltCause, error) {
	cyc, err := c.Datapath.Step(c.PC)
	if err != nil {
		if faults.IsKind(err, faults.KindUnsupported) {
			c.HaltedBy = HaltInvalidInstruction
			return c.HaltedBy, nil
		}
		return HaltNone, err
	}

	c.Stats.RecordCycle(cyc)
	if c.TraceEnabled {
		c.Trace = append(c.Trace, cyc)
	}

	if cyc.Decoded.Mnemonic.String() == "JAL" && cyc.Decoded.Rd == 0 && cyc.NextPC == cyc.PC {
		c.PC = cyc.NextPC
		c.HaltedBy = HaltSelfBranch
		return c.HaltedBy, nil
	}
	if cyc.Ecall {
		c.PC = cyc.NextPC
		c.HaltedBy = HaltEcall
		return c.HaltedBy, nil
	}
	if cyc.Ebreak {
		c.PC = cyc.NextPC
		c.HaltedBy = HaltEbreak
		return c.HaltedBy, nil
	}

	c.PC = cyc.NextPC
	if c.Stats.TotalInstructions >= c.MaxCycles {
		c.HaltedBy = HaltMaxCycles
		return c.HaltedBy, nil
	}
	return HaltNone, nil
}

// Run executes instructions until a halt condition is reached. Step checks
// an invalid instruction first, then the self-branch, ecall, ebreak and
// finally the max-cycles limit; RunUntil tests the target PC before each
// Step, so a PC equal to the target halts before that instruction runs.
func (c *CPU) Run() (HaltCause, error) {
	return c.RunUntil(0, false)
}

// RunUntilPC executes until the PC reaches target or any other halt
// condition fires first.
func (c *CPU) RunUntilPC(target uint32) (HaltCause, error) {
	return c.RunUntil(target, true)
}

func (c *CPU) RunUntil(target uint32, checkTarget bool) (HaltCause, error) {
	for {
		if checkTarget && c.PC == target {
			c.HaltedBy = HaltTargetPC
			return c.HaltedBy, nil
		}
		cause, err := c.Step()
		if err != nil {
			return HaltNone, err
		}
		if cause != HaltNone {
			return cause, nil
		}
	}
}
