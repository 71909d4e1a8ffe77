package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rv32toy/rv32sim/cpu"
	"github.com/rv32toy/rv32sim/decoder"
	"github.com/rv32toy/rv32sim/fpu"
	"github.com/rv32toy/rv32sim/regfile"
)

// Debugger wraps a cpu.CPU with breakpoints and a text command
// processor, grounded on the teacher's Debugger/commands split but
// narrowed to the commands a non-pipelined RV32I core needs: step,
// continue, run, break, delete, registers, memory, reset, stats.
type Debugger struct {
	CPU         *cpu.CPU
	Breakpoints *BreakpointManager
	Output      []string
}

// New wraps cpu for interactive stepping.
func New(c *cpu.CPU) *Debugger {
	return &Debugger{CPU: c, Breakpoints: NewBreakpointManager()}
}

func (d *Debugger) printf(format string, args ...any) {
	d.Output = append(d.Output, fmt.Sprintf(format, args...))
}

func (d *Debugger) println(s string) {
	d.Output = append(d.Output, s)
}

// Execute parses and runs one debugger command line.
func (d *Debugger) Execute(line string) error {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "step", "s":
		return d.cmdStep(args)
	case "continue", "c":
		return d.cmdContinue()
	case "run":
		return d.cmdRun()
	case "break", "b":
		return d.cmdBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "regs", "registers", "r":
		return d.cmdRegisters()
	case "mem", "memory", "m":
		return d.cmdMemory(args)
	case "reset":
		d.CPU.Reset()
		d.println("CPU reset.")
		return nil
	case "stats":
		d.println(d.CPU.Stats.String())
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (d *Debugger) cmdStep(args []string) error {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("step count %q: %w", args[0], err)
		}
		n = v
	}
	for i := 0; i < n; i++ {
		cause, err := d.CPU.Step()
		if err != nil {
			return err
		}
		if cause != cpu.HaltNone {
			d.printf("halted: %s\n", cause)
			return nil
		}
		if d.Breakpoints.Hit(d.CPU.PC) {
			d.printf("breakpoint hit at 0x%08X\n", d.CPU.PC)
			return nil
		}
	}
	d.printf("PC = 0x%08X\n", d.CPU.PC)
	return nil
}

func (d *Debugger) cmdContinue() error {
	for {
		cause, err := d.CPU.Step()
		if err != nil {
			return err
		}
		if cause != cpu.HaltNone {
			d.printf("halted: %s\n", cause)
			return nil
		}
		if d.Breakpoints.Hit(d.CPU.PC) {
			d.printf("breakpoint hit at 0x%08X\n", d.CPU.PC)
			return nil
		}
	}
}

// cmdRun resets CPU state and then runs to the next halt or breakpoint,
// distinct from continue, which keeps the current register/memory state.
func (d *Debugger) cmdRun() error {
	d.CPU.Reset()
	return d.cmdContinue()
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.Add(addr, false)
	d.printf("breakpoint %d at 0x%08X\n", bp.ID, bp.Address)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: delete <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("breakpoint id %q: %w", args[0], err)
	}
	return d.Breakpoints.Delete(id)
}

func (d *Debugger) cmdRegisters() error {
	r := d.CPU.Datapath.Regs.Int
	for i := 0; i < 32; i++ {
		d.printf("x%-2d (%-4s) = 0x%08X\n", i, regfile.AliasName(i), toHostUint32(r.Get(i)))
	}
	f := d.CPU.Datapath.Regs.Float
	for i := 0; i < 32; i++ {
		d.printf("f%-2d        = 0x%08X\n", i, toHostUint32(f.Get(i)))
	}
	fcsr := d.CPU.Datapath.Regs.FCSR
	d.printf("fcsr       = 0x%02X (rm=%s flags=%s)\n", toHostUint32(fcsr.Value()), roundingModeName(fcsr.RoundingMode), flagsString(fcsr.Flags))
	return nil
}

func (d *Debugger) cmdMemory(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: mem <address> [length]")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	length := 1
	if len(args) > 1 {
		length, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("length %q: %w", args[1], err)
		}
		if length < 1 {
			return fmt.Errorf("length must be >= 1, got %d", length)
		}
	}
	for i := 0; i < length; i++ {
		a := addr + uint32(4*i)
		v, err := d.CPU.Datapath.Mem.ReadWord(a)
		if err != nil {
			return err
		}
		d.printf("0x%08X: 0x%08X\n", a, toHostUint32(v))
	}
	return nil
}

func roundingModeName(m fpu.RoundingMode) string {
	switch m {
	case fpu.RNE:
		return "RNE"
	case fpu.RTZ:
		return "RTZ"
	case fpu.RDN:
		return "RDN"
	case fpu.RUP:
		return "RUP"
	case fpu.RMM:
		return "RMM"
	default:
		return "?"
	}
}

func flagsString(f fpu.Flags) string {
	var sb strings.Builder
	for _, pair := range []struct {
		set  bool
		name string
	}{
		{f.Invalid, "NV"},
		{f.DivideByZero, "DZ"},
		{f.Overflow, "OF"},
		{f.Underflow, "UF"},
		{f.Inexact, "NX"},
	} {
		if pair.set {
			sb.WriteString(pair.name)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// disassembleAround returns a short window of mnemonics around pc for the
// debugger's disassembly display, skipping addresses that can't be read
// and showing words that don't decode as "<invalid>".
func disassembleAround(d *Debugger, pc uint32, before, after int) []string {
	var lines []string
	start := pc - uint32(4*before)
	for i := -before; i <= after; i++ {
		addr := start + uint32(4*(i+before))
		raw, err := d.CPU.Datapath.Mem.ReadWord(addr)
		if err != nil {
			continue
		}
		dec, err := decoder.Decode(raw)
		marker := "  "
		if addr == pc {
			marker = "->"
		}
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s 0x%08X: <invalid>", marker, addr))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s 0x%08X: %s", marker, addr, dec.Mnemonic))
	}
	return lines
}

func parseAddress(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("address %q: %w", s, err)
	}
	return uint32(v), nil
}

func toHostUint32(v interface{ Get(int) bool }) uint32 {
	var out uint32
	for i := 0; i < 32; i++ {
		out <<= 1
		if v.Get(i) {
			out |= 1
		}
	}
	return out
}
