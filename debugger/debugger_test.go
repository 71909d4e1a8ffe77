package debugger

import (
	"strings"
	"testing"

	"github.com/rv32toy/rv32sim/cpu"
)

func newCPUWithProgram(t *testing.T, hexWords ...string) *cpu.CPU {
	t.Helper()
	c := cpu.New()
	if _, err := c.LoadProgram(strings.NewReader(strings.Join(hexWords, "\n"))); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestBreakpointAddAndHit(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.Add(0x1000, false)
	if bp.ID != 1 {
		t.Fatalf("expected first breakpoint ID 1, got %d", bp.ID)
	}
	if !bm.Hit(0x1000) {
		t.Errorf("expected breakpoint at 0x1000 to hit")
	}
	if bm.Hit(0x2000) {
		t.Errorf("expected no breakpoint at 0x2000")
	}
}

func TestTemporaryBreakpointAutoDeletes(t *testing.T) {
	bm := NewBreakpointManager()
	bm.Add(0x1000, true)
	if !bm.Hit(0x1000) {
		t.Fatal("expected first hit")
	}
	if bm.Hit(0x1000) {
		t.Errorf("temporary breakpoint should be gone after first hit")
	}
}

func TestDeleteBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.Add(0x1000, false)
	if err := bm.Delete(bp.ID); err != nil {
		t.Fatal(err)
	}
	if bm.Hit(0x1000) {
		t.Errorf("deleted breakpoint should not hit")
	}
}

func TestDebuggerStepCommand(t *testing.T) {
	c := newCPUWithProgram(t, "00500093") // addi x1, x0, 5
	d := New(c)
	if err := d.Execute("step"); err != nil {
		t.Fatal(err)
	}
	if c.Stats.TotalInstructions != 1 {
		t.Errorf("expected 1 instruction executed, got %d", c.Stats.TotalInstructions)
	}
}

func TestDebuggerBreakAndContinue(t *testing.T) {
	c := newCPUWithProgram(t,
		"00500093", // addi x1, x0, 5
		"00A00113", // addi x2, x0, 10
		"0000006F", // jal x0, 0 (self loop)
	)
	d := New(c)
	if err := d.Execute("break 0x00000008"); err != nil {
		t.Fatal(err)
	}
	if err := d.Execute("continue"); err != nil {
		t.Fatal(err)
	}
	if c.PC != 0x00000008 {
		t.Errorf("PC = %#x, want breakpoint address 0x8", c.PC)
	}
}

func TestDebuggerRegistersCommand(t *testing.T) {
	c := newCPUWithProgram(t, "00500093")
	d := New(c)
	if err := d.Execute("step"); err != nil {
		t.Fatal(err)
	}
	if err := d.Execute("regs"); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, line := range d.Output {
		if strings.Contains(line, "x1") && strings.Contains(line, "0x00000005") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected register dump to show x1 = 5, got %v", d.Output)
	}
}

func TestDebuggerRegistersCommandShowsFCSR(t *testing.T) {
	c := newCPUWithProgram(t, "00500093")
	d := New(c)
	if err := d.Execute("regs"); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, line := range d.Output {
		if strings.Contains(line, "fcsr") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected register dump to include fcsr, got %v", d.Output)
	}
}

func TestDebuggerRunResetsBeforeExecuting(t *testing.T) {
	c := newCPUWithProgram(t,
		"00500093", // addi x1, x0, 5
		"0000006F", // jal x0, 0 (self loop)
	)
	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	d := New(c)
	if err := d.Execute("run"); err != nil {
		t.Fatal(err)
	}
	if c.PC != 0x00000004 {
		t.Errorf("PC = %#x, want self-loop address 0x4 after run halted", c.PC)
	}
}

func TestDebuggerMemCommandWithLength(t *testing.T) {
	c := newCPUWithProgram(t, "00500093", "00A00113")
	d := New(c)
	if err := d.Execute("mem 0x00000000 2"); err != nil {
		t.Fatal(err)
	}
	if len(d.Output) != 2 {
		t.Fatalf("expected 2 lines of memory dump, got %d: %v", len(d.Output), d.Output)
	}
}
