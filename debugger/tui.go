package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/rv32toy/rv32sim/regfile"
)

// TUI is a text interface over Debugger: register, memory, FCSR, and
// disassembly panes alongside an output log and a command input line,
// grounded on the panel/layout shape of the teacher's own TUI (which
// pairs RegisterView/MemoryView/DisassemblyView/OutputView panes around
// a command line) but adapted to RV32I/F state: x0-x31, f0-f31, FCSR,
// and a short mnemonic window around PC rather than ARM's source/stack
// panes.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	RegisterView     *tview.TextView
	FloatView        *tview.TextView
	MemoryView       *tview.TextView
	DisassemblyView  *tview.TextView
	OutputView       *tview.TextView
	CommandInput     *tview.InputField

	memAddr uint32
}

// NewTUI builds the interface but does not run it.
func NewTUI(d *Debugger) *TUI {
	t := &TUI{Debugger: d, App: tview.NewApplication(), memAddr: d.CPU.PC}
	t.initializeViews()
	t.buildLayout()
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.FloatView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	t.FloatView.SetBorder(true).SetTitle(" Float / FCSR ")

	t.MemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.DisassemblyView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("(rv32sim) ")
	t.CommandInput.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := t.CommandInput.GetText()
		t.CommandInput.SetText("")
		t.trackMemCommand(line)
		if err := t.Debugger.Execute(line); err != nil {
			t.Debugger.println(fmt.Sprintf("error: %v", err))
		}
		t.refresh()
	})
}

// trackMemCommand makes the MemoryView start at the last address the
// user inspected with "mem", since the pane otherwise has no notion of
// where to look.
func (t *TUI) trackMemCommand(line string) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) < 2 {
		return
	}
	switch strings.ToLower(fields[0]) {
	case "mem", "memory", "m":
		if addr, err := parseAddress(fields[1]); err == nil {
			t.memAddr = addr
		}
	}
}

func (t *TUI) buildLayout() {
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 0, 2, false).
		AddItem(t.FloatView, 0, 2, false)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 1, false).
		AddItem(t.MemoryView, 0, 1, false).
		AddItem(t.OutputView, 0, 2, false)

	top := tview.NewFlex().
		AddItem(left, 0, 1, false).
		AddItem(right, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 1, false).
		AddItem(t.CommandInput, 1, 0, true)

	t.App.SetRoot(root, true).SetFocus(t.CommandInput)
}

func (t *TUI) refresh() {
	d := t.Debugger

	t.RegisterView.Clear()
	r := d.CPU.Datapath.Regs.Int
	for i := 0; i < 32; i++ {
		fmt.Fprintf(t.RegisterView, "x%-2d %4s = 0x%08X\n", i, regfile.AliasName(i), toHostUint32(r.Get(i)))
	}

	t.FloatView.Clear()
	f := d.CPU.Datapath.Regs.Float
	for i := 0; i < 32; i++ {
		fmt.Fprintf(t.FloatView, "f%-2d = 0x%08X\n", i, toHostUint32(f.Get(i)))
	}
	fcsr := d.CPU.Datapath.Regs.FCSR
	fmt.Fprintf(t.FloatView, "\nfcsr = 0x%02X (rm=%s flags=%s)\n", toHostUint32(fcsr.Value()), roundingModeName(fcsr.RoundingMode), flagsString(fcsr.Flags))

	t.DisassemblyView.Clear()
	for _, line := range disassembleAround(d, d.CPU.PC, 2, 3) {
		fmt.Fprintln(t.DisassemblyView, line)
	}

	t.MemoryView.Clear()
	addr := t.memAddr
	for i := 0; i < 8; i++ {
		a := addr + uint32(4*i)
		v, err := d.CPU.Datapath.Mem.ReadWord(a)
		if err != nil {
			break
		}
		fmt.Fprintf(t.MemoryView, "0x%08X: 0x%08X\n", a, toHostUint32(v))
	}

	t.OutputView.Clear()
	for _, line := range d.Output {
		fmt.Fprintln(t.OutputView, line)
	}
}

// Run starts the event loop. Not exercised in tests: tview applications
// require a live terminal.
func (t *TUI) Run() error {
	t.refresh()
	return t.App.Run()
}

