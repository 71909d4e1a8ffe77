// Command rv32sim loads an RV32I/M/F hex program image and either runs
// it to completion or drops into an interactive debugger, grounded on
// the teacher's own flag-based main.go.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rv32toy/rv32sim/config"
	"github.com/rv32toy/rv32sim/cpu"
	"github.com/rv32toy/rv32sim/debugger"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		programFlag = flag.String("program", "", "path to the hex program image (positional argument also accepted)")
		maxCycles   = flag.Uint64("max-cycles", 1_000_000, "maximum CPU cycles before a forced halt")
		entry       = flag.String("entry", "", "entry point address, hex or decimal (default: instruction segment base)")
		debugMode   = flag.Bool("debug", false, "launch the interactive debugger instead of free-running")
		enableStats = flag.Bool("stats", false, "print a statistics summary after the run")
		statsFormat = flag.String("stats-format", "text", "statistics format: text, json, csv, or html")
		statsFile   = flag.String("stats-file", "", "write statistics to this file instead of stdout")
		configPath  = flag.String("config", "", "path to a config.toml (default: platform config directory)")
		traceFlag   = flag.Bool("trace", false, "dump the full per-instruction cycle trace as JSON")
		traceFile   = flag.String("trace-file", "trace.json", "trace output file (used with -trace)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("rv32sim %s (%s)\n", Version, Commit)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	programPath := *programFlag
	if programPath == "" && flag.NArg() > 0 {
		programPath = flag.Arg(0)
	}
	if programPath == "" {
		fmt.Fprintln(os.Stderr, "usage: rv32sim [flags] <program.hex>")
		os.Exit(2)
	}

	c := cpu.New()
	if *maxCycles > 0 {
		c.MaxCycles = *maxCycles
	} else {
		c.MaxCycles = uint64(cfg.Execution.MaxCycles)
	}

	f, err := os.Open(programPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer f.Close()

	if _, err := c.LoadProgram(f); err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		os.Exit(1)
	}

	if *entry != "" {
		addr, err := parseEntry(*entry)
		if err != nil {
			fmt.Fprintln(os.Stderr, "entry:", err)
			os.Exit(1)
		}
		c.PC = addr
	}

	c.TraceEnabled = *traceFlag

	if *debugMode {
		runDebugger(c)
		return
	}

	cause, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "run:", err)
		os.Exit(1)
	}
	fmt.Printf("halted: %s at PC=0x%08X\n", cause, c.PC)

	if *traceFlag {
		if err := writeTrace(c, *traceFile); err != nil {
			fmt.Fprintln(os.Stderr, "trace:", err)
			os.Exit(1)
		}
	}

	if *enableStats {
		if err := exportStats(c, *statsFormat, *statsFile); err != nil {
			fmt.Fprintln(os.Stderr, "stats:", err)
			os.Exit(1)
		}
	}
}

func writeTrace(c *cpu.CPU, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c.Trace)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func parseEntry(s string) (uint32, error) {
	s = strings.ToLower(s)
	hasHexPrefix := strings.HasPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0x")
	base := 16
	if !hasHexPrefix && !strings.ContainsAny(s, "abcdef") && len(s) > 0 && s[0] != '0' {
		base = 0
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func runDebugger(c *cpu.CPU) {
	d := debugger.New(c)
	tui := debugger.NewTUI(d)
	if err := tui.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "debugger:", err)
		os.Exit(1)
	}
}

func exportStats(c *cpu.CPU, format, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		return c.Stats.ExportJSON(out)
	case "csv":
		return c.Stats.ExportCSV(out)
	case "html":
		return c.Stats.ExportHTML(out)
	default:
		_, err := fmt.Fprint(out, c.Stats.String())
		return err
	}
}
