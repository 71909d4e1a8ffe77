package cpu

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rv32toy/rv32sim/datapath"
)

// InstructionStat tracks how often one mnemonic was executed.
type InstructionStat struct {
	Mnemonic string
	Count    uint64
}

// Statistics tracks execution statistics for one run, grounded on the
// teacher's PerformanceStatistics, rebased onto a single-cycle-per-
// instruction datapath (no pipeline stalls to amortize across).
type Statistics struct {
	Enabled bool

	TotalInstructions uint64
	TotalCycles       uint64
	ExecutionTime     time.Duration
	InstructionsPerSec float64
	CPI                float64

	InstructionCounts map[string]uint64

	BranchCount       uint64
	BranchTakenCount  uint64
	BranchMissedCount uint64

	MemoryReads  uint64
	MemoryWrites uint64

	HotPath map[uint32]uint64

	startTime time.Time
}

// NewStatistics creates a fresh, running statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		Enabled:           true,
		InstructionCounts: make(map[string]uint64),
		HotPath:           make(map[uint32]uint64),
		startTime:         timeNow(),
	}
}

// timeNow exists so the one non-deterministic call in this package is
// isolated to a single line.
func timeNow() time.Time {
	return time.Now()
}

// RecordCycle folds one executed Cycle into the running totals.
func (s *Statistics) RecordCycle(cyc datapath.Cycle) {
	if !s.Enabled {
		return
	}
	s.TotalInstructions++
	s.TotalCycles++
	s.InstructionCounts[cyc.Decoded.Mnemonic.String()]++
	s.HotPath[cyc.PC]++

	switch cyc.Decoded.Mnemonic.String() {
	case "BEQ", "BNE", "BLT", "BGE", "BLTU", "BGEU":
		s.BranchCount++
		if cyc.BranchTaken {
			s.BranchTakenCount++
		} else {
			s.BranchMissedCount++
		}
	}
	if cyc.MemRead {
		s.MemoryReads++
	}
	if cyc.MemWrite {
		s.MemoryWrites++
	}
}

// Finalize stamps elapsed wall-clock time and throughput.
func (s *Statistics) Finalize() {
	s.ExecutionTime = time.Since(s.startTime)
	if s.ExecutionTime.Seconds() > 0 {
		s.InstructionsPerSec = float64(s.TotalInstructions) / s.ExecutionTime.Seconds()
	}
	if s.TotalInstructions > 0 {
		s.CPI = float64(s.TotalCycles) / float64(s.TotalInstructions)
	}
}

// TopInstructions returns the n most frequently executed mnemonics, or
// all of them when n <= 0.
func (s *Statistics) TopInstructions(n int) []InstructionStat {
	out := make([]InstructionStat, 0, len(s.InstructionCounts))
	for mnemonic, count := range s.InstructionCounts {
		out = append(out, InstructionStat{Mnemonic: mnemonic, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && n < len(out) {
		return out[:n]
	}
	return out
}

// ExportJSON writes the statistics as a single JSON object.
func (s *Statistics) ExportJSON(w io.Writer) error {
	s.Finalize()
	data := map[string]any{
		"total_instructions":   s.TotalInstructions,
		"total_cycles":         s.TotalCycles,
		"execution_time_ms":    s.ExecutionTime.Milliseconds(),
		"instructions_per_sec": s.InstructionsPerSec,
		"cpi":                  s.CPI,
		"branch_count":         s.BranchCount,
		"branch_taken":         s.BranchTakenCount,
		"branch_missed":        s.BranchMissedCount,
		"memory_reads":         s.MemoryReads,
		"memory_writes":        s.MemoryWrites,
		"top_instructions":     s.TopInstructions(20),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes a summary-metrics table followed by a per-mnemonic
// breakdown table.
func (s *Statistics) ExportCSV(w io.Writer) error {
	s.Finalize()
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	rows := [][]string{
		{"Total Instructions", fmt.Sprintf("%d", s.TotalInstructions)},
		{"Total Cycles", fmt.Sprintf("%d", s.TotalCycles)},
		{"Execution Time (ms)", fmt.Sprintf("%d", s.ExecutionTime.Milliseconds())},
		{"Instructions/Sec", fmt.Sprintf("%.2f", s.InstructionsPerSec)},
		{"CPI", fmt.Sprintf("%.4f", s.CPI)},
		{"Branch Count", fmt.Sprintf("%d", s.BranchCount)},
		{"Branch Taken", fmt.Sprintf("%d", s.BranchTakenCount)},
		{"Branch Missed", fmt.Sprintf("%d", s.BranchMissedCount)},
		{"Memory Reads", fmt.Sprintf("%d", s.MemoryReads)},
		{"Memory Writes", fmt.Sprintf("%d", s.MemoryWrites)},
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Write([]string{})
	writer.Write([]string{"Instruction", "Count"})
	for _, stat := range s.TopInstructions(0) {
		if err := writer.Write([]string{stat.Mnemonic, fmt.Sprintf("%d", stat.Count)}); err != nil {
			return err
		}
	}
	return nil
}

var statsHTMLTemplate = template.Must(template.New("stats").Parse(`
<!DOCTYPE html>
<html>
<head>
    <title>RV32 Simulator Performance Statistics</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        h1 { color: #333; }
        h2 { color: #666; margin-top: 30px; }
        table { border-collapse: collapse; margin: 10px 0; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #4CAF50; color: white; }
        tr:nth-child(even) { background-color: #f2f2f2; }
        .metric { font-weight: bold; }
    </style>
</head>
<body>
    <h1>RV32 Simulator Performance Statistics</h1>

    <h2>Execution Summary</h2>
    <table>
        <tr><td class="metric">Total Instructions</td><td>{{.TotalInstructions}}</td></tr>
        <tr><td class="metric">Total Cycles</td><td>{{.TotalCycles}}</td></tr>
        <tr><td class="metric">Execution Time</td><td>{{.ExecutionTime}}</td></tr>
        <tr><td class="metric">Instructions/Second</td><td>{{printf "%.2f" .InstructionsPerSec}}</td></tr>
        <tr><td class="metric">CPI</td><td>{{printf "%.4f" .CPI}}</td></tr>
    </table>

    <h2>Branch Statistics</h2>
    <table>
        <tr><td class="metric">Total Branches</td><td>{{.BranchCount}}</td></tr>
        <tr><td class="metric">Branches Taken</td><td>{{.BranchTakenCount}}</td></tr>
        <tr><td class="metric">Branches Not Taken</td><td>{{.BranchMissedCount}}</td></tr>
        <tr><td class="metric">Branch Rate</td><td>{{printf "%.1f%%" .BranchRate}}</td></tr>
    </table>

    <h2>Memory Access Statistics</h2>
    <table>
        <tr><td class="metric">Memory Reads</td><td>{{.MemoryReads}}</td></tr>
        <tr><td class="metric">Memory Writes</td><td>{{.MemoryWrites}}</td></tr>
    </table>

    <h2>Top Instructions (by frequency)</h2>
    <table>
        <tr><th>Instruction</th><th>Count</th><th>Percentage</th></tr>
        {{range .TopInstructions}}
        <tr><td>{{.Mnemonic}}</td><td>{{.Count}}</td><td>{{printf "%.1f" .Percentage}}%</td></tr>
        {{end}}
    </table>
</body>
</html>
`))

// ExportHTML writes a standalone HTML report.
func (s *Statistics) ExportHTML(w io.Writer) error {
	s.Finalize()

	type instRow struct {
		Mnemonic   string
		Count      uint64
		Percentage float64
	}
	data := struct {
		TotalInstructions  uint64
		TotalCycles        uint64
		ExecutionTime      time.Duration
		InstructionsPerSec float64
		CPI                float64
		BranchCount        uint64
		BranchTakenCount   uint64
		BranchMissedCount  uint64
		BranchRate         float64
		MemoryReads        uint64
		MemoryWrites       uint64
		TopInstructions    []instRow
	}{
		TotalInstructions:  s.TotalInstructions,
		TotalCycles:        s.TotalCycles,
		ExecutionTime:      s.ExecutionTime,
		InstructionsPerSec: s.InstructionsPerSec,
		CPI:                s.CPI,
		BranchCount:        s.BranchCount,
		BranchTakenCount:   s.BranchTakenCount,
		BranchMissedCount:  s.BranchMissedCount,
		MemoryReads:        s.MemoryReads,
		MemoryWrites:       s.MemoryWrites,
	}
	if s.BranchCount > 0 {
		data.BranchRate = float64(s.BranchTakenCount) / float64(s.BranchCount) * 100
	}
	for _, inst := range s.TopInstructions(20) {
		pct := float64(0)
		if s.TotalInstructions > 0 {
			pct = float64(inst.Count) / float64(s.TotalInstructions) * 100
		}
		data.TopInstructions = append(data.TopInstructions, instRow{inst.Mnemonic, inst.Count, pct})
	}
	return statsHTMLTemplate.Execute(w, data)
}

// String renders a terse human-readable summary, mirroring the teacher's
// stat dump shown in interactive mode.
func (s *Statistics) String() string {
	s.Finalize()
	var sb strings.Builder
	sb.WriteString("Performance Statistics\n")
	sb.WriteString("======================\n\n")
	sb.WriteString(fmt.Sprintf("Total Instructions:  %d\n", s.TotalInstructions))
	sb.WriteString(fmt.Sprintf("Total Cycles:        %d\n", s.TotalCycles))
	sb.WriteString(fmt.Sprintf("Instructions/Sec:    %.2f\n", s.InstructionsPerSec))
	sb.WriteString(fmt.Sprintf("CPI:                 %.4f\n\n", s.CPI))
	sb.WriteString(fmt.Sprintf("Branch Count:        %d\n", s.BranchCount))
	sb.WriteString(fmt.Sprintf("Branches Taken:      %d\n", s.BranchTakenCount))
	sb.WriteString(fmt.Sprintf("Branches Not Taken:  %d\n\n", s.BranchMissedCount))
	sb.WriteString(fmt.Sprintf("Memory Reads:        %d\n", s.MemoryReads))
	sb.WriteString(fmt.Sprintf("Memory Writes:       %d\n\n", s.MemoryWrites))
	sb.WriteString("Top Instructions:\n")
	for i, stat := range s.TopInstructions(10) {
		pct := float64(0)
		if s.TotalInstructions > 0 {
			pct = float64(stat.Count) / float64(s.TotalInstructions) * 100
		}
		sb.WriteString(fmt.Sprintf("  %2d. %-8s %8d (%.1f%%)\n", i+1, stat.Mnemonic, stat.Count, pct))
	}
	return sb.String()
}
