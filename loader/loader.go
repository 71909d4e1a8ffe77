// Package loader reads a hex program image (one 8-hex-digit instruction
// word per line) into memory, grounded on the teacher's loader package's
// two-pass shape but simplified: there is no assembler here, only a flat
// list of pre-encoded instruction words.
package loader

import (
	"bufio"
	"io"
	"strings"

	"github.com/rv32toy/rv32sim/bitvec"
	"github.com/rv32toy/rv32sim/faults"
	"github.com/rv32toy/rv32sim/memory"
)

const component = "loader"

// Load reads hex-encoded instruction words from r, one per non-blank
// line, and writes them sequentially into mem's instruction segment
// starting at base. It returns the number of words loaded. Blank or
// whitespace-only lines are skipped; any other content that isn't a
// valid 8-digit hex word, including a comment-style line, is a fatal
// parse error.
func Load(r io.Reader, mem *memory.Memory, base uint32) (int, error) {
	scanner := bufio.NewScanner(r)
	addr := base
	count := 0
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		word, err := bitvec.ParseHex(line, 32)
		if err != nil {
			return count, faults.Wrap(component, faults.KindMalformedInput, err, "line %d: %q is not a valid 8-digit hex instruction", lineNo, line)
		}
		if err := mem.LoadWord(addr, word); err != nil {
			return count, faults.Wrap(component, faults.KindOutOfRange, err, "line %d: failed writing instruction at 0x%08X", lineNo, addr)
		}

		addr += 4
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, faults.Wrap(component, faults.KindMalformedInput, err, "reading program image")
	}
	return count, nil
}
