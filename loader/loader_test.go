package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rv32toy/rv32sim/bitvec"
	"github.com/rv32toy/rv32sim/memory"
)

func TestLoadSkipsBlankLines(t *testing.T) {
	src := "00000013\n\n00100093\n"
	mem := memory.New()
	n, err := Load(strings.NewReader(src), mem, memory.InstructionSegmentStart)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "expected 2 words loaded")

	w, err := mem.ReadWord(memory.InstructionSegmentStart + 4)
	require.NoError(t, err)
	assert.Equal(t, "00100093", bitvec.FormatHex(w))
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	mem := memory.New()
	_, err := Load(strings.NewReader("not-hex\n"), mem, memory.InstructionSegmentStart)
	assert.Error(t, err, "expected malformed line to error")
}

func TestLoadRejectsCommentLine(t *testing.T) {
	mem := memory.New()
	_, err := Load(strings.NewReader("# not a comment, a fatal line\n00000013\n"), mem, memory.InstructionSegmentStart)
	assert.Error(t, err, "expected '#'-prefixed line to be a fatal parse error")
}
