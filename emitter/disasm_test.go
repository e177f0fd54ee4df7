package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisassembleAnnotatesJumpTarget(t *testing.T) {
	e := New()
	e.WriteCmd(LITTOREG, 5)
	e.WriteCmd(JMP, 2) // operand cell at index 3; dest = (2+1+1) + 2 = 6
	e.WriteCmd(NOP)
	e.WriteCmd(RET)

	var b strings.Builder
	require.NoError(t, Disassemble(&b, e.Code))
	out := b.String()

	require.Contains(t, out, "littoreg 5")
	require.Contains(t, out, "jmp 2 (-> 6)")
	require.Contains(t, out, "nop")
	require.Contains(t, out, "ret")
}

func TestDisassembleTruncatedInstruction(t *testing.T) {
	code := []Cell{Cell(LITTOREG)} // missing its one operand cell
	var b strings.Builder
	err := Disassemble(&b, code)
	require.Error(t, err)
}
