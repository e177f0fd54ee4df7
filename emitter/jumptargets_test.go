package emitter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForwardJumpPatch(t *testing.T) {
	e := New()
	var fj ForwardJump

	e.WriteCmd(JZ, 0)
	fj.AddParam(e, -1)
	require.False(t, fj.Empty())

	e.WriteCmd(NOP)
	e.WriteCmd(NOP)

	fj.Patch(e, e.LastEmittedLineno())
	require.True(t, fj.Empty())

	// the jump's operand cell is at index 1; the patched dest is CodeSize()
	// at patch time (4), relative to position+1 (2): 4-2 = 2
	require.Equal(t, Cell(2), e.Code[1])
}

func TestBackwardJumpDestWriteJump(t *testing.T) {
	e := New()
	var bjd BackwardJumpDest
	bjd.Set(e)
	require.Equal(t, 0, bjd.Dest())

	e.WriteCmd(NOP)
	e.WriteCmd(NOP)

	bjd.WriteJump(e, JMP, 1)
	// WriteJump forces a fresh LINENUM (no line was in effect when Set ran),
	// so the jump lands after it: opcode at index 4, operand at index 5;
	// "here" is the operand cell's own index (5), so dist = dest(0) - 5 = -5
	require.Equal(t, Cell(LINENUM), e.Code[2])
	require.Equal(t, Cell(JMP), e.Code[4])
	require.Equal(t, Cell(-5), e.Code[5])
}

func TestRelativeJumpDist(t *testing.T) {
	e := New()
	require.Equal(t, 5, e.RelativeJumpDist(10, 15))
	require.Equal(t, -5, e.RelativeJumpDist(15, 10))
}
