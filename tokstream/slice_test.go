package tokstream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scriptlang/cscompiler/token"
)

func TestPushAndReadBack(t *testing.T) {
	s := NewSlice()
	s.PushSection(token.SymIf, "main", 1)
	s.PushInt(42, 2)
	s.PushFloat(3.5, 3)
	s.PushString("hi", 4)

	require.Equal(t, 4, s.Length())

	require.Equal(t, token.SymIf, s.PeekNext())
	require.Equal(t, token.SymIf, s.GetNext())
	require.Equal(t, token.SymIntLit, s.GetNext())
	require.Equal(t, int32(42), s.IntLiteral(1))
	require.Equal(t, token.SymFloatLit, s.GetNext())
	require.Equal(t, float32(3.5), s.FloatLiteral(2))
	require.Equal(t, token.SymStringLit, s.GetNext())
	require.Equal(t, "hi", s.StringLiteral(3))

	require.True(t, s.ReachedEOF())
	require.Equal(t, token.NoSymbol, s.PeekNext())
}

func TestBackUpAndCursor(t *testing.T) {
	s := NewSlice()
	s.Push(token.SymPlus, 1)
	s.Push(token.SymMinus, 2)

	s.GetNext()
	s.GetNext()
	require.Equal(t, 2, s.GetCursor())

	s.BackUp()
	require.Equal(t, 1, s.GetCursor())
	require.Equal(t, token.SymMinus, s.PeekNext())

	s.SetCursor(0)
	require.Equal(t, token.SymPlus, s.PeekNext())
}

func TestPositionAndCursorHelper(t *testing.T) {
	s := NewSlice()
	s.PushSection(token.SymIf, "file1", 10)

	section, line := s.Position(0)
	require.Equal(t, "file1", section)
	require.Equal(t, 10, line)

	c := Cursor(s)
	require.Equal(t, "file1", c.Section)
	require.Equal(t, 10, c.Line)
	require.Equal(t, 0, c.Index)
}

func TestPositionOutOfRange(t *testing.T) {
	s := NewSlice()
	section, line := s.Position(5)
	require.Equal(t, "", section)
	require.Equal(t, 0, line)
}
