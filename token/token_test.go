package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakePosLineCol(t *testing.T) {
	p := MakePos(42, 7)
	line, col := p.LineCol()
	require.Equal(t, 42, line)
	require.Equal(t, 7, col)
	require.False(t, p.Unknown())
}

func TestPosUnknown(t *testing.T) {
	var p Pos
	require.True(t, p.Unknown())
}

func TestSymbolValid(t *testing.T) {
	require.False(t, NoSymbol.Valid())
	require.True(t, SymPlus.Valid())
}

func TestPredeclaredName(t *testing.T) {
	require.Equal(t, "+", PredeclaredName(SymPlus))
	require.Equal(t, "if", PredeclaredName(SymIf))
	require.Equal(t, "", PredeclaredName(SymIdent))
}

func TestBinaryPriority(t *testing.T) {
	p, ok := BinaryPriority(SymPlus)
	require.True(t, ok)
	require.Equal(t, 8, p)

	_, ok = BinaryPriority(SymBang)
	require.False(t, ok)
}

func TestIsOperator(t *testing.T) {
	require.True(t, IsOperator(SymQuestion))
	require.True(t, IsOperator(SymBang))
	require.True(t, IsOperator(SymMinus))
	require.True(t, IsOperator(SymPlus))
	require.False(t, IsOperator(SymIf))
}

func TestIsAssignOp(t *testing.T) {
	require.True(t, IsAssignOp(SymAssign))
	require.True(t, IsAssignOp(SymPlusEq))
	require.False(t, IsAssignOp(SymEqEq))
}

func TestIsQualifierKeyword(t *testing.T) {
	require.True(t, IsQualifierKeyword(SymConst))
	require.True(t, IsQualifierKeyword(SymStatic))
	require.False(t, IsQualifierKeyword(SymIf))
}

func TestCursorString(t *testing.T) {
	c := Cursor{Section: "main", Line: 3}
	require.Equal(t, "main:3", c.String())
}
