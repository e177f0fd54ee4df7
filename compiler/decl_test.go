package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
	"github.com/scriptlang/cscompiler/tokstream"
)

// containsPair reports whether code holds opcode immediately followed by
// arg anywhere in the stream, the shape WriteCmd(op, arg) produces.
func containsPair(code []emitter.Cell, op emitter.Opcode, arg emitter.Cell) bool {
	for i := 0; i+1 < len(code); i++ {
		if code[i] == emitter.Cell(op) && code[i+1] == arg {
			return true
		}
	}
	return false
}

// TestStructMemberOffsetsAccumulate builds a three-field struct and checks
// that each field's Entry.Offset reflects the running layout, not just the
// first field's.
func TestStructMemberOffsetsAccumulate(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.PushSection(token.SymStruct, "main", 1)
	pushToks(toks, syms, 1, "Point", token.SymLBrace,
		token.SymInt, "x", token.SymSemi,
		token.SymInt, "y", token.SymSemi,
		token.SymChar, "flag", token.SymSemi,
		token.SymRBrace, token.SymSemi)

	pushToks(toks, syms, 2, token.SymVoid, "f", token.SymLParen, token.SymRParen, token.SymLBrace,
		token.SymReturn, token.SymSemi, token.SymRBrace)

	_, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	require.False(t, diags.HasErrors(), "%v", diags.Messages())

	pointSym, ok := syms.Find("Point")
	require.True(t, ok)

	xSym := syms.MangleStructAndComponent(pointSym, syms.FindOrAdd("x"))
	xEntry, ok := syms.Get(xSym)
	require.True(t, ok)
	require.Equal(t, 0, xEntry.Offset)

	ySym := syms.MangleStructAndComponent(pointSym, syms.FindOrAdd("y"))
	yEntry, ok := syms.Get(ySym)
	require.True(t, ok)
	require.Equal(t, 4, yEntry.Offset)

	flagSym := syms.MangleStructAndComponent(pointSym, syms.FindOrAdd("flag"))
	flagEntry, ok := syms.Get(flagSym)
	require.True(t, ok)
	require.Equal(t, 8, flagEntry.Offset)

	pointEntry, ok := syms.Get(pointSym)
	require.True(t, ok)
	require.Equal(t, 12, pointEntry.Size) // 9 bytes aligned up to a 4-byte boundary
}

// TestStructMemberAccessEmitsFieldOffset regression-tests the struct-offset
// bug: accessing the second field of a local, by-value struct must emit a
// LOADSPOFFS for that field's own offset, not silently alias the struct's
// base address.
func TestStructMemberAccessEmitsFieldOffset(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.PushSection(token.SymStruct, "main", 1)
	pushToks(toks, syms, 1, "Point", token.SymLBrace,
		token.SymInt, "x", token.SymSemi,
		token.SymInt, "y", token.SymSemi,
		token.SymRBrace, token.SymSemi)

	toks.Push(token.SymInt, 2)
	pushToks(toks, syms, 2, "f", token.SymLParen, token.SymRParen, token.SymLBrace)
	pointSym := syms.FindOrAdd("Point")
	toks.Push(pointSym, 3)
	pushToks(toks, syms, 3, "p", token.SymSemi,
		token.SymReturn, "p", token.SymDot, "y", token.SymSemi, token.SymRBrace)

	em, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	require.False(t, diags.HasErrors(), "%v", diags.Messages())

	require.True(t, containsPair(em.Code, emitter.LOADSPOFFS, emitter.Cell(4)),
		"expected a LOADSPOFFS for field y's own offset (4), not an alias of the struct base")
}

func TestEnumItemsDefaultToSequentialValues(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.PushSection(token.SymEnum, "main", 1)
	pushToks(toks, syms, 1, "Color", token.SymLBrace,
		"Red", token.SymComma, "Green", token.SymComma, "Blue",
		token.SymRBrace, token.SymSemi)

	pushToks(toks, syms, 2, token.SymVoid, "f", token.SymLParen, token.SymRParen, token.SymLBrace,
		token.SymReturn, token.SymSemi, token.SymRBrace)

	_, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	require.False(t, diags.HasErrors(), "%v", diags.Messages())

	for name, want := range map[string]int{"Red": 0, "Green": 1, "Blue": 2} {
		sym, ok := syms.Find(name)
		require.True(t, ok)
		entry, ok := syms.Get(sym)
		require.True(t, ok)
		require.Equal(t, symtab.Constant, entry.Kind)
		require.Equal(t, want, entry.Offset)
	}
}

func TestEnumItemWithExplicitValueRebasesSubsequentItems(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.PushSection(token.SymEnum, "main", 1)
	pushToks(toks, syms, 1, "Color", token.SymLBrace,
		"Red", token.SymComma,
		"Green", token.SymAssign, 10, token.SymComma,
		"Blue",
		token.SymRBrace, token.SymSemi)

	pushToks(toks, syms, 2, token.SymVoid, "f", token.SymLParen, token.SymRParen, token.SymLBrace,
		token.SymReturn, token.SymSemi, token.SymRBrace)

	_, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	require.False(t, diags.HasErrors(), "%v", diags.Messages())

	greenSym, _ := syms.Find("Green")
	greenEntry, _ := syms.Get(greenSym)
	require.Equal(t, 10, greenEntry.Offset)

	blueSym, _ := syms.Find("Blue")
	blueEntry, _ := syms.Get(blueSym)
	require.Equal(t, 11, blueEntry.Offset)
}

func TestGlobalArrayDeclarationSizesToDimensions(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.PushSection(token.SymInt, "main", 1)
	pushToks(toks, syms, 1, "nums", token.SymLBrack, 5, token.SymRBrack, token.SymSemi)

	pushToks(toks, syms, 2, token.SymVoid, "f", token.SymLParen, token.SymRParen, token.SymLBrace,
		token.SymReturn, token.SymSemi, token.SymRBrace)

	_, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	require.False(t, diags.HasErrors(), "%v", diags.Messages())

	numsSym, ok := syms.Find("nums")
	require.True(t, ok)
	entry, ok := syms.Get(numsSym)
	require.True(t, ok)
	require.Equal(t, symtab.GlobalVar, entry.Kind)
	require.Equal(t, 20, entry.Size) // 5 ints at 4 bytes each
}

func TestZeroSizeArrayDimensionIsError(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.PushSection(token.SymInt, "main", 1)
	pushToks(toks, syms, 1, "nums", token.SymLBrack, 0, token.SymRBrack, token.SymSemi)

	pushToks(toks, syms, 2, token.SymVoid, "f", token.SymLParen, token.SymRParen, token.SymLBrace,
		token.SymReturn, token.SymSemi, token.SymRBrace)

	_, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	require.True(t, diags.HasErrors())
}

func TestFunctionForwardDeclarationMustMatchBody(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.PushSection(token.SymInt, "main", 1)
	pushToks(toks, syms, 1, "add", token.SymLParen, token.SymInt, "a", token.SymComma, token.SymInt, "b", token.SymRParen, token.SymSemi)

	toks.Push(token.SymFloat, 2)
	pushToks(toks, syms, 2, "add", token.SymLParen, token.SymInt, "a", token.SymComma, token.SymInt, "b", token.SymRParen, token.SymLBrace,
		token.SymReturn, 0, token.SymSemi, token.SymRBrace)

	_, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	require.True(t, diags.HasErrors())
	msg, ok := diags.FirstError()
	require.True(t, ok)
	require.Contains(t, msg.Text, "add")
}

func TestFunctionParamDefaultAllowsOmittedArgument(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.PushSection(token.SymInt, "main", 1)
	pushToks(toks, syms, 1, "inc", token.SymLParen, token.SymInt, "a", token.SymComma,
		token.SymInt, "step", token.SymAssign, 1, token.SymRParen, token.SymLBrace,
		token.SymReturn, "a", token.SymPlus, "step", token.SymSemi, token.SymRBrace)

	pushToks(toks, syms, 9, token.SymInt, "f", token.SymLParen, token.SymRParen, token.SymLBrace,
		token.SymReturn, "inc", token.SymLParen, 5, token.SymRParen, token.SymSemi, token.SymRBrace)

	_, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	require.False(t, diags.HasErrors(), "%v", diags.Messages())

	incSym, ok := syms.Find("inc")
	require.True(t, ok)
	entry, ok := syms.Get(incSym)
	require.True(t, ok)
	require.Len(t, entry.FuncParamDefaults, 3) // [retVT, a, step]
	require.Equal(t, symtab.DefaultInt, entry.FuncParamDefaults[2].Kind)
	require.Equal(t, int32(1), entry.FuncParamDefaults[2].Int)
}
