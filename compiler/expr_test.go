package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
	"github.com/scriptlang/cscompiler/tokstream"
)

// pushToks appends a run of tokens at the given line onto toks. An item is
// either a token.Symbol, a string (interned as an identifier), or an int
// (pushed as an int literal).
func pushToks(toks *tokstream.Slice, syms *symtab.Table, line int, items ...any) {
	for _, it := range items {
		switch v := it.(type) {
		case token.Symbol:
			toks.Push(v, line)
		case string:
			toks.Push(syms.FindOrAdd(v), line)
		case int:
			toks.PushInt(int32(v), line)
		default:
			panic("pushToks: unsupported item type")
		}
	}
}

// buildOneFunc wraps body's tokens as the statement list of a function with
// the given return vartype and two int parameters "a"/"b".
func buildOneFunc(syms *symtab.Table, retVT token.Symbol, body func(toks *tokstream.Slice, syms *symtab.Table)) *tokstream.Slice {
	toks := tokstream.NewSlice()
	toks.PushSection(retVT, "main", 1)
	pushToks(toks, syms, 1, "f", token.SymLParen, token.SymInt, "a", token.SymComma, token.SymInt, "b", token.SymRParen, token.SymLBrace)
	body(toks, syms)
	pushToks(toks, syms, 9, token.SymRBrace)
	return toks
}

func runFunc(t *testing.T, retVT token.Symbol, body func(toks *tokstream.Slice, syms *symtab.Table)) *emitter.Emitter {
	t.Helper()
	syms := newFixture()
	toks := buildOneFunc(syms, retVT, body)
	em, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	require.False(t, diags.HasErrors(), "%v", diags.Messages())
	return em
}

func TestBinaryAdditionEmitsAddReg(t *testing.T) {
	intVT := token.SymInt
	em := runFunc(t, intVT, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, token.SymReturn, "a", token.SymPlus, "b", token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.ADDREG))
}

func TestBinaryMultiplicationEmitsMulReg(t *testing.T) {
	em := runFunc(t, token.SymInt, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, token.SymReturn, "a", token.SymStar, "b", token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.MULREG))
}

func TestComparisonEmitsLessThan(t *testing.T) {
	em := runFunc(t, token.SymInt, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, token.SymReturn, "a", token.SymLt, "b", token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.LESSTHAN))
}

func TestLogicalAndShortCircuitsWithJZ(t *testing.T) {
	em := runFunc(t, token.SymInt, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, token.SymReturn, "a", token.SymAmpAmp, "b", token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.JZ))
}

func TestLogicalOrShortCircuitsWithJNZ(t *testing.T) {
	em := runFunc(t, token.SymInt, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, token.SymReturn, "a", token.SymPipePipe, "b", token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.JNZ))
}

func TestUnaryMinusEmitsSubReg(t *testing.T) {
	em := runFunc(t, token.SymInt, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, token.SymReturn, token.SymMinus, "a", token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.SUBREG))
}

func TestUnaryBangEmitsNotReg(t *testing.T) {
	em := runFunc(t, token.SymInt, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, token.SymReturn, token.SymBang, "a", token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.NOTREG))
}

func TestTernaryEmitsConditionalAndUnconditionalJumps(t *testing.T) {
	em := runFunc(t, token.SymInt, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, token.SymReturn, "a", token.SymQuestion, 1, token.SymColon, 2, token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.JZ))
	require.Contains(t, em.Code, emitter.Cell(emitter.JMP))
}

func TestParenthesizedSubexpressionParsesAsOneSpan(t *testing.T) {
	em := runFunc(t, token.SymInt, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, token.SymReturn, token.SymLParen, "a", token.SymPlus, "b", token.SymRParen, token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.ADDREG))
}

func TestNewUserObjectAllocatesStructPointer(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.PushSection(token.SymStruct, "main", 1)
	pushToks(toks, syms, 1, "Point", token.SymLBrace, token.SymInt, "x", token.SymSemi, token.SymRBrace)

	pushToks(toks, syms, 2, token.SymVoid, "f", token.SymLParen, token.SymRParen, token.SymLBrace)
	pointSym := syms.FindOrAdd("Point")
	toks.Push(pointSym, 3)
	pushToks(toks, syms, 3, token.SymStar, "p", token.SymAssign, token.SymNew)
	toks.Push(pointSym, 3)
	pushToks(toks, syms, 3, token.SymSemi, token.SymRBrace)

	em, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	require.False(t, diags.HasErrors(), "%v", diags.Messages())
	require.Contains(t, em.Code, emitter.Cell(emitter.NEWUSEROBJECT))
}
