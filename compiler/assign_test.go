package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
	"github.com/scriptlang/cscompiler/tokstream"
)

func TestPlainAssignmentEmitsStore(t *testing.T) {
	em := runFunc(t, token.SymVoid, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, "a", token.SymAssign, "b", token.SymSemi, token.SymReturn, token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.MEMWRITE))
}

func TestCompoundPlusEqEmitsPushPopAndAdd(t *testing.T) {
	em := runFunc(t, token.SymVoid, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, "a", token.SymPlusEq, "b", token.SymSemi, token.SymReturn, token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.PUSHREG))
	require.Contains(t, em.Code, emitter.Cell(emitter.POPREG))
	require.Contains(t, em.Code, emitter.Cell(emitter.ADDREG))
}

func TestPostIncrementEmitsAddWithLiteralOne(t *testing.T) {
	em := runFunc(t, token.SymVoid, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, "a", token.SymPlusPlus, token.SymSemi, token.SymReturn, token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.ADDREG))
	require.Contains(t, em.Code, emitter.Cell(1))
}

func TestMinusEqEmitsSubReg(t *testing.T) {
	em := runFunc(t, token.SymVoid, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, "a", token.SymMinusEq, "b", token.SymSemi, token.SymReturn, token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.SUBREG))
}

func TestAssignmentTypeMismatchIsRejected(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.PushSection(token.SymVoid, "main", 1)
	pushToks(toks, syms, 1, "f", token.SymLParen, token.SymInt, "a", token.SymComma, token.SymFloat, "b", token.SymRParen, token.SymLBrace)
	pushToks(toks, syms, 2, "a", token.SymAssign, "b", token.SymSemi, token.SymReturn, token.SymSemi, token.SymRBrace)

	_, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	require.True(t, diags.HasErrors())
}
