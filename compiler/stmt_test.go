package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
	"github.com/scriptlang/cscompiler/tokstream"
)

func TestIfElseEmitsBothBranchesAndJumps(t *testing.T) {
	em := runFunc(t, token.SymVoid, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2,
			token.SymIf, token.SymLParen, "a", token.SymRParen, token.SymLBrace,
			"a", token.SymAssign, 1, token.SymSemi,
			token.SymRBrace, token.SymElse, token.SymLBrace,
			"a", token.SymAssign, 2, token.SymSemi,
			token.SymRBrace, token.SymReturn, token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.JZ))
	require.Contains(t, em.Code, emitter.Cell(emitter.JMP))
}

func TestWhileLoopEmitsBackwardJump(t *testing.T) {
	em := runFunc(t, token.SymVoid, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2,
			token.SymWhile, token.SymLParen, "a", token.SymRParen, token.SymLBrace,
			"a", token.SymMinusEq, 1, token.SymSemi,
			token.SymRBrace, token.SymReturn, token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.JZ))
	require.Contains(t, em.Code, emitter.Cell(emitter.JMP))
	require.Contains(t, em.Code, emitter.Cell(emitter.SUBREG))
}

func TestDoWhileContinueJumpsForwardToCondition(t *testing.T) {
	em := runFunc(t, token.SymVoid, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2,
			token.SymDo, token.SymLBrace,
			token.SymContinue, token.SymSemi,
			token.SymRBrace, token.SymWhile, token.SymLParen, "a", token.SymRParen, token.SymSemi,
			token.SymReturn, token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.JNZ))
	require.Contains(t, em.Code, emitter.Cell(emitter.JMP))
}

func TestForLoopYanksAndReplaysStepExpression(t *testing.T) {
	em := runFunc(t, token.SymVoid, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2,
			token.SymFor, token.SymLParen,
			"a", token.SymAssign, 0, token.SymSemi,
			"a", token.SymSemi,
			"a", token.SymMinusEq, 1, token.SymRParen,
			token.SymLBrace, token.SymRBrace,
			token.SymReturn, token.SymSemi)
	})
	// the step expression (a -= 1) is yanked and replayed at the loop bottom
	// (and would be replayed again at each continue), so SUBREG appears at
	// least once even though this body never continues explicitly.
	require.Contains(t, em.Code, emitter.Cell(emitter.SUBREG))
	require.Contains(t, em.Code, emitter.Cell(emitter.JZ))
	require.Contains(t, em.Code, emitter.Cell(emitter.JMP))
}

func TestSwitchWithCaseAndDefaultEmitsComparisonsAndJumpTable(t *testing.T) {
	em := runFunc(t, token.SymVoid, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2,
			token.SymSwitch, token.SymLParen, "a", token.SymRParen, token.SymLBrace,
			token.SymCase, 1, token.SymColon,
			token.SymBreak, token.SymSemi,
			token.SymDefault, token.SymColon,
			token.SymBreak, token.SymSemi,
			token.SymRBrace, token.SymReturn, token.SymSemi)
	})
	require.Contains(t, em.Code, emitter.Cell(emitter.ISEQUAL))
	require.Contains(t, em.Code, emitter.Cell(emitter.JNZ))
}

func TestBreakOutsideLoopOrSwitchIsError(t *testing.T) {
	em, diags := compileAndDiag(t, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, token.SymBreak, token.SymSemi, token.SymReturn, token.SymSemi)
	})
	_ = em
	require.True(t, diags.HasErrors())
	msg, ok := diags.FirstError()
	require.True(t, ok)
	require.Contains(t, msg.Text, "break outside")
}

func TestContinueOutsideLoopIsError(t *testing.T) {
	_, diags := compileAndDiag(t, func(toks *tokstream.Slice, syms *symtab.Table) {
		pushToks(toks, syms, 2, token.SymContinue, token.SymSemi, token.SymReturn, token.SymSemi)
	})
	require.True(t, diags.HasErrors())
	msg, ok := diags.FirstError()
	require.True(t, ok)
	require.Contains(t, msg.Text, "continue outside")
}

// compileAndDiag runs a void f(int a, int b) function body through the full
// two-phase driver without asserting success, for tests expecting a
// diagnostic.
func compileAndDiag(t *testing.T, body func(toks *tokstream.Slice, syms *symtab.Table)) (*emitter.Emitter, *diag.Handler) {
	t.Helper()
	syms := newFixture()
	toks := buildOneFunc(syms, token.SymVoid, body)
	em, diags, err := Run(toks, syms, Options{}, "main")
	require.NoError(t, err)
	return em, diags
}
