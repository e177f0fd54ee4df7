package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scriptlang/cscompiler/callpoint"
	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
	"github.com/scriptlang/cscompiler/tokstream"
)

func newQualifierCompiler(syms *symtab.Table, toks *tokstream.Slice) *Compiler {
	diags := &diag.Handler{}
	return New(Main, Options{}, toks, syms, emitter.New(), callpoint.New(), callpoint.New(), diags, "main")
}

func TestParseQualifiersAccumulatesBitsAndStopsAtFirstNonQualifier(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.Push(token.SymConst, 1)
	toks.Push(token.SymStatic, 1)
	toks.Push(token.SymInt, 1)

	c := newQualifierCompiler(syms, toks)
	quals, err := c.parseQualifiers()
	require.NoError(t, err)
	require.True(t, quals.Has(symtab.QConst))
	require.True(t, quals.Has(symtab.QStatic))
	require.Equal(t, token.SymInt, c.peek())
}

func TestParseQualifiersEmptyWhenNoneLead(t *testing.T) {
	syms := newFixture()
	toks := tokstream.NewSlice()
	toks.Push(token.SymInt, 1)

	c := newQualifierCompiler(syms, toks)
	quals, err := c.parseQualifiers()
	require.NoError(t, err)
	require.Equal(t, symtab.Qualifier(0), quals)
}

func TestCheckQualifierLegalityTypeLevelIllegalInFunctionBody(t *testing.T) {
	c := newQualifierCompiler(newFixture(), tokstream.NewSlice())
	err := c.checkQualifierLegality(symtab.QStatic, ctxFunctionBody, 1)
	require.Error(t, err)
}

func TestCheckQualifierLegalityBuiltinIllegalOnStructMember(t *testing.T) {
	c := newQualifierCompiler(newFixture(), tokstream.NewSlice())
	err := c.checkQualifierLegality(symtab.QBuiltin, ctxStructMember, 1)
	require.Error(t, err)
}

func TestCheckQualifierLegalityAttributeOnlyLegalOnStructMember(t *testing.T) {
	c := newQualifierCompiler(newFixture(), tokstream.NewSlice())
	require.Error(t, c.checkQualifierLegality(symtab.QAttribute, ctxGlobal, 1))
	require.NoError(t, c.checkQualifierLegality(symtab.QAttribute, ctxStructMember, 1))
}

func TestCheckQualifierLegalityExclusiveAccessQualifiers(t *testing.T) {
	c := newQualifierCompiler(newFixture(), tokstream.NewSlice())
	err := c.checkQualifierLegality(symtab.QProtected|symtab.QReadonly, ctxStructMember, 1)
	require.Error(t, err)

	require.NoError(t, c.checkQualifierLegality(symtab.QProtected, ctxStructMember, 1))
}

func TestCheckQualifierLegalityAutoptrRequiresBuiltinAndManaged(t *testing.T) {
	c := newQualifierCompiler(newFixture(), tokstream.NewSlice())
	require.Error(t, c.checkQualifierLegality(symtab.QAutoptr, ctxGlobal, 1))
	require.NoError(t, c.checkQualifierLegality(symtab.QAutoptr|symtab.QBuiltin|symtab.QManaged, ctxGlobal, 1))
}

func TestCheckQualifierLegalityStringstructRequiresAutoptrAndExcludesImport(t *testing.T) {
	c := newQualifierCompiler(newFixture(), tokstream.NewSlice())
	require.Error(t, c.checkQualifierLegality(symtab.QStringstruct, ctxGlobal, 1))

	base := symtab.QStringstruct | symtab.QAutoptr | symtab.QBuiltin | symtab.QManaged
	require.NoError(t, c.checkQualifierLegality(base, ctxGlobal, 1))
	require.Error(t, c.checkQualifierLegality(base|symtab.QImport, ctxGlobal, 1))
}

func TestCheckQualifierLegalityConstOnlyLegalOnParameter(t *testing.T) {
	c := newQualifierCompiler(newFixture(), tokstream.NewSlice())
	require.Error(t, c.checkQualifierLegality(symtab.QConst, ctxGlobal, 1))
	require.NoError(t, c.checkQualifierLegality(symtab.QConst, ctxParameter, 1))
}
