package nesting

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
)

func TestPushPopRestoresShadowed(t *testing.T) {
	syms := symtab.New()
	sym := syms.FindOrAdd("x")
	syms.Set(sym, symtab.Entry{Name: "x", Kind: symtab.GlobalVar})
	outer, _ := syms.Get(sym)

	s := New(syms)
	require.Equal(t, 0, s.TopLevel())

	f := s.Push(KindBraces)
	require.Equal(t, 1, s.TopLevel())
	require.Same(t, f, s.Top())

	already := f.AddOldDefinition(sym, outer)
	require.False(t, already)
	again := f.AddOldDefinition(sym, outer)
	require.True(t, again)

	syms.Set(sym, symtab.Entry{Name: "x", Kind: symtab.LocalVar})

	s.Pop()
	require.Equal(t, 0, s.TopLevel())
	restored, ok := syms.Get(sym)
	require.True(t, ok)
	require.Equal(t, symtab.GlobalVar, restored.Kind)
}

func TestAtReturnsFrameByLevel(t *testing.T) {
	syms := symtab.New()
	s := New(syms)
	require.Nil(t, s.At(1))

	outer := s.Push(KindFunction)
	inner := s.Push(KindIf)

	require.Same(t, outer, s.At(1))
	require.Same(t, inner, s.At(2))
	require.Nil(t, s.At(3))
	require.Nil(t, s.At(0))
}

func TestYankAndWriteChunkRoundTrip(t *testing.T) {
	syms := symtab.New()
	s := New(syms)
	s.Push(KindFor)

	e := emitter.New()
	e.WriteCmd(emitter.LINENUM, 1)
	codeStart := e.CodeSize()
	fixupStart := len(e.Fixups)

	e.WriteCmd(emitter.LOADSPOFFS, 4)
	e.AddFixup(e.CodeSize()-1, emitter.FixupCode)
	e.WriteCmd(emitter.ADDREG)

	id := s.YankChunk(e, codeStart, fixupStart)
	require.Equal(t, 1, id)
	require.Equal(t, codeStart, e.CodeSize())
	require.Equal(t, fixupStart, len(e.Fixups))

	got := s.WriteChunk(e, 1, id)
	require.Equal(t, id, got)
	require.Equal(t, codeStart+3, e.CodeSize())
	require.Len(t, e.Fixups, fixupStart+1)
	require.Equal(t, codeStart+1, e.Fixups[fixupStart].CodeIndex)
}
