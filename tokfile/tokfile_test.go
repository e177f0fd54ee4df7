package tokfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
	"github.com/scriptlang/cscompiler/tokstream"
)

func TestParseBasicTokens(t *testing.T) {
	src := `@main
if
ident foo
int 42
float 3.5
string hello world
{
}
`
	syms := symtab.New()
	syms.DefinePredeclared(token.SymIf, symtab.Entry{Name: "if", Kind: symtab.Keyword})

	toks, err := Parse(strings.NewReader(src), syms)
	require.NoError(t, err)
	require.Equal(t, 7, toks.Length())

	require.Equal(t, token.SymIf, toks.GetNext())
	fooSym := toks.GetNext()
	name, ok := syms.Find("foo")
	require.True(t, ok)
	require.Equal(t, name, fooSym)

	require.Equal(t, token.SymIntLit, toks.GetNext())
	require.Equal(t, int32(42), toks.IntLiteral(2))

	require.Equal(t, token.SymFloatLit, toks.GetNext())
	require.Equal(t, float32(3.5), toks.FloatLiteral(3))

	require.Equal(t, token.SymStringLit, toks.GetNext())
	require.Equal(t, "hello world", toks.StringLiteral(4))
}

func TestParseIgnoresBlankLinesAndComments(t *testing.T) {
	src := "\n# a comment\nident x\n\n"
	syms := symtab.New()
	toks, err := Parse(strings.NewReader(src), syms)
	require.NoError(t, err)
	require.Equal(t, 1, toks.Length())
}

func TestParseUnrecognizedToken(t *testing.T) {
	syms := symtab.New()
	_, err := Parse(strings.NewReader("zzzznotreal\n"), syms)
	require.Error(t, err)
}

func TestBaseNameStripsDirAndExt(t *testing.T) {
	require.Equal(t, "foo", baseName("/a/b/foo.tok"))
	require.Equal(t, "bar", baseName("bar.tok"))
}

func TestParseIntoUsesDefaultSectionUntilOverridden(t *testing.T) {
	syms := symtab.New()
	syms.DefinePredeclared(token.SymIf, symtab.Entry{Name: "if", Kind: symtab.Keyword})

	s, err := ParseInto(tokstream.NewSlice(), strings.NewReader("if\n@other\nif\n"), "foo", syms)
	require.NoError(t, err)

	section, _ := s.Position(0)
	require.Equal(t, "foo", section)
	section, _ = s.Position(1)
	require.Equal(t, "other", section)
}

func TestDumpRoundTrips(t *testing.T) {
	syms := symtab.New()
	syms.DefinePredeclared(token.SymIf, symtab.Entry{Name: "if", Kind: symtab.Keyword})

	src := "@main\nif\nident bar\nint 7\n"
	toks, err := Parse(strings.NewReader(src), syms)
	require.NoError(t, err)

	var b strings.Builder
	Dump(&b, toks, syms)

	reparsed, err := Parse(strings.NewReader(b.String()), syms)
	require.NoError(t, err)
	require.Equal(t, toks.Length(), reparsed.Length())

	toks.SetCursor(0)
	require.Equal(t, token.SymIf, reparsed.GetNext())
	require.Equal(t, token.SymIf, toks.GetNext())
	barA := toks.GetNext()
	barB := reparsed.GetNext()
	require.Equal(t, barA, barB)
}
