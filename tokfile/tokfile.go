// Package tokfile implements a minimal textual encoding of a pre-tokenized
// stream, one symbol per line, so the cmd/cscompile driver has something to
// read: the real lexical scanner is an external collaborator out of scope
// for this module (spec §1), and this format stands in for its output the
// way a disassembly listing stands in for a binary.
//
// Each line is one of:
//
//	<punctuation-or-keyword>   e.g. "if", "{", "+="
//	ident <name>
//	int <value>
//	float <value>
//	string <value>
//	# <comment>                ignored
//	@<section>                 starts a new named section
//
// Blank lines are ignored. The line number within the file (1-based, counting
// every physical line, including blank, comment and section-directive lines)
// is used as the token's source line.
package tokfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
	"github.com/scriptlang/cscompiler/tokstream"
)

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var nameToSym = buildNameToSym()

func buildNameToSym() map[string]token.Symbol {
	m := make(map[string]token.Symbol)
	for sym := token.Symbol(1); sym < token.MaxPredefined; sym++ {
		if name := token.PredeclaredName(sym); name != "" {
			m[name] = sym
		}
	}
	return m
}

// Parse reads a tokfile-formatted stream, interning identifiers into syms,
// and returns a ready-to-run tokstream.Slice.
func Parse(r io.Reader, syms *symtab.Table) (*tokstream.Slice, error) {
	return ParseInto(tokstream.NewSlice(), r, "main", syms)
}

// ParseFiles parses each named tokfile in order into one shared Slice,
// defaulting each file's initial section to its base name so diagnostics
// can tell which input file a line number belongs to (spec §6 "Section").
func ParseFiles(paths []string, syms *symtab.Table) (*tokstream.Slice, error) {
	s := tokstream.NewSlice()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		_, err = ParseInto(s, f, baseName(path), syms)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ParseInto parses r's tokens, appending them onto the end of s, starting in
// the given default section (a `@section` directive inside r overrides it
// for the remainder of that file). It returns s.
func ParseInto(s *tokstream.Slice, r io.Reader, defaultSection string, syms *symtab.Table) (*tokstream.Slice, error) {
	section := defaultSection
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "@") {
			section = strings.TrimSpace(line[1:])
			continue
		}

		fields := strings.SplitN(line, " ", 2)
		kw := fields[0]
		switch kw {
		case "ident":
			if len(fields) != 2 {
				return nil, fmt.Errorf("tokfile:%d: ident requires a name", lineNo)
			}
			sym := syms.FindOrAdd(strings.TrimSpace(fields[1]))
			s.PushSection(sym, section, lineNo)
		case "int":
			if len(fields) != 2 {
				return nil, fmt.Errorf("tokfile:%d: int requires a value", lineNo)
			}
			v, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 0, 32)
			if err != nil {
				return nil, fmt.Errorf("tokfile:%d: %w", lineNo, err)
			}
			s.PushInt(int32(v), lineNo)
		case "float":
			if len(fields) != 2 {
				return nil, fmt.Errorf("tokfile:%d: float requires a value", lineNo)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 32)
			if err != nil {
				return nil, fmt.Errorf("tokfile:%d: %w", lineNo, err)
			}
			s.PushFloat(float32(v), lineNo)
		case "string":
			if len(fields) != 2 {
				return nil, fmt.Errorf("tokfile:%d: string requires a value", lineNo)
			}
			s.PushString(fields[1], lineNo)
		default:
			sym, ok := nameToSym[kw]
			if !ok {
				return nil, fmt.Errorf("tokfile:%d: unrecognized token %q", lineNo, kw)
			}
			s.PushSection(sym, section, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dump writes tok back out in the tokfile format, the `tokenize` CLI
// command's output — a round-trippable listing rather than raw scanner
// output, since there is no scanner to invoke (spec §1).
func Dump(w io.Writer, toks *tokstream.Slice, syms *symtab.Table) {
	lastSection := ""
	for i := 0; i < toks.Length(); i++ {
		toks.SetCursor(i)
		sym := toks.PeekNext()
		section, _ := toks.Position(i)
		if section != lastSection {
			fmt.Fprintf(w, "@%s\n", section)
			lastSection = section
		}
		switch sym {
		case token.SymIntLit:
			fmt.Fprintf(w, "int %d\n", toks.IntLiteral(i))
		case token.SymFloatLit:
			fmt.Fprintf(w, "float %g\n", toks.FloatLiteral(i))
		case token.SymStringLit:
			fmt.Fprintf(w, "string %s\n", toks.StringLiteral(i))
		default:
			if name := token.PredeclaredName(sym); name != "" {
				fmt.Fprintf(w, "%s\n", name)
			} else {
				fmt.Fprintf(w, "ident %s\n", syms.GetName(sym))
			}
		}
	}
}
