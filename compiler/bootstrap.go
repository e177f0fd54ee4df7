package compiler

import (
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
)

// vartypeSizes gives the byte size of each predeclared base vartype (spec
// §6 "Cell size & alignment"): one cell holds int/long/float, string is the
// old-style single-character base unit of a character array.
var vartypeSizes = map[token.Symbol]int{
	token.SymVoid:   0,
	token.SymInt:    4,
	token.SymShort:  2,
	token.SymChar:   1,
	token.SymLong:   4,
	token.SymByte:   1,
	token.SymFloat:  4,
	token.SymString: 1,
}

var operatorPriority = map[token.Symbol]int{}

func init() {
	for sym, p := range map[token.Symbol]int{
		token.SymPipePipe: 15, token.SymAmpAmp: 14, token.SymPipe: 13, token.SymCaret: 12,
		token.SymAmp: 11, token.SymEqEq: 10, token.SymNotEq: 10, token.SymLt: 9, token.SymLe: 9,
		token.SymGt: 9, token.SymGe: 9, token.SymPlus: 8, token.SymMinus: 8, token.SymStar: 7,
		token.SymSlash: 7, token.SymPercent: 7,
	} {
		operatorPriority[sym] = p
	}
}

// Bootstrap installs every predeclared symbol (keywords, punctuation,
// operators, base vartypes) into a fresh symtab.Table at its fixed handle,
// the way the scanner's own keyword table is expected to line up with the
// symbol table before any token stream is read (spec §4.3 "Maintains
// keyword entries at fixed low indices").
func Bootstrap(syms *symtab.Table) {
	for sym := token.Symbol(1); sym < token.MaxPredefined; sym++ {
		name := token.PredeclaredName(sym)
		if name == "" && vartypeSizes[sym] == 0 && sym != token.SymVoid {
			continue
		}
		entry := symtab.Entry{Name: name}
		switch {
		case token.IsQualifierKeyword(sym), isControlKeyword(sym):
			entry.Kind = symtab.Keyword
		case token.IsOperator(sym):
			entry.Kind = symtab.Operator
		case isVartypeSymbol(sym):
			entry.Kind = symtab.Vartype
			entry.Size = vartypeSizes[sym]
		default:
			entry.Kind = symtab.Keyword
		}
		syms.DefinePredeclared(sym, entry)
	}
	// reserve the rest of the predeclared range so FindOrAdd hands out
	// handles above token.MaxPredefined.
	syms.DefinePredeclared(token.MaxPredefined, symtab.Entry{})
}

func isControlKeyword(sym token.Symbol) bool {
	switch sym {
	case token.SymIf, token.SymElse, token.SymWhile, token.SymDo, token.SymFor,
		token.SymSwitch, token.SymCase, token.SymDefault, token.SymBreak, token.SymContinue,
		token.SymReturn, token.SymStruct, token.SymEnum, token.SymExtends, token.SymImport,
		token.SymExport, token.SymNew, token.SymNull, token.SymThis:
		return true
	}
	return false
}

func isVartypeSymbol(sym token.Symbol) bool {
	_, ok := vartypeSizes[sym]
	return ok
}

// OperatorPriority reports the least-binding-operator priority for a binary
// operator symbol (spec §4.6); ok is false for non-binary symbols.
func OperatorPriority(sym token.Symbol) (int, bool) {
	p, ok := operatorPriority[sym]
	return p, ok
}
