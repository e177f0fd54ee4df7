package compiler

import (
	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
)

// declContext is where a qualifier prefix is being parsed, since legality
// differs by context (spec §4.8 "Qualifier prefix").
type declContext uint8

const (
	ctxGlobal declContext = iota
	ctxStructMember
	ctxFunctionBody
	ctxParameter
)

var qualifierKeywords = map[token.Symbol]symtab.Qualifier{
	token.SymAttribute:       symtab.QAttribute,
	token.SymAutoptr:         symtab.QAutoptr,
	token.SymBuiltin:         symtab.QBuiltin,
	token.SymConst:           symtab.QConst,
	token.SymImport:          symtab.QImport,
	token.SymManaged:         symtab.QManaged,
	token.SymProtected:       symtab.QProtected,
	token.SymReadonly:        symtab.QReadonly,
	token.SymStatic:          symtab.QStatic,
	token.SymStringstruct:    symtab.QStringstruct,
	token.SymWriteprotected:  symtab.QWriteprotected,
}

// parseQualifiers consumes a run of leading qualifier keywords, returning
// the accumulated bitset.
func (c *Compiler) parseQualifiers() (symtab.Qualifier, error) {
	var quals symtab.Qualifier
	for {
		bit, ok := qualifierKeywords[c.peek()]
		if !ok {
			return quals, nil
		}
		c.next()
		quals |= bit
	}
}

// checkQualifierLegality implements the full pairwise illegal-qualifier
// table (spec §4.8, supplemented per SPEC_FULL.md item 1).
func (c *Compiler) checkQualifierLegality(quals symtab.Qualifier, ctx declContext, line int) error {
	typeLevel := symtab.QAutoptr | symtab.QBuiltin | symtab.QImport | symtab.QManaged | symtab.QStatic | symtab.QStringstruct

	if ctx == ctxFunctionBody && quals&typeLevel != 0 {
		return c.errorf(diag.Declaration, line, "type-level qualifiers are not legal on a local declaration")
	}
	if ctx == ctxStructMember {
		if quals.Has(symtab.QBuiltin) {
			return c.errorf(diag.Declaration, line, "builtin is not legal on a struct member")
		}
		if quals.Has(symtab.QStringstruct) {
			return c.errorf(diag.Declaration, line, "stringstruct is not legal on a struct member")
		}
	}
	if ctx != ctxStructMember {
		if quals.Has(symtab.QAttribute) {
			return c.errorf(diag.Declaration, line, "attribute is only legal on a struct member")
		}
		if quals.Has(symtab.QProtected) {
			return c.errorf(diag.Declaration, line, "protected is only legal on a struct member")
		}
		if quals.Has(symtab.QWriteprotected) {
			return c.errorf(diag.Declaration, line, "writeprotected is only legal on a struct member")
		}
	}

	exclusive := quals & (symtab.QProtected | symtab.QReadonly | symtab.QWriteprotected)
	if popcount(uint16(exclusive)) > 1 {
		return c.errorf(diag.Declaration, line, "at most one of protected, readonly, writeprotected is allowed")
	}

	if quals.Has(symtab.QAutoptr) && !(quals.Has(symtab.QBuiltin) && quals.Has(symtab.QManaged)) {
		return c.errorf(diag.Declaration, line, "autoptr requires builtin and managed")
	}
	if quals.Has(symtab.QStringstruct) && !quals.Has(symtab.QAutoptr) {
		return c.errorf(diag.Declaration, line, "stringstruct requires autoptr")
	}
	if quals.Has(symtab.QStringstruct) && quals.Has(symtab.QImport) {
		return c.errorf(diag.Declaration, line, "stringstruct cannot combine with import")
	}
	if quals.Has(symtab.QConst) && ctx != ctxParameter {
		return c.errorf(diag.Declaration, line, "const is only legal on a parameter")
	}
	return nil
}

func popcount(x uint16) int {
	n := 0
	for x != 0 {
		n += int(x & 1)
		x >>= 1
	}
	return n
}
