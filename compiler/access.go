package compiler

import (
	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
)

// parseAccess parses a `first(.component)*` chain with optional `[expr]` at
// each array/dynarray level, up to end (spec §4.7).
func (c *Compiler) parseAccess(end int) error {
	if err := c.parseFirstClause(end); err != nil {
		return err
	}
	for c.toks.GetCursor() < end {
		switch c.peek() {
		case token.SymDot:
			c.next()
			if err := c.parseComponentClause(end); err != nil {
				return err
			}
		case token.SymLBrack:
			if err := c.parseArrayIndex(end); err != nil {
				return err
			}
		default:
			return c.errorf(diag.Syntax, c.curLine(), "unexpected token in access chain")
		}
	}
	return nil
}

// parseFirstClause dispatches on the leading symbol's kind (spec §4.7
// "First clause").
func (c *Compiler) parseFirstClause(end int) error {
	line := c.curLine()
	idx := c.toks.GetCursor()
	sym := c.peek()

	switch sym {
	case token.SymThis:
		c.next()
		if c.syms.This().Valid() == false {
			return c.errorf(diag.Semantic, line, "this is not valid outside a struct member function")
		}
		if !c.isPreAnalyze() {
			c.em.WriteCmd(emitter.THISBASE)
			c.em.WriteCmd(emitter.CHECKNULL)
		}
		c.axVartype = c.syms.WithModifier(c.syms.This(), "dynpointer", nil, token.NoSymbol)
		c.axLoc = MARPointsToValue
		return nil

	case token.SymNull:
		c.next()
		if !c.isPreAnalyze() {
			c.em.WriteCmd(emitter.LITTOREG, 0)
		}
		nullSym, _ := c.syms.Find("null")
		c.axVartype = nullSym
		c.axLoc = AXIsValue
		return nil

	case token.SymStringLit:
		c.next()
		if !c.isPreAnalyze() {
			c.em.WriteCmd(emitter.LITTOREG, 0)
			c.em.FixupPrevious(emitter.FixupString)
		}
		strSym, _ := c.syms.Find("string")
		c.axVartype = c.syms.WithModifier(strSym, "const", nil, token.NoSymbol)
		c.axLoc = AXIsValue
		return nil

	case token.SymIntLit:
		c.next()
		v := c.toks.IntLiteral(idx)
		if !c.isPreAnalyze() {
			c.em.WriteCmd(emitter.LITTOREG, emitter.Cell(v))
		}
		c.axVartype, _ = c.syms.Find("int")
		c.axLoc = AXIsValue
		return nil

	case token.SymFloatLit:
		c.next()
		v := c.toks.FloatLiteral(idx)
		if !c.isPreAnalyze() {
			c.em.WriteCmd(emitter.LITTOREG, emitter.Cell(int32FromFloatBits(v)))
		}
		c.axVartype, _ = c.syms.Find("float")
		c.axLoc = AXIsValue
		return nil

	case token.SymIdent, token.SymStruct: // an ordinary identifier reference
		nameSym := c.next()
		return c.parseIdentifierFirstClause(nameSym, end, line)
	}

	// Any other symbol handle is assumed to already be an interned
	// identifier produced by the scanner (kind carries the real
	// classification); fall through to identifier handling.
	nameSym := c.next()
	return c.parseIdentifierFirstClause(nameSym, end, line)
}

func (c *Compiler) parseIdentifierFirstClause(nameSym token.Symbol, end, line int) error {
	entry, ok := c.syms.Get(nameSym)
	if !ok || entry.Kind == symtab.NoType {
		return c.errorf(diag.Reference, line, "%q is not declared", c.syms.GetName(nameSym))
	}

	if entry.Kind == symtab.Vartype || entry.Kind == symtab.UndefinedStruct {
		// Static access: `Vartype::member` or `Vartype.member` naming a
		// namespace rather than a value; let the subsequent-clause loop
		// resolve the mangled name.
		c.axVartype = nameSym
		c.axLoc = AXIsValue
		return nil
	}

	if entry.Kind == symtab.Function {
		return c.parseFunctionCall(nameSym, entry, end)
	}

	if entry.Kind == symtab.Constant {
		if !c.isPreAnalyze() {
			c.em.WriteCmd(emitter.LITTOREG, emitter.Cell(entry.Offset))
		}
		c.axVartype = entry.Vartype
		c.axLoc = AXIsValue
		return nil
	}

	// A plain variable: configure the MAR accumulator (global, local, or
	// import), deferring the actual MAR load until an array index or
	// assignment needs it (spec §4.7 "global / local / import var").
	c.axVartype = entry.Vartype
	c.axScope = entry.Scope
	c.axLoc = MARPointsToValue
	if !c.isPreAnalyze() {
		switch {
		case entry.Qualifiers.Has(symtab.QImport):
			c.em.WriteCmd(emitter.LOADSPOFFS, 0)
			c.em.FixupPrevious(emitter.FixupImport)
		case entry.Kind == symtab.GlobalVar:
			c.em.WriteCmd(emitter.LOADSPOFFS, emitter.Cell(entry.Offset))
			c.em.FixupPrevious(emitter.FixupGlobalData)
		default:
			c.em.WriteCmd(emitter.LOADSPOFFS, emitter.Cell(c.em.OffsetToLocalVarBlock-entry.Offset))
		}
		if !(c.pendingAssign && c.toks.GetCursor() >= end) {
			c.readMAR(entry.Vartype)
		}
	}
	return nil
}

// readMAR loads the value MAR points to into AX, choosing the opcode by
// size/managed-ness.
func (c *Compiler) readMAR(vt token.Symbol) {
	switch {
	case c.syms.IsDynpointer(vt), c.syms.IsDynarray(vt):
		c.em.WriteCmd(emitter.MEMREADPTR)
	case c.syms.GetSize(vt) == 1:
		c.em.WriteCmd(emitter.MEMREADB)
	case c.syms.GetSize(vt) == 2:
		c.em.WriteCmd(emitter.MEMREADW)
	default:
		c.em.WriteCmd(emitter.MEMREAD)
	}
	c.axLoc = AXIsValue
}

// parseComponentClause handles the clause following a `.` (spec §4.7
// "Subsequent clause").
func (c *Compiler) parseComponentClause(end int) error {
	line := c.curLine()
	if !c.syms.IsStruct(c.axVartype) {
		return c.errorf(diag.Type, line, "left-hand side is not a struct")
	}
	structSym := c.syms.BaseVartype(c.axVartype)
	if c.syms.IsDynpointer(c.axVartype) && !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.CHECKNULLREG)
	}

	compSym := c.next()
	mangled := c.syms.MangleStructAndComponent(structSym, compSym)
	entry, ok := c.syms.Get(mangled)
	if !ok || entry.Kind == symtab.NoType {
		return c.errorf(diag.Reference, line, "%q has no member %q", c.syms.GetName(structSym), c.syms.GetName(compSym))
	}

	switch entry.Kind {
	case symtab.StructComponent:
		c.axVartype = entry.Vartype
		c.axLoc = MARPointsToValue
		if !c.isPreAnalyze() {
			if entry.Offset != 0 {
				c.em.WriteCmd(emitter.LOADSPOFFS, emitter.Cell(entry.Offset))
			}
			if !(c.pendingAssign && c.toks.GetCursor() >= end) {
				c.readMAR(entry.Vartype)
			}
		}
		return nil
	case symtab.Function:
		if _, err := c.emitCallProtocol(mangled, entry, end, true); err != nil {
			return err
		}
		if c.syms.IsDynarray(c.axVartype) && c.peek() == token.SymLBrack {
			return nil // caller's loop continues into array indexing
		}
		return nil
	case symtab.Attribute:
		atEnd := c.toks.GetCursor() >= end
		if atEnd && c.pendingAssign {
			c.axLoc = AttributeLocation
			c.pendingAttrStruct, c.pendingAttrName = structSym, compSym
			return nil
		}
		getName := c.syms.FindOrAdd("get_" + c.syms.GetName(compSym))
		getSym := c.syms.MangleStructAndComponent(structSym, getName)
		getEntry, _ := c.syms.Get(getSym)
		_, err := c.emitCallProtocol(getSym, getEntry, end, true)
		return err
	}
	return c.errorf(diag.Internal, line, "unexpected component kind")
}

// parseArrayIndex implements classic-array/dynarray indexing (spec §4.7
// "Array indexing").
func (c *Compiler) parseArrayIndex(end int) error {
	line := c.curLine()
	isDyn := c.syms.IsDynarray(c.axVartype)
	isArr := c.syms.IsArray(c.axVartype)
	if !isDyn && !isArr {
		return c.errorf(diag.Type, line, "indexing a non-array value")
	}

	elemVT := c.axVartype
	if isDyn {
		elemVT = c.syms.ElemVartype(c.axVartype)
		if !c.isPreAnalyze() {
			c.em.WriteCmd(emitter.CHECKNULLREG)
		}
	} else {
		elemVT = c.syms.BaseVartype(c.axVartype)
	}
	stride := c.syms.GetSize(elemVT)

	c.next() // `[`
	idxStart := c.toks.GetCursor()
	idxEnd := c.spanEnd(idxStart, token.SymRBrack)

	if !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.PUSHREG)
	}
	if err := c.parseExprSpan(idxStart, idxEnd); err != nil {
		return err
	}
	c.toks.SetCursor(idxEnd)
	c.next() // `]`

	if !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.POPREG) // restore MAR-bearing AX as BX, index now in AX
		if isDyn {
			c.em.WriteCmd(emitter.DYNAMICBOUNDS)
		} else {
			c.em.WriteCmd(emitter.CHECKBOUNDS, emitter.Cell(c.syms.NumArrayElements(c.axVartype)))
		}
		if stride > 1 {
			c.em.WriteCmd(emitter.LITTOREG, emitter.Cell(stride))
			c.em.WriteCmd(emitter.MULREG)
		}
		c.em.WriteCmd(emitter.ADDREG)
		if !(c.pendingAssign && c.toks.GetCursor() >= end) {
			c.readMAR(elemVT)
		}
	}
	c.axVartype = elemVT
	c.axLoc = MARPointsToValue
	return nil
}

// --- function calls (spec §4.7 "Function calls") ---

func (c *Compiler) parseFunctionCall(nameSym token.Symbol, entry symtab.Entry, end int) error {
	_, err := c.emitCallProtocol(nameSym, entry, end, false)
	return err
}

// emitCallProtocol counts, defaults, and pushes arguments, then emits the
// call sequence (local or import), registering a forward-call patch if the
// callee is not yet resolved (spec §4.7 "Function calls").
func (c *Compiler) emitCallProtocol(funcSym token.Symbol, entry symtab.Entry, end int, isMethod bool) (token.Symbol, error) {
	line := c.curLine()
	if err := c.expect(token.SymLParen, "("); err != nil {
		return token.NoSymbol, err
	}
	argStart := c.toks.GetCursor()
	argListEnd := c.spanEnd(argStart, token.SymRParen)
	argSpans := c.splitArgs(argStart, argListEnd)
	c.toks.SetCursor(argListEnd)
	c.next() // `)`

	declared := len(entry.FuncParamVartypes) - 1
	if len(argSpans) == 1 && argSpans[0][0] == argSpans[0][1] {
		argSpans = nil // no-argument call
	}
	if len(argSpans) > declared && !entry.Varargs {
		return token.NoSymbol, c.errorf(diag.Semantic, line, "too many arguments to %q", entry.Name)
	}
	if len(argSpans) < declared {
		for i := len(argSpans); i < declared; i++ {
			if entry.FuncParamDefaults[i+1].Kind == symtab.DefaultNone {
				return token.NoSymbol, c.errorf(diag.Semantic, line, "missing required argument %d to %q", i, entry.Name)
			}
		}
	}

	if c.isPreAnalyze() {
		c.axVartype = entry.Vartype
		c.axLoc = AXIsValue
		return funcSym, nil
	}

	if isMethod {
		c.em.WriteCmd(emitter.PUSHREG) // preserve the object-pointer register
		c.em.WriteCmd(emitter.PUSHREG) // preserve MAR across argument evaluation
	}

	for i := len(argSpans) - 1; i >= 0; i-- {
		span := argSpans[i]
		if err := c.parseExprSpan(span[0], span[1]); err != nil {
			return token.NoSymbol, err
		}
		if entry.Qualifiers.Has(symtab.QImport) {
			c.em.WriteCmd(emitter.PUSHREAL)
		} else {
			c.em.WriteCmd(emitter.PUSHREG)
		}
	}
	for i := len(argSpans); i < declared; i++ {
		def := entry.FuncParamDefaults[i+1]
		switch def.Kind {
		case symtab.DefaultInt:
			c.em.WriteCmd(emitter.LITTOREG, emitter.Cell(def.Int))
		case symtab.DefaultFloat:
			c.em.WriteCmd(emitter.LITTOREG, emitter.Cell(int32FromFloatBits(def.Float)))
		case symtab.DefaultDyn:
			c.em.WriteCmd(emitter.LITTOREG, 0)
		}
		c.em.WriteCmd(emitter.PUSHREG)
	}

	numArgs := declared
	if entry.Varargs {
		numArgs = len(argSpans)
	}

	if isMethod {
		c.em.WriteCmd(emitter.POPREG) // restore MAR (offset accounts for numArgs cells already pushed)
	}

	if entry.Qualifiers.Has(symtab.QImport) {
		c.em.WriteCmd(emitter.NUMFUNCARGS, emitter.Cell(numArgs))
		c.em.WriteCmd(emitter.LITTOREG, emitter.Cell(entry.Offset))
		c.em.FixupPrevious(emitter.FixupImport)
		c.em.WriteCmd(emitter.CALLEXT)
		c.em.WriteCmd(emitter.SUBREALSTACK, emitter.Cell(numArgs))
	} else {
		c.em.WriteCmd(emitter.LITTOREG, emitter.Cell(entry.Offset))
		codeIdx := len(c.em.Code) - 1
		c.em.FixupPrevious(emitter.FixupCode)
		resolved := entry.Offset != 0 || c.calleeAlreadyResolved(funcSym)
		if !resolved {
			c.localCalls.TrackForwardDeclCall(c.em, funcSym, codeIdx, c.cursor())
		}
		c.em.WriteCmd(emitter.CALL)
		c.em.WriteCmd(emitter.SUBREALSTACK, emitter.Cell(numArgs))
	}

	if isMethod {
		c.em.WriteCmd(emitter.POPREG) // restore the object-pointer register
	}

	c.axVartype = entry.Vartype
	c.axLoc = AXIsValue
	return funcSym, nil
}

func (c *Compiler) calleeAlreadyResolved(funcSym token.Symbol) bool {
	if header, ok := c.headers[funcSym]; ok {
		return header.Offset != 0
	}
	return false
}

// splitArgs splits [start, end) on top-level commas.
func (c *Compiler) splitArgs(start, end int) [][2]int {
	var spans [][2]int
	cur := start
	for cur <= end {
		stop := c.spanEnd(cur, token.SymComma)
		if stop > end {
			stop = end
		}
		spans = append(spans, [2]int{cur, stop})
		if stop >= end {
			break
		}
		cur = stop + 1
	}
	return spans
}

func int32FromFloatBits(f float32) int32 {
	return int32(floatBits(f))
}
