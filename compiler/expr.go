package compiler

import (
	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
)

// symAt peeks the symbol at an absolute stream index without disturbing the
// compiler's current cursor.
func (c *Compiler) symAt(idx int) token.Symbol {
	saved := c.toks.GetCursor()
	c.toks.SetCursor(idx)
	sym := c.toks.PeekNext()
	c.toks.SetCursor(saved)
	return sym
}

var bracketOpen = map[token.Symbol]bool{token.SymLParen: true, token.SymLBrack: true, token.SymLBrace: true}
var bracketClose = map[token.Symbol]bool{token.SymRParen: true, token.SymRBrack: true, token.SymRBrace: true}

// spanEnd scans forward from start, skipping the contents of balanced
// brackets, and returns the index of the first stop symbol found at outer
// nesting depth 0 (spec §4.6 "Scan the span skipping contents of balanced
// () / [] / {}").
func (c *Compiler) spanEnd(start int, stops ...token.Symbol) int {
	depth := 0
	idx := start
	for {
		sym := c.symAt(idx)
		if depth == 0 {
			for _, s := range stops {
				if sym == s {
					return idx
				}
			}
		}
		if bracketOpen[sym] {
			depth++
		} else if bracketClose[sym] {
			depth--
		}
		idx++
	}
}

// findSplit locates the least-binding operator in [start, end) at outer
// nesting depth 0 (spec §4.6 driver algorithm).
func (c *Compiler) findSplit(start, end int) (idx int, sym token.Symbol, isUnary, found bool) {
	depth := 0
	bestPriority := -1
	bestIdx := -1
	var bestSym token.Symbol
	bestUnary := false
	prevOperand := false

	for i := start; i < end; i++ {
		s := c.symAt(i)
		switch {
		case bracketOpen[s]:
			depth++
			prevOperand = false
			continue
		case bracketClose[s]:
			depth--
			prevOperand = true
			continue
		}
		if depth != 0 {
			continue
		}
		if s == token.SymQuestion {
			return i, s, false, true
		}
		if !token.IsOperator(s) {
			prevOperand = true
			continue
		}
		unary := token.IsUnaryOnly(s) || (token.CanBeUnary(s) && !prevOperand)
		if unary {
			if bestIdx == -1 {
				bestIdx, bestSym, bestUnary = i, s, true
			}
		} else {
			p, _ := token.BinaryPriority(s)
			if p >= bestPriority {
				bestPriority, bestIdx, bestSym, bestUnary = p, i, s, false
			}
		}
		prevOperand = false
	}
	if bestIdx == -1 {
		return 0, 0, false, false
	}
	if bestUnary && bestIdx != start {
		// unary operators chain prefix: split at position 0 instead.
		return start, bestSym, true, true
	}
	return bestIdx, bestSym, bestUnary, true
}

// parseExpr parses the expression span starting at the current cursor and
// ending at the first of stops found at outer nesting depth 0, leaving the
// cursor positioned at the stop symbol (not consumed). Result is left in AX
// or pointed to by MAR, per c.axLoc.
func (c *Compiler) parseExpr(stops ...token.Symbol) error {
	start := c.toks.GetCursor()
	end := c.spanEnd(start, stops...)
	return c.parseExprSpan(start, end)
}

func (c *Compiler) parseExprSpan(start, end int) error {
	if start >= end {
		return c.errorf(diag.Syntax, c.curLine(), "expected an expression")
	}
	c.toks.SetCursor(start)

	splitIdx, sym, isUnary, found := c.findSplit(start, end)
	if !found {
		return c.parseAccessSpan(start, end)
	}
	if sym == token.SymQuestion {
		return c.parseTernary(start, splitIdx, end)
	}
	if isUnary {
		return c.parseUnary(sym, splitIdx, end)
	}
	return c.parseBinary(sym, start, splitIdx, end)
}

// parseAccessSpan handles a parenthesized sub-expression or delegates to the
// access/data engine for an identifier/literal/call/struct-cascade (spec
// §4.6 "descend into sub-expressions").
func (c *Compiler) parseAccessSpan(start, end int) error {
	if c.symAt(start) == token.SymLParen && c.spanEnd(start+1, token.SymRParen) == end-1 {
		c.toks.SetCursor(start)
		c.next() // `(`
		if err := c.parseExprSpan(start+1, end-1); err != nil {
			return err
		}
		c.toks.SetCursor(end) // skip the matching `)`
		c.next()
		return nil
	}
	return c.parseAccess(end)
}

func (c *Compiler) parseUnary(op token.Symbol, opIdx, end int) error {
	c.toks.SetCursor(opIdx)
	line := c.curLine()
	c.next() // consume the operator

	if op == token.SymNew {
		return c.parseNew(end)
	}

	if err := c.parseExprSpan(opIdx+1, end); err != nil {
		return err
	}
	if c.isPreAnalyze() {
		return nil
	}
	switch op {
	case token.SymBang:
		c.em.WriteCmd(emitter.NOTREG)
	case token.SymMinus:
		if !c.syms.IsAnyInteger(c.axVartype) && c.syms.GetName(c.syms.BaseVartype(c.axVartype)) != "float" {
			return c.errorf(diag.Type, line, "unary minus requires a numeric operand")
		}
		if c.syms.GetName(c.syms.BaseVartype(c.axVartype)) == "float" {
			c.em.WriteCmd(emitter.LITTOREG, 0)
			c.em.WriteCmd(emitter.FSUBREG)
		} else {
			c.em.WriteCmd(emitter.LITTOREG, 0)
			c.em.WriteCmd(emitter.SUBREG)
		}
	}
	return nil
}

// parseNew handles `new T` / `new T[n]` (spec glossary "Dynpointer" /
// "Dynarray"); the result is a freshly allocated managed object or array.
func (c *Compiler) parseNew(end int) error {
	line := c.curLine()
	vtSym := c.next()
	kind := c.syms.GetKind(vtSym)
	if kind != symtab.Vartype && kind != symtab.UndefinedStruct {
		return c.errorf(diag.Type, line, "%q is not a vartype", c.syms.GetName(vtSym))
	}

	if c.peek() == token.SymLBrack {
		c.next()
		if err := c.parseExpr(token.SymRBrack); err != nil {
			return err
		}
		c.next() // `]`
		if !c.isPreAnalyze() {
			c.em.WriteCmd(emitter.NEWARRAY, emitter.Cell(c.syms.GetSize(vtSym)))
		}
		c.axVartype = c.syms.WithModifier(vtSym, "dynarray", nil, vtSym)
		c.axLoc = AXIsValue
		return nil
	}

	if !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.NEWUSEROBJECT, emitter.Cell(c.syms.GetSize(vtSym)))
	}
	c.axVartype = c.syms.WithModifier(vtSym, "dynpointer", nil, token.NoSymbol)
	c.axLoc = AXIsValue
	return nil
}

func (c *Compiler) parseBinary(op token.Symbol, start, opIdx, end int) error {
	if err := c.parseExprSpan(start, opIdx); err != nil {
		return err
	}
	lhsVT := c.axVartype

	var shortCircuit emitter.ForwardJump
	if !c.isPreAnalyze() && (op == token.SymAmpAmp || op == token.SymPipePipe) {
		if op == token.SymAmpAmp {
			c.em.WriteCmd(emitter.JZ, 0)
		} else {
			c.em.WriteCmd(emitter.JNZ, 0)
		}
		shortCircuit.AddParam(c.em, -1)
	} else if !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.PUSHREG)
	}

	if err := c.parseExprSpan(opIdx+1, end); err != nil {
		return err
	}
	rhsVT := c.axVartype

	if op == token.SymAmpAmp || op == token.SymPipePipe {
		if !c.isPreAnalyze() {
			shortCircuit.Patch(c.em, c.curLine())
		}
		c.axVartype = boolVartype(c)
		return nil
	}

	if !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.POPREG) // pop LHS into BX (conceptually: swap roles)
		op2, err := c.selectBinaryOpcode(op, lhsVT, rhsVT)
		if err != nil {
			return err
		}
		c.em.WriteCmd(op2)
	}
	c.axVartype = c.resultVartype(op, lhsVT, rhsVT)
	c.axLoc = AXIsValue
	return nil
}

// selectBinaryOpcode promotes a generic operator to the opcode matching its
// operand types (spec §4.6 "Operator opcode selection").
func (c *Compiler) selectBinaryOpcode(op token.Symbol, lhs, rhs token.Symbol) (emitter.Opcode, error) {
	isFloat := c.syms.GetName(c.syms.BaseVartype(lhs)) == "float" || c.syms.GetName(c.syms.BaseVartype(rhs)) == "float"
	isString := c.syms.GetName(c.syms.BaseVartype(lhs)) == "string" || c.syms.GetName(c.syms.BaseVartype(rhs)) == "string"
	isManaged := c.syms.IsManaged(lhs) || c.syms.IsManaged(rhs)

	switch op {
	case token.SymPlus:
		if isFloat {
			return emitter.FADDREG, nil
		}
		return emitter.ADDREG, nil
	case token.SymMinus:
		if isFloat {
			return emitter.FSUBREG, nil
		}
		return emitter.SUBREG, nil
	case token.SymStar:
		if isFloat {
			return emitter.FMULREG, nil
		}
		return emitter.MULREG, nil
	case token.SymSlash:
		if isFloat {
			return emitter.FDIVREG, nil
		}
		return emitter.DIVREG, nil
	case token.SymEqEq:
		if isString {
			return emitter.STRINGSEQUAL, nil
		}
		if isFloat {
			return emitter.FISEQUAL, nil
		}
		return emitter.ISEQUAL, nil
	case token.SymNotEq:
		if isString {
			return emitter.STRINGSNOTEQ, nil
		}
		if isFloat {
			return emitter.FNOTEQUAL, nil
		}
		return emitter.NOTEQUAL, nil
	case token.SymLt:
		if isManaged {
			return 0, c.errorf(diag.Type, c.curLine(), "managed pointers only admit equality comparison")
		}
		if isFloat {
			return emitter.FLESSTHAN, nil
		}
		return emitter.LESSTHAN, nil
	case token.SymLe:
		if isManaged {
			return 0, c.errorf(diag.Type, c.curLine(), "managed pointers only admit equality comparison")
		}
		if isFloat {
			return emitter.FLTE, nil
		}
		return emitter.LTE, nil
	case token.SymGt:
		if isManaged {
			return 0, c.errorf(diag.Type, c.curLine(), "managed pointers only admit equality comparison")
		}
		if isFloat {
			return emitter.FGREATER, nil
		}
		return emitter.GREATER, nil
	case token.SymGe:
		if isManaged {
			return 0, c.errorf(diag.Type, c.curLine(), "managed pointers only admit equality comparison")
		}
		if isFloat {
			return emitter.FGTE, nil
		}
		return emitter.GTE, nil
	case token.SymAmp:
		return emitter.AND, nil
	case token.SymPipe:
		return emitter.OR, nil
	}
	return 0, c.errorf(diag.Internal, c.curLine(), "unhandled binary operator")
}

func (c *Compiler) resultVartype(op token.Symbol, lhs, rhs token.Symbol) token.Symbol {
	switch op {
	case token.SymEqEq, token.SymNotEq, token.SymLt, token.SymLe, token.SymGt, token.SymGe:
		return boolVartype(c)
	}
	if c.syms.GetName(c.syms.BaseVartype(lhs)) == "float" || c.syms.GetName(c.syms.BaseVartype(rhs)) == "float" {
		return lhs
	}
	return lhs
}

func boolVartype(c *Compiler) token.Symbol {
	sym, _ := c.syms.Find("int")
	return sym
}

// isOldStyleConstString reports whether vt is the vartype a string literal
// evaluates to: the scalar "string" base vartype with a const modifier, as
// opposed to a dynpointer to the designated string-struct type.
func isOldStyleConstString(syms *symtab.Table, vt token.Symbol) bool {
	return syms.GetName(syms.BaseVartype(vt)) == "string" && syms.IsConst(vt) && !syms.IsDynpointer(vt)
}

// isStringStructPtr reports whether vt is a dynpointer to the designated
// managed string-struct type ss (spec §3 data model, §4.6 compatibility).
func isStringStructPtr(syms *symtab.Table, ss, vt token.Symbol) bool {
	return ss.Valid() && syms.IsDynpointer(vt) && syms.BaseVartype(vt) == ss
}

// parseTernary implements `cond ? a : b` (spec §4.6 "Ternary").
func (c *Compiler) parseTernary(start, qIdx, end int) error {
	colonIdx := c.spanEnd(qIdx+1, token.SymColon)
	trueStart, trueEnd := qIdx+1, colonIdx
	falseStart, falseEnd := colonIdx+1, end

	if err := c.parseExprSpan(start, qIdx); err != nil {
		return err
	}

	var toFalse, toEnd emitter.ForwardJump
	if !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.JZ, 0)
		toFalse.AddParam(c.em, -1)
	}

	if trueEnd <= trueStart {
		// empty middle arm: the condition value itself is used when non-zero.
	} else if err := c.parseExprSpan(trueStart, trueEnd); err != nil {
		return err
	}
	trueVT := c.axVartype

	if !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.JMP, 0)
		toEnd.AddParam(c.em, -1)
		toFalse.Patch(c.em, c.curLine())
	}

	if err := c.parseExprSpan(falseStart, falseEnd); err != nil {
		return err
	}
	falseVT := c.axVartype

	if !c.isPreAnalyze() {
		ss := c.syms.StringStruct()
		if isStringStructPtr(c.syms, ss, trueVT) && isOldStyleConstString(c.syms, falseVT) {
			c.em.WriteCmd(emitter.CREATESTRING)
		}
		toEnd.Patch(c.em, c.curLine())
	}

	if c.syms.IsVartypeMismatch(trueVT, falseVT, false) {
		return c.errorf(diag.Type, c.curLine(), "ternary arms have incompatible types")
	}
	if c.syms.IsVartypeMismatch(trueVT, falseVT, true) {
		c.axVartype = falseVT
	} else {
		c.axVartype = trueVT
	}
	c.axLoc = AXIsValue
	return nil
}
