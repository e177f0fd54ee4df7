package compiler

import (
	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
)

// StringBufferLength bounds an old-style (non-managed) character array copy:
// a copy stops at the first NUL or after StringBufferLength-1 bytes,
// whichever comes first, and always NUL-terminates the destination
// (SPEC_FULL.md supplemented feature #3, grounded on original_source's fixed
// STRINGBUFFER_LENGTH).
const StringBufferLength = 200

var assignOps = map[token.Symbol]bool{
	token.SymAssign:     true,
	token.SymPlusEq:     true,
	token.SymMinusEq:    true,
	token.SymStarEq:     true,
	token.SymSlashEq:    true,
	token.SymPlusPlus:   true,
	token.SymMinusMinus: true,
}

// findAssignOp scans [start, end) at outer depth 0 for an assignment,
// compound-assignment, or increment/decrement operator (spec §4.7
// "Assignment sink").
func (c *Compiler) findAssignOp(start, end int) (idx int, op token.Symbol, found bool) {
	depth := 0
	for i := start; i < end; i++ {
		s := c.symAt(i)
		switch {
		case bracketOpen[s]:
			depth++
			continue
		case bracketClose[s]:
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		if assignOps[s] {
			return i, s, true
		}
	}
	return 0, 0, false
}

// parseExprStatement parses one statement-level expression terminated by one
// of stops: either an assignment sink or a bare expression (ordinarily a
// function call whose value is discarded).
func (c *Compiler) parseExprStatement(stops ...token.Symbol) error {
	start := c.toks.GetCursor()
	end := c.spanEnd(start, stops...)
	if start >= end {
		return nil
	}
	opIdx, op, found := c.findAssignOp(start, end)
	if !found {
		c.toks.SetCursor(start)
		return c.parseExprSpan(start, end)
	}
	return c.parseAssignment(start, opIdx, op, end)
}

// parseAssignment implements spec §4.7's assignment sink: the right-hand
// side is always computed into AX first (for a compound op, by first reading
// the current left-hand value and combining it with the right-hand side),
// then the left-hand side is re-parsed in write mode and the value stored.
func (c *Compiler) parseAssignment(lhsStart, opIdx int, op token.Symbol, end int) error {
	line := c.curLine()
	rhsStart := opIdx + 1

	var lhsVT token.Symbol
	if op == token.SymAssign {
		if err := c.parseExprSpan(rhsStart, end); err != nil {
			return err
		}
	} else {
		c.toks.SetCursor(lhsStart)
		if err := c.parseAccessSpan(lhsStart, opIdx); err != nil {
			return err
		}
		lhsVT = c.axVartype
		if !c.isPreAnalyze() {
			c.em.WriteCmd(emitter.PUSHREG)
		}

		intSym, _ := c.syms.Find("int")
		if op == token.SymPlusPlus || op == token.SymMinusMinus {
			if !c.isPreAnalyze() {
				c.em.WriteCmd(emitter.LITTOREG, 1)
			}
			c.axVartype = intSym
		} else if err := c.parseExprSpan(rhsStart, end); err != nil {
			return err
		}
		rhsVT := c.axVartype

		if !c.isPreAnalyze() {
			c.em.WriteCmd(emitter.POPREG)
			arith := token.SymPlus
			switch op {
			case token.SymMinusEq, token.SymMinusMinus:
				arith = token.SymMinus
			case token.SymStarEq:
				arith = token.SymStar
			case token.SymSlashEq:
				arith = token.SymSlash
			}
			opcode, err := c.selectBinaryOpcode(arith, lhsVT, rhsVT)
			if err != nil {
				return err
			}
			c.em.WriteCmd(opcode)
		}
		c.axVartype = lhsVT
	}
	rhsFinalVT := c.axVartype

	// The left-hand side evaluation might clobber AX unless it is a plain
	// local/global or a direct chain of struct-member accesses on one (spec
	// §4.7); conservatively shelter AX whenever the chain indexes an array
	// or calls anything.
	clobbers := accessMayClobberAX(c, lhsStart, opIdx)
	if clobbers && !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.PUSHREG)
	}

	c.toks.SetCursor(lhsStart)
	c.pendingAssign = true
	writeErr := c.parseAccess(opIdx)
	c.pendingAssign = false
	if writeErr != nil {
		return writeErr
	}
	writeVT := c.axVartype
	writeLoc := c.axLoc

	if clobbers && !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.POPREG)
	}

	if writeLoc != AttributeLocation && c.syms.IsVartypeMismatch(rhsFinalVT, writeVT, true) {
		return c.errorf(diag.Type, line, "cannot assign incompatible type")
	}

	if c.isPreAnalyze() {
		return nil
	}

	if writeLoc == AttributeLocation {
		return c.emitAttributeSet(writeVT)
	}

	if c.opts.OldStrings && isOldStyleCharArray(c.syms, writeVT) && isOldStyleCharArray(c.syms, rhsFinalVT) {
		c.emitBoundedStringCopy()
		return nil
	}

	ss := c.syms.StringStruct()
	if isStringStructPtr(c.syms, ss, writeVT) && isOldStyleConstString(c.syms, rhsFinalVT) {
		c.em.WriteCmd(emitter.CREATESTRING)
	}
	c.emitStore(writeVT)
	return nil
}

// accessMayClobberAX reports whether the access-chain span [start, end)
// contains anything beyond a plain identifier/struct-member chain: an array
// index or a function call, either of which uses AX/BX as scratch space
// while computing the chain.
func accessMayClobberAX(c *Compiler, start, end int) bool {
	for i := start; i < end; i++ {
		switch c.symAt(i) {
		case token.SymLBrack, token.SymLParen:
			return true
		}
	}
	return false
}

// isOldStyleCharArray reports whether vt is a fixed-size array of char, the
// only shape the old-style bounded string copy applies to.
func isOldStyleCharArray(syms *symtab.Table, vt token.Symbol) bool {
	if !syms.IsArray(vt) {
		return false
	}
	return syms.GetName(syms.BaseVartype(vt)) == "char"
}

// emitStore writes AX through MAR, choosing the opcode by size/managed-ness
// (the write-side mirror of readMAR).
func (c *Compiler) emitStore(vt token.Symbol) {
	switch {
	case c.syms.IsDynpointer(vt), c.syms.IsDynarray(vt):
		c.em.WriteCmd(emitter.MEMWRITEPTR)
	case c.syms.GetSize(vt) == 1:
		c.em.WriteCmd(emitter.MEMWRITEB)
	case c.syms.GetSize(vt) == 2:
		c.em.WriteCmd(emitter.MEMWRITEW)
	default:
		c.em.WriteCmd(emitter.MEMWRITE)
	}
}

// emitAttributeSet compiles a call to a struct attribute's setter, passing
// the already-computed right-hand value as its sole argument (spec §4.7
// "assignment to an attribute compiles a setter call").
func (c *Compiler) emitAttributeSet(valueVT token.Symbol) error {
	line := c.curLine()
	setName := c.syms.FindOrAdd("set_" + c.syms.GetName(c.pendingAttrName))
	setSym := c.syms.MangleStructAndComponent(c.pendingAttrStruct, setName)
	entry, ok := c.syms.Get(setSym)
	if !ok || entry.Kind != symtab.Function {
		return c.errorf(diag.Declaration, line, "attribute %q is readonly", c.syms.GetName(c.pendingAttrName))
	}

	c.em.WriteCmd(emitter.PUSHREG) // the object pointer the getter/setter dispatch already restored
	c.em.WriteCmd(emitter.PUSHREG) // the value to set, the setter's sole parameter
	c.em.WriteCmd(emitter.LITTOREG, emitter.Cell(entry.Offset))
	codeIdx := c.em.CodeSize() - 1
	c.em.FixupPrevious(emitter.FixupCode)
	if entry.Offset == 0 && !c.calleeAlreadyResolved(setSym) {
		c.localCalls.TrackForwardDeclCall(c.em, setSym, codeIdx, c.cursor())
	}
	c.em.WriteCmd(emitter.CALL)
	c.em.WriteCmd(emitter.SUBREALSTACK, emitter.Cell(1))
	c.em.WriteCmd(emitter.POPREG)
	_ = valueVT
	return nil
}

// emitBoundedStringCopy emits a byte-copy loop from the address left in BX
// (the right-hand char array, pushed by the caller before this call) to the
// address MAR currently holds (the left-hand char array), stopping at the
// first NUL or after StringBufferLength-1 bytes, then writing a trailing NUL
// (spec §4.7 "old-style character-array assignment").
func (c *Compiler) emitBoundedStringCopy() {
	c.em.WriteCmd(emitter.LITTOREG, emitter.Cell(StringBufferLength-1))
	var top emitter.BackwardJumpDest
	var done emitter.ForwardJump
	top.Set(c.em)
	c.em.WriteCmd(emitter.MEMREADB) // *BX -> AX
	c.em.WriteCmd(emitter.JZ, 0)
	done.AddParam(c.em, -1)
	c.em.WriteCmd(emitter.MEMWRITEB) // AX -> *MAR
	c.em.WriteCmd(emitter.SUBREG)    // decrement the remaining-bytes counter
	c.em.WriteCmd(emitter.JZ, 0)
	done.AddParam(c.em, -1)
	top.WriteJump(c.em, emitter.JMP, c.curLine())
	done.Patch(c.em, c.curLine())
	c.em.WriteCmd(emitter.LITTOREG, 0)
	c.em.WriteCmd(emitter.MEMWRITEB) // trailing NUL
}
