package compiler

import (
	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/nesting"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
)

// loopFrame is one entry of loopStack, carrying the jump machinery a
// break/continue inside its body resolves against (spec §4.9
// "break/continue").
type loopFrame struct {
	kind      nesting.Kind
	nestLevel int

	// backDest is the condition-recheck point a while/for continue jumps
	// back to. continueFwd is the do-while equivalent: continue there must
	// jump forward, to code not yet emitted (the trailing condition check).
	backDest    *emitter.BackwardJumpDest
	continueFwd *emitter.ForwardJump

	// stepChunkID is set by parseFor when the step expression was yanked
	// into a replayable chunk; continue replays it before jumping back.
	stepChunkID int

	breakOut emitter.ForwardJump
}

// parseFunctionBody compiles a function's statement body, having already
// registered its entry point and call-site resolution (spec §4.9 "Function
// body", called from parseFunctionDecl once a body is known to follow).
func (c *Compiler) parseFunctionBody(funcSym token.Symbol, entry symtab.Entry, extendsStruct token.Symbol, paramNames []token.Symbol) error {
	prevFn := c.fn
	c.fn = &funcState{
		sym:       funcSym,
		name:      entry.Name,
		retVT:     entry.Vartype,
		noloopchk: entry.Flags.Has(symtab.FNoLoopCheck),
	}
	defer func() { c.fn = prevFn }()

	prevThis := c.syms.This()
	if extendsStruct.Valid() && !entry.Qualifiers.Has(symtab.QStatic) {
		c.syms.SetThis(extendsStruct)
	}
	defer c.syms.SetThis(prevThis)

	if !c.isPreAnalyze() {
		c.em.OffsetToLocalVarBlock = 0
	}

	c.nest.Push(nesting.KindParameters)
	frame := c.nest.Top()
	c.declareParams(frame, entry.FuncParamVartypes, paramNames)

	if err := c.parseBlock(); err != nil {
		c.freeDynPointersInFrame(frame)
		c.nest.Pop()
		return err
	}

	if !c.isPreAnalyze() {
		c.fn.exit.Patch(c.em, c.curLine())
		c.em.WriteCmd(emitter.RET)
	}

	c.freeDynPointersInFrame(frame)
	c.nest.Pop()
	return nil
}

// declareParams binds each named parameter as a local in frame, shadowing
// whatever the name previously resolved to at file scope (spec §4.9
// "parameters are re-declared as locals when the body is compiled").
func (c *Compiler) declareParams(frame *nesting.Frame, paramVTs, paramNames []token.Symbol) {
	for i := 1; i < len(paramVTs); i++ {
		vt := paramVTs[i]
		name := paramNames[i]
		if !name.Valid() {
			continue
		}
		entry := symtab.Entry{
			Name:       c.syms.GetName(name),
			Kind:       symtab.LocalVar,
			Vartype:    vt,
			Scope:      c.nest.TopLevel(),
			DeclaredAt: c.cursor(),
		}
		entry.Size = c.syms.GetSize(vt)

		if old, ok := c.syms.Get(name); ok && old.Kind != symtab.NoType {
			frame.AddOldDefinition(name, old)
		} else {
			frame.AddOldDefinition(name, symtab.Entry{})
		}

		if !c.isPreAnalyze() {
			entry.Offset = c.em.OffsetToLocalVarBlock
			c.em.OffsetToLocalVarBlock += entry.Size
		}
		c.syms.Set(name, entry)
	}
}

// parseStatement dispatches on the leading keyword (spec §4.9).
func (c *Compiler) parseStatement() error {
	switch c.peek() {
	case token.SymLBrace:
		return c.parseBlock()
	case token.SymIf:
		return c.parseIf()
	case token.SymWhile:
		return c.parseWhile()
	case token.SymDo:
		return c.parseDoWhile()
	case token.SymFor:
		return c.parseFor()
	case token.SymSwitch:
		return c.parseSwitch()
	case token.SymBreak:
		return c.parseBreak()
	case token.SymContinue:
		return c.parseContinue()
	case token.SymReturn:
		return c.parseReturn()
	case token.SymSemi:
		c.next()
		return nil
	default:
		return c.parseDeclOrExprStatement()
	}
}

// parseBlock parses a `{ ... }` compound statement, its own nesting level
// for shadowing and dynpointer cleanup (spec §4.9 "Block").
func (c *Compiler) parseBlock() error {
	if err := c.expect(token.SymLBrace, "{"); err != nil {
		return err
	}
	c.nest.Push(nesting.KindBraces)
	frame := c.nest.Top()

	for c.peek() != token.SymRBrace {
		if err := c.parseStatement(); err != nil {
			c.freeDynPointersInFrame(frame)
			c.nest.Pop()
			return err
		}
	}
	c.next() // `}`

	c.freeDynPointersInFrame(frame)
	c.nest.Pop()
	return nil
}

// freeDynPointersInFrame zeroes every dynpointer/dynarray local declared
// directly in frame, run just before the frame is popped (spec §4.9 "a
// block's managed locals are released when its scope ends").
func (c *Compiler) freeDynPointersInFrame(frame *nesting.Frame) {
	if c.isPreAnalyze() {
		return
	}
	for sym := range frame.OldDefinitions {
		entry, ok := c.syms.Get(sym)
		if !ok || entry.Kind != symtab.LocalVar {
			continue
		}
		if c.syms.IsDynpointer(entry.Vartype) || c.syms.IsDynarray(entry.Vartype) {
			c.em.WriteCmd(emitter.LOADSPOFFS, emitter.Cell(c.em.OffsetToLocalVarBlock-entry.Offset))
			c.em.WriteCmd(emitter.MEMZEROPTR)
		}
	}
}

// freeDynPointersAboveLevel releases the managed locals of every open frame
// deeper than level, without popping those frames: a break/continue/return
// jumps out of them at runtime while the parser's view of the nesting stack
// still has them open (spec §4.9).
func (c *Compiler) freeDynPointersAboveLevel(level int) {
	if c.isPreAnalyze() {
		return
	}
	for lvl := c.nest.TopLevel(); lvl > level; lvl-- {
		if frame := c.nest.At(lvl); frame != nil {
			c.freeDynPointersInFrame(frame)
		}
	}
}

// --- if / else (spec §4.9 "If / else") ---

func (c *Compiler) parseIf() error {
	c.next() // `if`
	if err := c.expect(token.SymLParen, "("); err != nil {
		return err
	}
	condStart := c.toks.GetCursor()
	condEnd := c.spanEnd(condStart, token.SymRParen)
	if err := c.parseExprSpan(condStart, condEnd); err != nil {
		return err
	}
	c.toks.SetCursor(condEnd)
	c.next() // `)`

	var toElse emitter.ForwardJump
	if !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.JZ, 0)
		toElse.AddParam(c.em, -1)
	}

	c.nest.Push(nesting.KindIf)
	thenFrame := c.nest.Top()
	thenErr := c.parseStatement()
	c.freeDynPointersInFrame(thenFrame)
	c.nest.Pop()
	if thenErr != nil {
		return thenErr
	}

	if c.peek() != token.SymElse {
		if !c.isPreAnalyze() {
			toElse.Patch(c.em, c.curLine())
		}
		return nil
	}

	c.next() // `else`
	var toEnd emitter.ForwardJump
	if !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.JMP, 0)
		toEnd.AddParam(c.em, -1)
		toElse.Patch(c.em, c.curLine())
	}

	c.nest.Push(nesting.KindElse)
	elseFrame := c.nest.Top()
	elseErr := c.parseStatement()
	c.freeDynPointersInFrame(elseFrame)
	c.nest.Pop()
	if elseErr != nil {
		return elseErr
	}

	if !c.isPreAnalyze() {
		toEnd.Patch(c.em, c.curLine())
	}
	return nil
}

// --- while (spec §4.9 "While") ---

func (c *Compiler) parseWhile() error {
	c.next() // `while`

	var top emitter.BackwardJumpDest
	if !c.isPreAnalyze() {
		top.Set(c.em)
	}

	if err := c.expect(token.SymLParen, "("); err != nil {
		return err
	}
	condStart := c.toks.GetCursor()
	condEnd := c.spanEnd(condStart, token.SymRParen)
	if err := c.parseExprSpan(condStart, condEnd); err != nil {
		return err
	}
	c.toks.SetCursor(condEnd)
	c.next() // `)`

	var exitJump emitter.ForwardJump
	if !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.JZ, 0)
		exitJump.AddParam(c.em, -1)
	}

	c.nest.Push(nesting.KindWhile)
	frame := c.nest.Top()
	lf := &loopFrame{kind: nesting.KindWhile, nestLevel: c.nest.TopLevel(), backDest: &top}
	c.loopStack = append(c.loopStack, lf)

	bodyErr := c.parseStatement()

	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	c.freeDynPointersInFrame(frame)
	c.nest.Pop()
	if bodyErr != nil {
		return bodyErr
	}

	if !c.isPreAnalyze() {
		top.WriteJump(c.em, emitter.JMP, c.curLine())
		exitJump.Patch(c.em, c.curLine())
		lf.breakOut.Patch(c.em, c.curLine())
	}
	return nil
}

// --- do/while (spec §4.9 "Do-while") ---

func (c *Compiler) parseDoWhile() error {
	c.next() // `do`

	var top emitter.BackwardJumpDest
	if !c.isPreAnalyze() {
		top.Set(c.em)
	}

	var continueFwd emitter.ForwardJump
	c.nest.Push(nesting.KindDo)
	frame := c.nest.Top()
	lf := &loopFrame{kind: nesting.KindDo, nestLevel: c.nest.TopLevel(), continueFwd: &continueFwd}
	c.loopStack = append(c.loopStack, lf)

	bodyErr := c.parseStatement()

	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	c.freeDynPointersInFrame(frame)
	c.nest.Pop()
	if bodyErr != nil {
		return bodyErr
	}

	// A `continue` inside the body lands here: the not-yet-emitted
	// condition recheck, the opposite direction of while/for's continue
	// (spec §4.9 "Do-while continue jumps forward").
	if !c.isPreAnalyze() {
		continueFwd.Patch(c.em, c.curLine())
	}

	if err := c.expect(token.SymWhile, "while"); err != nil {
		return err
	}
	if err := c.expect(token.SymLParen, "("); err != nil {
		return err
	}
	condStart := c.toks.GetCursor()
	condEnd := c.spanEnd(condStart, token.SymRParen)
	if err := c.parseExprSpan(condStart, condEnd); err != nil {
		return err
	}
	c.toks.SetCursor(condEnd)
	c.next() // `)`
	if err := c.expect(token.SymSemi, ";"); err != nil {
		return err
	}

	if !c.isPreAnalyze() {
		top.WriteJump(c.em, emitter.JNZ, c.curLine())
		lf.breakOut.Patch(c.em, c.curLine())
	}
	return nil
}

// --- for (spec §4.9 "For", chunk yank/replay of the step expression) ---

func (c *Compiler) parseFor() error {
	c.next() // `for`
	if err := c.expect(token.SymLParen, "("); err != nil {
		return err
	}

	c.nest.Push(nesting.KindFor)
	frame := c.nest.Top()

	if c.peek() == token.SymSemi {
		c.next()
	} else if err := c.parseForInit(); err != nil {
		c.freeDynPointersInFrame(frame)
		c.nest.Pop()
		return err
	}

	var top emitter.BackwardJumpDest
	if !c.isPreAnalyze() {
		top.Set(c.em)
	}

	var exitJump emitter.ForwardJump
	if c.peek() != token.SymSemi {
		condStart := c.toks.GetCursor()
		condEnd := c.spanEnd(condStart, token.SymSemi)
		if err := c.parseExprSpan(condStart, condEnd); err != nil {
			c.freeDynPointersInFrame(frame)
			c.nest.Pop()
			return err
		}
		c.toks.SetCursor(condEnd)
		if !c.isPreAnalyze() {
			c.em.WriteCmd(emitter.JZ, 0)
			exitJump.AddParam(c.em, -1)
		}
	}
	if err := c.expect(token.SymSemi, ";"); err != nil {
		c.freeDynPointersInFrame(frame)
		c.nest.Pop()
		return err
	}

	// The step expression is compiled once into the live stream, then
	// yanked into a replayable chunk: it must run again at every `continue`
	// and once more at the loop bottom (spec §4.9 "For").
	stepStart := c.toks.GetCursor()
	stepEnd := c.spanEnd(stepStart, token.SymRParen)
	stepChunkID := 0
	if stepStart < stepEnd {
		codeStart := c.em.CodeSize()
		fixupStart := len(c.em.Fixups)
		if err := c.parseExprStatement(token.SymRParen); err != nil {
			c.freeDynPointersInFrame(frame)
			c.nest.Pop()
			return err
		}
		if !c.isPreAnalyze() {
			chunkLen := c.em.CodeSize() - codeStart
			stepChunkID = c.nest.YankChunk(c.em, codeStart, fixupStart)
			c.localCalls.UpdateCallListOnYanking(codeStart, chunkLen, stepChunkID)
		}
	}
	c.toks.SetCursor(stepEnd)
	c.next() // `)`

	lf := &loopFrame{kind: nesting.KindFor, nestLevel: c.nest.TopLevel(), backDest: &top, stepChunkID: stepChunkID}
	c.loopStack = append(c.loopStack, lf)

	bodyErr := c.parseStatement()

	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	if bodyErr != nil {
		c.freeDynPointersInFrame(frame)
		c.nest.Pop()
		return bodyErr
	}

	if stepChunkID != 0 && !c.isPreAnalyze() {
		insertStart := c.em.CodeSize()
		c.nest.WriteChunk(c.em, c.nest.TopLevel(), stepChunkID)
		c.localCalls.UpdateCallListOnWriting(c.em, insertStart, stepChunkID)
	}
	if !c.isPreAnalyze() {
		top.WriteJump(c.em, emitter.JMP, c.curLine())
		exitJump.Patch(c.em, c.curLine())
		lf.breakOut.Patch(c.em, c.curLine())
	}

	c.freeDynPointersInFrame(frame)
	c.nest.Pop()
	return nil
}

// parseForInit parses a for-loop's init clause, either a local declaration
// or an expression statement, consuming the terminating `;` either way.
func (c *Compiler) parseForInit() error {
	if c.looksLikeDecl() {
		quals, err := c.parseQualifiers()
		if err != nil {
			return err
		}
		if err := c.checkQualifierLegality(quals, ctxFunctionBody, c.curLine()); err != nil {
			return err
		}
		return c.parseVarOrFuncDecl(quals, ctxFunctionBody)
	}
	if err := c.parseExprStatement(token.SymSemi); err != nil {
		return err
	}
	return c.expect(token.SymSemi, ";")
}

// parseDeclOrExprStatement is the default statement production: a local
// declaration (spec §4.8, reused at function-body scope) or a bare
// expression statement (spec §4.9 "Expression statement").
func (c *Compiler) parseDeclOrExprStatement() error {
	if c.looksLikeDecl() {
		quals, err := c.parseQualifiers()
		if err != nil {
			return err
		}
		if err := c.checkQualifierLegality(quals, ctxFunctionBody, c.curLine()); err != nil {
			return err
		}
		return c.parseVarOrFuncDecl(quals, ctxFunctionBody)
	}
	if err := c.parseExprStatement(token.SymSemi); err != nil {
		return err
	}
	return c.expect(token.SymSemi, ";")
}

// looksLikeDecl reports whether the token run starting at the cursor (after
// skipping any qualifier keywords) begins with a vartype name, the signal
// that a declaration rather than an expression follows.
func (c *Compiler) looksLikeDecl() bool {
	idx := c.toks.GetCursor()
	for {
		s := c.symAt(idx)
		if _, ok := qualifierKeywords[s]; ok {
			idx++
			continue
		}
		kind := c.syms.GetKind(s)
		return kind == symtab.Vartype || kind == symtab.UndefinedStruct
	}
}

// --- switch (spec §4.9 "Switch", jump table assembled at `}`) ---

func (c *Compiler) parseSwitch() error {
	c.next() // `switch`
	if err := c.expect(token.SymLParen, "("); err != nil {
		return err
	}
	condStart := c.toks.GetCursor()
	condEnd := c.spanEnd(condStart, token.SymRParen)
	if err := c.parseExprSpan(condStart, condEnd); err != nil {
		return err
	}
	c.toks.SetCursor(condEnd)
	c.next() // `)`
	exprVT := c.axVartype

	// The switch value outlives the comparisons built at `}`, long after the
	// expression's own temporaries are gone, so it is stashed in a private
	// local slot rather than carried through AX/the real stack.
	var tempOffset int
	if !c.isPreAnalyze() {
		tempOffset = c.em.OffsetToLocalVarBlock
		c.em.OffsetToLocalVarBlock += c.syms.GetSize(exprVT)
		c.em.WriteCmd(emitter.LOADSPOFFS, emitter.Cell(c.em.OffsetToLocalVarBlock-tempOffset))
		c.emitStore(exprVT)
	}

	c.nest.Push(nesting.KindSwitch)
	frame := c.nest.Top()
	frame.SwitchExprVartype = exprVT

	var toTable emitter.ForwardJump
	if !c.isPreAnalyze() {
		c.em.WriteCmd(emitter.JMP, 0)
		toTable.AddParam(c.em, -1)
	}

	lf := &loopFrame{kind: nesting.KindSwitch, nestLevel: c.nest.TopLevel()}
	c.loopStack = append(c.loopStack, lf)

	abort := func(err error) error {
		c.loopStack = c.loopStack[:len(c.loopStack)-1]
		c.freeDynPointersInFrame(frame)
		c.nest.Pop()
		return err
	}

	if err := c.expect(token.SymLBrace, "{"); err != nil {
		return abort(err)
	}

	var caseVals []int32
	for c.peek() != token.SymRBrace {
		switch c.peek() {
		case token.SymCase:
			c.next()
			v, err := c.parseConstIntExpr()
			if err != nil {
				return abort(err)
			}
			if err := c.expect(token.SymColon, ":"); err != nil {
				return abort(err)
			}
			var dest emitter.BackwardJumpDest
			if !c.isPreAnalyze() {
				dest.Set(c.em)
			}
			frame.SwitchCases = append(frame.SwitchCases, dest)
			caseVals = append(caseVals, v)
			continue
		case token.SymDefault:
			c.next()
			if err := c.expect(token.SymColon, ":"); err != nil {
				return abort(err)
			}
			if !c.isPreAnalyze() {
				frame.SwitchDefault.Set(c.em)
			}
			frame.HasDefault = true
			continue
		}
		if err := c.parseStatement(); err != nil {
			return abort(err)
		}
	}
	c.next() // `}`

	if !c.isPreAnalyze() {
		toTable.Patch(c.em, c.curLine())

		intSym, _ := c.syms.Find("int")
		for i, val := range caseVals {
			c.em.WriteCmd(emitter.LOADSPOFFS, emitter.Cell(c.em.OffsetToLocalVarBlock-tempOffset))
			c.readMAR(exprVT)
			c.em.WriteCmd(emitter.PUSHREG)
			c.em.WriteCmd(emitter.LITTOREG, emitter.Cell(val))
			c.em.WriteCmd(emitter.POPREG)
			opcode, err := c.selectBinaryOpcode(token.SymEqEq, exprVT, intSym)
			if err != nil {
				return abort(err)
			}
			c.em.WriteCmd(opcode)
			frame.SwitchCases[i].WriteJump(c.em, emitter.JNZ, c.curLine())
		}
		if frame.HasDefault {
			frame.SwitchDefault.WriteJump(c.em, emitter.JMP, c.curLine())
		}
		lf.breakOut.Patch(c.em, c.curLine())
	}

	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	c.freeDynPointersInFrame(frame)
	c.nest.Pop()
	return nil
}

// --- break / continue (spec §4.9 "Break/continue") ---

// nearestLoop returns the innermost enclosing while/do/for frame, skipping
// over any switch frames in between (a bare `continue` inside a switch
// targets the loop around it, if any).
func (c *Compiler) nearestLoop() *loopFrame {
	for i := len(c.loopStack) - 1; i >= 0; i-- {
		if c.loopStack[i].kind != nesting.KindSwitch {
			return c.loopStack[i]
		}
	}
	return nil
}

// nearestBreakable returns the innermost enclosing loop or switch frame.
func (c *Compiler) nearestBreakable() *loopFrame {
	if len(c.loopStack) == 0 {
		return nil
	}
	return c.loopStack[len(c.loopStack)-1]
}

func (c *Compiler) parseBreak() error {
	line := c.curLine()
	c.next() // `break`
	if err := c.expect(token.SymSemi, ";"); err != nil {
		return err
	}

	lf := c.nearestBreakable()
	if lf == nil {
		return c.errorf(diag.Syntax, line, "break outside of a loop or switch")
	}
	if c.isPreAnalyze() {
		return nil
	}
	c.freeDynPointersAboveLevel(lf.nestLevel)
	c.em.WriteCmd(emitter.JMP, 0)
	lf.breakOut.AddParam(c.em, -1)
	return nil
}

func (c *Compiler) parseContinue() error {
	line := c.curLine()
	c.next() // `continue`
	if err := c.expect(token.SymSemi, ";"); err != nil {
		return err
	}

	lf := c.nearestLoop()
	if lf == nil {
		return c.errorf(diag.Syntax, line, "continue outside of a loop")
	}
	if c.isPreAnalyze() {
		return nil
	}
	c.freeDynPointersAboveLevel(lf.nestLevel)

	switch lf.kind {
	case nesting.KindFor:
		if lf.stepChunkID != 0 {
			insertStart := c.em.CodeSize()
			c.nest.WriteChunk(c.em, lf.nestLevel, lf.stepChunkID)
			c.localCalls.UpdateCallListOnWriting(c.em, insertStart, lf.stepChunkID)
		}
		lf.backDest.WriteJump(c.em, emitter.JMP, c.curLine())
	case nesting.KindWhile:
		lf.backDest.WriteJump(c.em, emitter.JMP, c.curLine())
	case nesting.KindDo:
		c.em.WriteCmd(emitter.JMP, 0)
		lf.continueFwd.AddParam(c.em, -1)
	default:
		return c.errorf(diag.Syntax, line, "continue outside of a loop")
	}
	return nil
}

// --- return (spec §4.9 "Function body end") ---

func (c *Compiler) parseReturn() error {
	line := c.curLine()
	c.next() // `return`

	var retVT token.Symbol
	if c.peek() != token.SymSemi {
		exprStart := c.toks.GetCursor()
		exprEnd := c.spanEnd(exprStart, token.SymSemi)
		if err := c.parseExprSpan(exprStart, exprEnd); err != nil {
			return err
		}
		c.toks.SetCursor(exprEnd)
		retVT = c.axVartype
	}
	if err := c.expect(token.SymSemi, ";"); err != nil {
		return err
	}

	voidSym, _ := c.syms.Find("void")
	wantsVoid := c.fn.retVT == voidSym
	switch {
	case wantsVoid && retVT.Valid():
		return c.errorf(diag.Type, line, "void function cannot return a value")
	case !wantsVoid && !retVT.Valid():
		return c.errorf(diag.Type, line, "function must return a value of type %q", c.syms.GetName(c.fn.retVT))
	case retVT.Valid() && c.syms.IsVartypeMismatch(retVT, c.fn.retVT, true):
		return c.errorf(diag.Type, line, "return type does not match the function's declared type")
	}

	if c.isPreAnalyze() {
		return nil
	}
	c.freeDynPointersAboveLevel(0)
	c.em.WriteCmd(emitter.JMP, 0)
	c.fn.exit.AddParam(c.em, -1)
	return nil
}
