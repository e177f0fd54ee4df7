// Package compiler implements the parser core described in spec §4.6-4.9:
// expression parsing by least-binding-operator span scanning, the access/
// assignment engine, struct/enum/variable/function declarations, and
// statement control flow, driven twice over the same token stream (spec
// §2 "Control flow").
package compiler

import (
	"fmt"

	"github.com/scriptlang/cscompiler/callpoint"
	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/nesting"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
	"github.com/scriptlang/cscompiler/tokstream"
)

// Phase selects which of the two passes over the token stream is running
// (spec §2).
type Phase uint8

const (
	// PreAnalyze collects function headers and global/import visibility
	// without emitting bytecode or descending into statement bodies.
	PreAnalyze Phase = iota
	// Main re-reads the stream and emits bytecode, checking declarations
	// against what PreAnalyze recorded.
	Main
)

// Options are the compiler option bits (spec §6).
type Options struct {
	NoImportOverride bool
	OldStrings       bool
	ExportAll        bool
}

// ValueLocation reports where an expression or access chain deposited its
// result (spec §4.6).
type ValueLocation uint8

const (
	AXIsValue ValueLocation = iota
	MARPointsToValue
	AttributeLocation
)

// errAborted is returned by every parse method after it has already
// recorded a diagnostic for the failure (spec §7: "no partial recovery").
// Callers propagate it unchanged; only the top-level driver inspects it.
var errAborted = fmt.Errorf("compile aborted")

// funcState is the bookkeeping kept for the function body currently being
// compiled (spec §4.9 "Function body end").
type funcState struct {
	sym       token.Symbol
	name      string
	exit      emitter.ForwardJump
	retVT     token.Symbol
	noloopchk bool
}

// Compiler holds all state shared by a single pass over the token stream.
type Compiler struct {
	phase Phase
	opts  Options

	toks tokstream.Stream
	syms *symtab.Table
	em   *emitter.Emitter
	nest *nesting.Stack

	localCalls  *callpoint.Manager
	importCalls *callpoint.Manager

	diags *diag.Handler

	section string

	axVartype token.Symbol
	axScope   int
	axLoc     ValueLocation

	fn *funcState

	curStruct token.Symbol // set while parsing a struct body, else NoSymbol
	headers   map[token.Symbol]symtab.Entry // PreAnalyze snapshot, consulted by Main

	// pendingAssign and the two fields after it carry the write-sink state
	// threaded through the access engine while compiling the left-hand side
	// of an assignment (spec §4.7 "Assignment sink"): pendingAssign tells the
	// final clause of the access chain to leave MAR loaded (or report
	// AttributeLocation) instead of reading through it, and the Attr fields
	// remember which setter to call when the chain's last clause turns out
	// to be a struct attribute.
	pendingAssign     bool
	pendingAttrStruct token.Symbol
	pendingAttrName   token.Symbol

	// loopStack is the break/continue resolution stack: one entry per open
	// while/do/for/switch, innermost last (spec §4.9 "break/continue").
	loopStack []*loopFrame
}

// New creates a Compiler for one pass over toks.
func New(phase Phase, opts Options, toks tokstream.Stream, syms *symtab.Table, em *emitter.Emitter,
	localCalls, importCalls *callpoint.Manager, diags *diag.Handler, section string) *Compiler {
	return &Compiler{
		phase:       phase,
		opts:        opts,
		toks:        toks,
		syms:        syms,
		em:          em,
		nest:        nesting.New(syms),
		localCalls:  localCalls,
		importCalls: importCalls,
		diags:       diags,
		section:     section,
		headers:     make(map[token.Symbol]symtab.Entry),
	}
}

// Run executes the full two-phase driver described in spec §2 over one
// token stream/section: PreAnalyze followed by Main, sharing syms so
// handles assigned in phase one are stable in phase two (the symbol
// handle stability testable property).
func Run(toks tokstream.Stream, syms *symtab.Table, opts Options, section string) (*emitter.Emitter, *diag.Handler, error) {
	diags := &diag.Handler{}
	localCalls := callpoint.New()
	importCalls := callpoint.New()

	pre := New(PreAnalyze, opts, toks, syms, emitter.New(), localCalls, importCalls, diags, section)
	if err := pre.compileUnit(); err != nil && err != errAborted {
		return nil, diags, err
	}
	if diags.HasErrors() {
		return nil, diags, nil
	}

	toks.SetCursor(0)
	em := emitter.New()
	em.StartNewSection(section)
	main := New(Main, opts, toks, syms, em, localCalls, importCalls, diags, section)
	main.headers = pre.headers
	if err := main.compileUnit(); err != nil && err != errAborted {
		return nil, diags, err
	}
	if diags.HasErrors() {
		return em, diags, nil
	}

	localCalls.CheckForUnresolvedFuncs(diags, func(s token.Symbol) string { return syms.GetName(s) })
	return em, diags, nil
}

// Run drives this single pass to completion, for a caller (the `preanalyze`
// CLI command) that needs to run just one phase rather than the full
// PreAnalyze-then-Main pipeline the package-level Run function drives.
func (c *Compiler) Run() error { return c.compileUnit() }

// compileUnit parses top-level declarations until EOF (spec §4.8: struct,
// enum, variable, and function declarations live at nesting depth 0).
func (c *Compiler) compileUnit() error {
	for !c.toks.ReachedEOF() {
		if err := c.parseTopLevelDecl(); err != nil {
			return err
		}
	}
	return nil
}

// --- low-level token helpers ---

func (c *Compiler) cursor() token.Cursor {
	idx := c.toks.GetCursor()
	section, line := c.toks.Position(idx)
	return token.Cursor{Section: section, Line: line, Index: idx}
}

func (c *Compiler) peek() token.Symbol { return c.toks.PeekNext() }

func (c *Compiler) next() token.Symbol { return c.toks.GetNext() }

func (c *Compiler) curLine() int {
	_, line := c.toks.Position(c.toks.GetCursor())
	return line
}

// expect consumes the next symbol, requiring it to equal want; otherwise
// records a SyntaxError and aborts (spec §7).
func (c *Compiler) expect(want token.Symbol, what string) error {
	cur := c.cursor()
	got := c.next()
	if got != want {
		return c.errorf(diag.Syntax, cur.Line, "expected %s, got %s", what, c.syms.GetName(got))
	}
	return nil
}

func (c *Compiler) errorf(kind diag.Kind, line int, format string, args ...any) error {
	c.diags.Errorf(kind, c.section, line, format, args...)
	return errAborted
}

func (c *Compiler) warnf(kind diag.Kind, line int, format string, args ...any) {
	c.diags.Warnf(kind, c.section, line, format, args...)
}

// isPreAnalyze reports whether this pass must not emit bytecode or descend
// into statement bodies (spec §2, §9 "phase flag gates side effects").
func (c *Compiler) isPreAnalyze() bool { return c.phase == PreAnalyze }

// writeLineno emits a line-number opcode if needed, a no-op during
// PreAnalyze (spec §9 design note: a no-op emitter in PreAnalyze).
func (c *Compiler) writeLineno() {
	if c.isPreAnalyze() {
		return
	}
	c.em.WriteLineno(c.curLine())
}
