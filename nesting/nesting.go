// Package nesting implements the scope/block stack described in spec §3/§4.4:
// per-level bookkeeping of loop/switch jump state, shadowed definitions, and
// the "yank and replay" mechanism used to duplicate the for-loop step
// expression's bytecode at every continue and at the loop bottom.
package nesting

import (
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
)

// Kind is the kind of a nesting frame (spec §3).
type Kind uint8

const (
	KindNone Kind = iota
	KindFunction
	KindParameters
	KindBraces
	KindIf
	KindElse
	KindDo
	KindWhile
	KindFor
	KindSwitch
)

// Chunk is a stashed, re-playable bytecode fragment (spec §4.4 "yankChunk").
type Chunk struct {
	Code   []emitter.Cell
	Fixups []emitter.Fixup // CodeIndex relative to the chunk's own start (0-based)
}

// Frame is one level of the nesting stack (spec §3 "NestingStack frame").
type Frame struct {
	Type Kind

	StartDest emitter.BackwardJumpDest
	JumpOut   emitter.ForwardJump

	SwitchExprVartype token.Symbol
	SwitchDefault     emitter.BackwardJumpDest
	HasDefault        bool
	SwitchJumptable   emitter.ForwardJump
	SwitchCases       []emitter.BackwardJumpDest

	OldDefinitions map[token.Symbol]symtab.Entry

	Chunks []Chunk
}

// Stack is the NestingStack (spec §4.4).
type Stack struct {
	frames []*Frame
	syms   *symtab.Table
}

// New creates an empty Stack bound to the given symbol table, used to
// restore shadowed definitions on Pop.
func New(syms *symtab.Table) *Stack {
	return &Stack{syms: syms}
}

// Push opens a new frame of the given kind. A frame is pushed at each `{`,
// each compound-statement head, and at function-parameter entry (spec §3
// lifecycle note).
func (s *Stack) Push(kind Kind) *Frame {
	f := &Frame{Type: kind, OldDefinitions: make(map[token.Symbol]symtab.Entry)}
	s.frames = append(s.frames, f)
	return f
}

// Pop closes the top frame, restoring any definitions it shadowed.
func (s *Stack) Pop() *Frame {
	n := len(s.frames)
	f := s.frames[n-1]
	s.frames = s.frames[:n-1]
	for sym, old := range f.OldDefinitions {
		s.syms.Set(sym, old)
	}
	return f
}

// TopLevel returns the current nesting depth (number of open frames).
func (s *Stack) TopLevel() int { return len(s.frames) }

// Top returns the innermost frame, or nil if the stack is empty.
func (s *Stack) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// At returns the frame at the given nesting level (1-based, matching
// TopLevel), or nil if out of range.
func (s *Stack) At(level int) *Frame {
	if level < 1 || level > len(s.frames) {
		return nil
	}
	return s.frames[level-1]
}

// AddOldDefinition records the symbol table entry a local declaration is
// about to shadow, so Pop can restore it. alreadyExisted reports whether a
// shadow was already recorded for sym at this level (a second declaration of
// the same name in one block, a caller-detected error condition).
func (f *Frame) AddOldDefinition(sym token.Symbol, entry symtab.Entry) (alreadyExisted bool) {
	_, alreadyExisted = f.OldDefinitions[sym]
	if !alreadyExisted {
		f.OldDefinitions[sym] = entry
	}
	return alreadyExisted
}

// YankChunk removes code cells [codeStart, e.CodeSize()) and fixups
// [fixupStart, len(e.Fixups)) from the emitter and stores them into the top
// frame's chunk list, returning the new chunk's id (1-based: id 0 is
// reserved by the call-site fixup manager to mean "the live code stream",
// per spec §4.5).
func (s *Stack) YankChunk(e *emitter.Emitter, codeStart, fixupStart int) int {
	top := s.Top()

	code := append([]emitter.Cell(nil), e.Code[codeStart:]...)
	var fixups []emitter.Fixup
	for _, fx := range e.Fixups[fixupStart:] {
		fixups = append(fixups, emitter.Fixup{CodeIndex: fx.CodeIndex - codeStart, Kind: fx.Kind})
	}

	e.Code = e.Code[:codeStart]
	e.Fixups = e.Fixups[:fixupStart]

	top.Chunks = append(top.Chunks, Chunk{Code: code, Fixups: fixups})
	return len(top.Chunks) // 1-based id
}

// WriteChunk re-appends the chunk with the given 1-based id in the frame at
// level to the current code end, rebasing its fixups, and returns the chunk
// id (unchanged) so callers (the call-site fixup manager) can translate
// chunk-tagged patches for this replay instance.
func (s *Stack) WriteChunk(e *emitter.Emitter, level, chunkID int) int {
	frame := s.At(level)
	chunk := frame.Chunks[chunkID-1]

	base := len(e.Code)
	e.Code = append(e.Code, chunk.Code...)
	for _, fx := range chunk.Fixups {
		e.Fixups = append(e.Fixups, emitter.Fixup{CodeIndex: fx.CodeIndex + base, Kind: fx.Kind})
	}

	// emit a line-number opcode if the chunk doesn't already start with one.
	startsWithLineno := len(chunk.Code) > 0 && emitter.Opcode(chunk.Code[0]) == emitter.LINENUM
	if !startsWithLineno {
		e.ForceNextLineno()
	}
	return chunkID
}
