package tokstream

import "github.com/scriptlang/cscompiler/token"

// pos is the (section, line) recorded for one stream position.
type pos struct {
	section string
	line    int
}

// Slice is an in-memory Stream backed by a fixed token list, the concrete
// implementation tests and the CLI drive the two-phase parser with in place
// of a real scanner (out of scope per spec §1 — this package only names the
// contract a scanner must satisfy).
type Slice struct {
	syms      []token.Symbol
	positions []pos
	ints      map[int]int32
	floats    map[int]float32
	strings   map[int]string

	cursor int
}

// NewSlice creates an empty builder. Use Push/PushInt/PushFloat/PushString
// to append tokens before handing the result to compiler.Run.
func NewSlice() *Slice {
	return &Slice{
		ints:    make(map[int]int32),
		floats:  make(map[int]float32),
		strings: make(map[int]string),
	}
}

// Push appends a symbol at the given source line, returning its index.
func (s *Slice) Push(sym token.Symbol, line int) int {
	idx := len(s.syms)
	s.syms = append(s.syms, sym)
	s.positions = append(s.positions, pos{section: "", line: line})
	return idx
}

// PushSection is like Push but also records an explicit section name,
// used when a stream spans more than one source file (spec §6 "Section").
func (s *Slice) PushSection(sym token.Symbol, section string, line int) int {
	idx := s.Push(sym, line)
	s.positions[idx].section = section
	return idx
}

// PushInt appends token.SymIntLit carrying v as its literal payload.
func (s *Slice) PushInt(v int32, line int) int {
	idx := s.Push(token.SymIntLit, line)
	s.ints[idx] = v
	return idx
}

// PushFloat appends token.SymFloatLit carrying v as its literal payload.
func (s *Slice) PushFloat(v float32, line int) int {
	idx := s.Push(token.SymFloatLit, line)
	s.floats[idx] = v
	return idx
}

// PushString appends token.SymStringLit carrying v as its literal payload.
func (s *Slice) PushString(v string, line int) int {
	idx := s.Push(token.SymStringLit, line)
	s.strings[idx] = v
	return idx
}

func (s *Slice) PeekNext() token.Symbol {
	if s.cursor >= len(s.syms) {
		return token.NoSymbol
	}
	return s.syms[s.cursor]
}

func (s *Slice) GetNext() token.Symbol {
	sym := s.PeekNext()
	s.cursor++
	return sym
}

func (s *Slice) BackUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

func (s *Slice) GetCursor() int    { return s.cursor }
func (s *Slice) SetCursor(idx int) { s.cursor = idx }
func (s *Slice) ReachedEOF() bool  { return s.cursor >= len(s.syms) }
func (s *Slice) Length() int       { return len(s.syms) }

func (s *Slice) Position(idx int) (string, int) {
	if idx < 0 || idx >= len(s.positions) {
		return "", 0
	}
	return s.positions[idx].section, s.positions[idx].line
}

func (s *Slice) IntLiteral(idx int) int32      { return s.ints[idx] }
func (s *Slice) FloatLiteral(idx int) float32  { return s.floats[idx] }
func (s *Slice) StringLiteral(idx int) string  { return s.strings[idx] }
