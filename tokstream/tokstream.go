// Package tokstream defines the contract the lexical scanner must satisfy.
// The scanner itself is out of scope for this compiler (see spec §1): it is
// an external collaborator that hands the parser a pre-tokenized stream of
// symbol handles, a per-position (section, line) mapping, and literal
// tables for strings and numeric constants. This package names only the
// shape of that collaboration.
package tokstream

import "github.com/scriptlang/cscompiler/token"

// Stream is the read/seek interface the two-phase parser drives. A single
// Stream instance is shared by PreAnalyze and Main; Main resets the cursor
// to the start and re-reads everything, so both phases observe identical
// symbol handles (see the symbol-handle-stability testable property).
type Stream interface {
	// PeekNext returns the symbol at the current cursor without advancing.
	PeekNext() token.Symbol
	// GetNext returns the symbol at the current cursor and advances past it.
	GetNext() token.Symbol
	// BackUp moves the cursor back by one position.
	BackUp()
	// GetCursor returns the current absolute index into the stream.
	GetCursor() int
	// SetCursor repositions the cursor to an absolute index previously
	// obtained from GetCursor.
	SetCursor(idx int)
	// ReachedEOF reports whether the cursor is at or past the end of input.
	ReachedEOF() bool
	// Length returns the total number of symbols in the stream.
	Length() int

	// Position returns the (section, line) of the symbol at idx, used for
	// diagnostics and for the emitter's line-number opcode policy.
	Position(idx int) (section string, line int)

	// IntLiteral, FloatLiteral and StringLiteral resolve the literal payload
	// for a LiteralInt/LiteralFloat/LiteralString symbol at idx, as produced
	// by the scanner's literal tables.
	IntLiteral(idx int) int32
	FloatLiteral(idx int) float32
	StringLiteral(idx int) string
}

// Cursor captures a Stream's current position so it can be restored, used
// by the two-phase compiler to rewind between PreAnalyze and Main and by
// diagnostics to reference an earlier declaration site.
func Cursor(s Stream) token.Cursor {
	idx := s.GetCursor()
	section, line := s.Position(idx)
	return token.Cursor{Section: section, Line: line, Index: idx}
}
