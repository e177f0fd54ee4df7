// Package emitter implements the bytecode emitter and forward/backward jump
// patching machinery described in spec §4.1/§4.2: appending machine cells,
// recording fixups, computing relative jump distances, and tracking the
// current source line for line-number opcodes.
package emitter

import "math"

// Cell is one machine word (spec §6: "one stack cell = 32 bits").
type Cell int32

// FixupKind classifies a deferred relocation (spec §3/§6).
type FixupKind uint8

const (
	FixupGlobalData FixupKind = iota
	FixupImport
	FixupCode
	FixupString
)

// Fixup is one entry of the emitter's parallel fixup lists.
type Fixup struct {
	CodeIndex int
	Kind      FixupKind
}

// ExportKind classifies an export entry.
type ExportKind uint8

const (
	ExportData ExportKind = iota
	ExportFunction
)

// Export is one entry of the compiled script's export table.
type Export struct {
	Name   string
	Kind   ExportKind
	Offset int
	// Encoding packs parameter count and scope flags the way the original
	// engine image format does, opaque to this package beyond storage.
	Encoding int
}

// FuncEntry is one entry of the compiled script's function table.
type FuncEntry struct {
	Name       string
	Offset     int
	NumParams  int
}

// LineNumberUnset is the sentinel meaning "emit one before the next
// instruction" (spec §4.1).
const LineNumberUnset = math.MaxInt32

// Emitter is the compiled-script emitter state (spec §3 "Compiled script
// (emitter state)").
type Emitter struct {
	Code   []Cell
	Fixups []Fixup

	imports      []string
	importIndex  map[string]int

	Exports   []Export
	Functions []FuncEntry

	GlobalData []byte

	OffsetToLocalVarBlock int
	lastEmittedLineno     int

	AXVartype any // opaque to this package; set/read by the compiler
	AXScope   any

	currentSection string
}

// New creates an empty Emitter with the line-number policy primed so the
// very first instruction always gets a LINENUM opcode.
func New() *Emitter {
	return &Emitter{
		importIndex:       make(map[string]int),
		lastEmittedLineno: LineNumberUnset,
	}
}

// CodeSize returns the current number of code cells.
func (e *Emitter) CodeSize() int { return len(e.Code) }

// StartNewSection records the name of the compilation input fragment whose
// code follows (spec §6 "Section").
func (e *Emitter) StartNewSection(name string) { e.currentSection = name }

// WriteCmd appends one instruction: an opcode cell followed by its argument
// cells (spec §4.1).
func (e *Emitter) WriteCmd(op Opcode, args ...Cell) {
	e.Code = append(e.Code, Cell(op))
	e.Code = append(e.Code, args...)
}

// WriteLineno appends a LINENUM opcode if the current source line differs
// from the last one emitted (spec §4.1 line-number policy).
func (e *Emitter) WriteLineno(line int) {
	if line == e.lastEmittedLineno {
		return
	}
	e.WriteCmd(LINENUM, Cell(line))
	e.lastEmittedLineno = line
}

// ForceNextLineno arranges for the next WriteLineno call to always emit,
// regardless of the line number passed. Any operation that transfers
// control into the middle of a block (forward patch, chunk replay) must
// call this (spec §4.1).
func (e *Emitter) ForceNextLineno() { e.lastEmittedLineno = LineNumberUnset }

// LastEmittedLineno reports the most recently emitted line, or
// LineNumberUnset.
func (e *Emitter) LastEmittedLineno() int { return e.lastEmittedLineno }

// AddFixup records a deferred relocation at the given code index.
func (e *Emitter) AddFixup(codeIdx int, kind FixupKind) {
	e.Fixups = append(e.Fixups, Fixup{CodeIndex: codeIdx, Kind: kind})
}

// FixupPrevious records a fixup for the cell just appended (CodeSize()-1).
func (e *Emitter) FixupPrevious(kind FixupKind) {
	e.AddFixup(len(e.Code)-1, kind)
}

// RelativeJumpDist computes the relative distance a jump instruction's
// operand must encode to travel from the cell just after the jump opcode
// (from) to the destination (to).
func (e *Emitter) RelativeJumpDist(from, to int) int {
	return to - from
}

// AddNewImport interns name into the import table, returning its ordinal.
// Re-adding an already-known name returns the existing ordinal (spec §4.2
// "ImportTable... Deduplicated list").
func (e *Emitter) AddNewImport(name string) int {
	if idx, ok := e.importIndex[name]; ok {
		return idx
	}
	idx := len(e.imports)
	e.imports = append(e.imports, name)
	e.importIndex[name] = idx
	return idx
}

// Imports returns the ordered, deduplicated import name list.
func (e *Emitter) Imports() []string { return e.imports }

// ClearUnreferencedImport blanks an import name that was registered but
// never actually referenced by a resolved call site, per spec §6 ("some may
// be cleared to empty strings at end of compilation").
func (e *Emitter) ClearUnreferencedImport(idx int) {
	if idx >= 0 && idx < len(e.imports) {
		e.imports[idx] = ""
	}
}

// AddNewFunction registers a new function at the current code end, returning
// its entry offset and its index in e.Functions.
func (e *Emitter) AddNewFunction(name string, numParams int) (offset, idx int) {
	offset = len(e.Code)
	idx = len(e.Functions)
	e.Functions = append(e.Functions, FuncEntry{Name: name, Offset: offset, NumParams: numParams})
	return offset, idx
}

// AddGlobal reserves size bytes in the global data blob, optionally seeded
// with an initializer, returning the byte offset assigned.
func (e *Emitter) AddGlobal(size int, initBlob []byte) int {
	offset := len(e.GlobalData)
	grown := make([]byte, size)
	copy(grown, initBlob)
	e.GlobalData = append(e.GlobalData, grown...)
	return offset
}

// AddNewExport appends an export entry.
func (e *Emitter) AddNewExport(name string, kind ExportKind, offset, encoding int) {
	e.Exports = append(e.Exports, Export{Name: name, Kind: kind, Offset: offset, Encoding: encoding})
}
