// Package callpoint implements the call-site fixup manager described in
// spec §4.5: resolving forward references to functions (local or imported)
// via patch lists keyed by chunk id, so a call compiled before its callee is
// seen can still be patched once the callee's entry point is known.
package callpoint

import (
	"fmt"

	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/token"
)

// Patch is one queued call site awaiting its callee's resolved destination.
// ChunkID == 0 means Offset is an index into the live code stream; any
// other value means Offset is relative to the start of that chunk (spec
// §4.5).
type Patch struct {
	ChunkID      int
	Offset       int
	SourceCursor token.Cursor
}

// funcState tracks one function symbol's resolution state.
type funcState struct {
	resolved bool
	dest     int
	patches  []Patch
}

// Manager is one CallpointManagers instance (spec keeps two: one for
// non-import local functions, one for imports).
type Manager struct {
	funcs map[token.Symbol]*funcState
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{funcs: make(map[token.Symbol]*funcState)}
}

func (m *Manager) state(fn token.Symbol) *funcState {
	fs, ok := m.funcs[fn]
	if !ok {
		fs = &funcState{}
		m.funcs[fn] = fs
	}
	return fs
}

// TrackForwardDeclCall records a call site for fn at codeLoc (in the live
// code stream). If fn's callpoint is already resolved, the destination is
// written immediately; otherwise the call site is queued.
func (m *Manager) TrackForwardDeclCall(e *emitter.Emitter, fn token.Symbol, codeLoc int, srcCursor token.Cursor) {
	fs := m.state(fn)
	if fs.resolved {
		e.Code[codeLoc] = emitter.Cell(fs.dest)
		return
	}
	fs.patches = append(fs.patches, Patch{ChunkID: 0, Offset: codeLoc, SourceCursor: srcCursor})
}

// SetFuncCallpoint resolves fn to dest, patching every queued live-stream
// call site immediately and dropping them. Chunk-resident entries are kept:
// they are translated back to the live stream when their chunk replays (see
// UpdateCallListOnWriting), since the same chunk can replay more than once.
func (m *Manager) SetFuncCallpoint(e *emitter.Emitter, fn token.Symbol, dest int) {
	fs := m.state(fn)
	fs.resolved = true
	fs.dest = dest

	kept := fs.patches[:0]
	for _, p := range fs.patches {
		if p.ChunkID == 0 {
			e.Code[p.Offset] = emitter.Cell(dest)
			continue
		}
		kept = append(kept, p)
	}
	fs.patches = kept
}

// UpdateCallListOnYanking re-keys any live-stream patch lying inside
// [chunkStart, chunkStart+chunkLen) to the given chunk id, with an offset
// relative to the chunk's own start. Called by the compiler right after
// nesting.Stack.YankChunk moves that code range out of the live stream.
func (m *Manager) UpdateCallListOnYanking(chunkStart, chunkLen, newChunkID int) {
	chunkEnd := chunkStart + chunkLen
	for _, fs := range m.funcs {
		for i, p := range fs.patches {
			if p.ChunkID == 0 && p.Offset >= chunkStart && p.Offset < chunkEnd {
				fs.patches[i] = Patch{ChunkID: newChunkID, Offset: p.Offset - chunkStart, SourceCursor: p.SourceCursor}
			}
		}
	}
}

// UpdateCallListOnWriting appends, for every patch tagged with chunkID, a
// new live-stream patch at insertStart+relativeOffset. The original
// chunk-tagged entry is kept (not removed): the same chunk can replay
// multiple times (e.g. a for-loop's step expression replayed at `continue`
// and again at the loop bottom).
func (m *Manager) UpdateCallListOnWriting(e *emitter.Emitter, insertStart, chunkID int) {
	for fn, fs := range m.funcs {
		var toAdd []Patch
		for _, p := range fs.patches {
			if p.ChunkID == chunkID {
				toAdd = append(toAdd, Patch{ChunkID: 0, Offset: insertStart + p.Offset, SourceCursor: p.SourceCursor})
			}
		}
		for _, p := range toAdd {
			if fs.resolved {
				e.Code[p.Offset] = emitter.Cell(fs.dest)
				continue
			}
			fs.patches = append(fs.patches, p)
		}
		m.funcs[fn] = fs
	}
}

// CheckForUnresolvedFuncs reports every function with a remaining
// live-stream patch as a ReferenceError: "function called but not defined"
// (spec §4.5/§7).
func (m *Manager) CheckForUnresolvedFuncs(h *diag.Handler, nameOf func(token.Symbol) string) {
	for fn, fs := range m.funcs {
		if fs.resolved {
			continue
		}
		for _, p := range fs.patches {
			if p.ChunkID != 0 {
				continue // chunk-resident only, never materialized: not a real call site
			}
			h.Errorf(diag.Reference, p.SourceCursor.Section, p.SourceCursor.Line,
				"function called but not defined: %s", nameOf(fn))
		}
	}
}

// Unresolved returns the symbols that still have at least one live-stream
// patch pending, for diagnostics/testing.
func (m *Manager) Unresolved() []token.Symbol {
	var out []token.Symbol
	for fn, fs := range m.funcs {
		if fs.resolved {
			continue
		}
		for _, p := range fs.patches {
			if p.ChunkID == 0 {
				out = append(out, fn)
				break
			}
		}
	}
	return out
}

// EncodeImportOrdinal packs a parameter count and varargs flag into the
// import name's ordinal suffix: "name^N" where N = paramCount +
// 100*varargs (spec §4.8, confirmed against original_source).
func EncodeImportOrdinal(name string, paramCount int, varargs bool) string {
	n := paramCount
	if varargs {
		n += 100
	}
	return fmt.Sprintf("%s^%d", name, n)
}

// DecodeImportOrdinal splits an encoded import name back into its base name,
// parameter count, and varargs flag.
func DecodeImportOrdinal(encoded string) (name string, paramCount int, varargs bool, ok bool) {
	i := len(encoded) - 1
	for i >= 0 && encoded[i] != '^' {
		i--
	}
	if i < 0 {
		return "", 0, false, false
	}
	name = encoded[:i]
	var n int
	if _, err := fmt.Sscanf(encoded[i+1:], "%d", &n); err != nil {
		return "", 0, false, false
	}
	if n >= 100 {
		return name, n - 100, true, true
	}
	return name, n, false, true
}
