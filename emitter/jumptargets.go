package emitter

// ForwardJump holds a list of code-cell indices whose operand must later be
// rewritten with a relative distance to wherever the jump target turns out
// to be (spec §4.2). It backs `if`/`while`-false exits, `break`, logical
// short-circuit, and a switch's jump from its head to its jump table (the
// table's case/default dispatch uses BackwardJumpDest).
type ForwardJump struct {
	positions []int
	// lastLineAtReg is the emitter's lastEmittedLineno recorded the last time
	// a position was added, used to decide whether patching needs to force a
	// fresh line-number opcode at the target.
	lastLineAtReg int
}

// AddParam remembers the position of the instruction just appended to e
// (or, if offset >= 0, an explicit code index) as one that must be patched
// when this jump resolves.
func (fj *ForwardJump) AddParam(e *Emitter, offset int) {
	if offset < 0 {
		offset = len(e.Code) - 1
	}
	fj.positions = append(fj.positions, offset)
	fj.lastLineAtReg = e.LastEmittedLineno()
}

// Patch rewrites every stored position to the relative distance to the
// current code end. If the line recorded at registration time differs from
// curLine, the target needs a fresh line-number opcode since code may now
// execute out of source order across the patched jump.
func (fj *ForwardJump) Patch(e *Emitter, curLine int) {
	dest := len(e.Code)
	for _, pos := range fj.positions {
		e.Code[pos] = Cell(e.RelativeJumpDist(pos+1, dest))
	}
	if fj.lastLineAtReg != curLine {
		e.ForceNextLineno()
	}
	fj.positions = fj.positions[:0]
}

// Empty reports whether any position is pending.
func (fj *ForwardJump) Empty() bool { return len(fj.positions) == 0 }

// Positions exposes the pending positions (read-only use: chunk yank/replay
// needs to re-key them when their owning code range moves).
func (fj *ForwardJump) Positions() []int { return fj.positions }

// SetPositions overwrites the pending positions (used by chunk replay to
// rebase them).
func (fj *ForwardJump) SetPositions(p []int) { fj.positions = p }

// BackwardJumpDest is fixed at the moment of Set to the current code end (or
// an explicitly supplied location), for use by `while`/`do-while` backward
// jumps (spec §4.2).
type BackwardJumpDest struct {
	dest      int
	hadLineAt bool
}

// Set fixes the destination, defaulting to the current code end.
func (bjd *BackwardJumpDest) Set(e *Emitter, loc ...int) {
	if len(loc) > 0 {
		bjd.dest = loc[0]
	} else {
		bjd.dest = len(e.Code)
	}
	bjd.hadLineAt = e.LastEmittedLineno() != LineNumberUnset
}

// Dest returns the fixed destination code index.
func (bjd *BackwardJumpDest) Dest() int { return bjd.dest }

// WriteJump appends a backward jump to the fixed destination. If no
// line-number opcode was in effect when the destination was fixed, the
// policy forces a fresh one at the jump site so the jump itself is attached
// to a known source line.
func (bjd *BackwardJumpDest) WriteJump(e *Emitter, op Opcode, curLine int) {
	if !bjd.hadLineAt {
		e.ForceNextLineno()
	}
	e.WriteLineno(curLine)
	here := len(e.Code) + 1
	e.WriteCmd(op, Cell(e.RelativeJumpDist(here, bjd.dest)))
}
