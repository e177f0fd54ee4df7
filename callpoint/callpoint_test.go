package callpoint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/token"
)

func TestTrackForwardDeclThenResolve(t *testing.T) {
	e := emitter.New()
	e.WriteCmd(emitter.CALL, 0) // placeholder callee slot
	callSite := e.CodeSize() - 1

	m := New()
	fn := token.Symbol(50)
	m.TrackForwardDeclCall(e, fn, callSite, token.Cursor{Section: "main", Line: 1})
	require.Equal(t, emitter.Cell(0), e.Code[callSite])

	m.SetFuncCallpoint(e, fn, 77)
	require.Equal(t, emitter.Cell(77), e.Code[callSite])
}

func TestTrackForwardDeclAlreadyResolved(t *testing.T) {
	e := emitter.New()
	m := New()
	fn := token.Symbol(51)
	m.SetFuncCallpoint(e, fn, 10)

	e.WriteCmd(emitter.CALL, 0)
	callSite := e.CodeSize() - 1
	m.TrackForwardDeclCall(e, fn, callSite, token.Cursor{})
	require.Equal(t, emitter.Cell(10), e.Code[callSite])
}

func TestUnresolvedFuncsReported(t *testing.T) {
	e := emitter.New()
	m := New()
	fn := token.Symbol(52)

	e.WriteCmd(emitter.CALL, 0)
	m.TrackForwardDeclCall(e, fn, e.CodeSize()-1, token.Cursor{Section: "main", Line: 5})

	h := &diag.Handler{}
	m.CheckForUnresolvedFuncs(h, func(token.Symbol) string { return "doStuff" })
	require.True(t, h.HasErrors())
	msg, ok := h.FirstError()
	require.True(t, ok)
	require.Contains(t, msg.Text, "doStuff")

	require.Equal(t, []token.Symbol{fn}, m.Unresolved())
}

func TestYankThenWriteTranslatesPatches(t *testing.T) {
	e := emitter.New()
	m := New()
	fn := token.Symbol(53)

	chunkStart := e.CodeSize()
	e.WriteCmd(emitter.CALL, 0)
	callOffset := e.CodeSize() - 1
	m.TrackForwardDeclCall(e, fn, callOffset, token.Cursor{})

	chunkLen := e.CodeSize() - chunkStart
	m.UpdateCallListOnYanking(chunkStart, chunkLen, 1)
	e.Code = e.Code[:chunkStart] // simulate the yank itself removing the code

	// replay the chunk twice, as a for-loop step would at continue and at
	// the loop bottom
	insertA := e.CodeSize()
	e.WriteCmd(emitter.CALL, 0)
	m.UpdateCallListOnWriting(e, insertA, 1)

	insertB := e.CodeSize()
	e.WriteCmd(emitter.CALL, 0)
	m.UpdateCallListOnWriting(e, insertB, 1)

	m.SetFuncCallpoint(e, fn, 99)
	require.Equal(t, emitter.Cell(99), e.Code[insertA+1])
	require.Equal(t, emitter.Cell(99), e.Code[insertB+1])
}

func TestEncodeDecodeImportOrdinal(t *testing.T) {
	enc := EncodeImportOrdinal("Display", 2, false)
	require.Equal(t, "Display^2", enc)
	name, n, varargs, ok := DecodeImportOrdinal(enc)
	require.True(t, ok)
	require.Equal(t, "Display", name)
	require.Equal(t, 2, n)
	require.False(t, varargs)

	enc = EncodeImportOrdinal("Printf", 1, true)
	name, n, varargs, ok = DecodeImportOrdinal(enc)
	require.True(t, ok)
	require.Equal(t, "Printf", name)
	require.Equal(t, 1, n)
	require.True(t, varargs)

	_, _, _, ok = DecodeImportOrdinal("noordinal")
	require.False(t, ok)
}
