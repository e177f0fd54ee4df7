package emitter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpcodeStringKnownAndUnknown(t *testing.T) {
	require.Equal(t, "littoreg", LITTOREG.String())
	require.Equal(t, "ret", RET.String())
	require.Equal(t, "illegal opcode", Opcode(255).String())
}

func TestIsJump(t *testing.T) {
	require.True(t, IsJump(JZ))
	require.True(t, IsJump(JNZ))
	require.True(t, IsJump(JMP))
	require.False(t, IsJump(ADD))
}
