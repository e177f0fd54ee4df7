package emitter

import (
	"fmt"
	"io"
)

// operandCounts gives the number of argument cells following each opcode
// cell, mirroring the arity WriteCmd is actually called with throughout the
// compiler (spec §4.1 "one opcode cell followed by its argument cells").
// Opcodes absent from this map take zero operands.
var operandCounts = map[Opcode]int{
	LITTOREG:      1,
	LOADSPOFFS:    1,
	CHECKBOUNDS:   1,
	JZ:            1,
	JNZ:           1,
	JMP:           1,
	NUMFUNCARGS:   1,
	SUBREALSTACK:  1,
	LINENUM:       1,
	NEWARRAY:      1,
	NEWUSEROBJECT: 1,
	ZEROMEMORY:    1,
}

// Disassemble renders code as one text line per instruction, prefixed with
// its byte offset, in the `disasm` CLI command's output format. A relative
// jump operand is annotated with the absolute destination offset it resolves
// to for readability.
func Disassemble(w io.Writer, code []Cell) error {
	for ip := 0; ip < len(code); {
		op := Opcode(code[ip])
		n := operandCounts[op]
		if ip+1+n > len(code) {
			return fmt.Errorf("emitter: truncated instruction at offset %d", ip)
		}
		fmt.Fprintf(w, "%6d  %s", ip, op)
		for i := 0; i < n; i++ {
			arg := code[ip+1+i]
			fmt.Fprintf(w, " %d", arg)
			if IsJump(op) && i == 0 {
				fmt.Fprintf(w, " (-> %d)", ip+1+n+int(arg))
			}
		}
		fmt.Fprintln(w)
		ip += 1 + n
	}
	return nil
}
