package emitter

// Opcode is the abstract machine opcode surface the core depends on (spec
// §6). Runtime execution semantics are out of scope; only the shapes the
// emitter needs to produce are modeled here.
type Opcode uint8

const ( //nolint:revive
	NOP Opcode = iota

	LITTOREG
	REGTOREG
	MEMREAD
	MEMREADB
	MEMREADW
	MEMWRITE
	MEMWRITEB
	MEMWRITEW
	MEMREADPTR
	MEMWRITEPTR
	MEMINITPTR
	MEMZEROPTR
	MEMZEROPTRND
	LOADSPOFFS
	CHECKNULL
	CHECKNULLREG

	ADD
	SUB
	MUL
	ADDREG
	SUBREG
	MULREG
	DIVREG

	GREATER
	GTE
	LESSTHAN
	LTE
	ISEQUAL
	NOTEQUAL

	FGREATER
	FGTE
	FLESSTHAN
	FLTE
	FISEQUAL
	FNOTEQUAL
	FADDREG
	FSUBREG
	FMULREG
	FDIVREG

	STRINGSEQUAL
	STRINGSNOTEQ

	NOTREG
	AND
	OR

	JZ
	JNZ
	JMP

	CALL
	CALLEXT
	CALLOBJ
	NUMFUNCARGS
	PUSHREG
	POPREG
	PUSHREAL
	SUBREALSTACK
	RET

	LINENUM
	THISBASE
	LOOPCHECKOFF

	CHECKBOUNDS
	DYNAMICBOUNDS
	NEWARRAY
	NEWUSEROBJECT
	CREATESTRING
	ZEROMEMORY
)

var opcodeNames = [...]string{
	NOP:           "nop",
	LITTOREG:      "littoreg",
	REGTOREG:      "regtoreg",
	MEMREAD:       "memread",
	MEMREADB:      "memreadb",
	MEMREADW:      "memreadw",
	MEMWRITE:      "memwrite",
	MEMWRITEB:     "memwriteb",
	MEMWRITEW:     "memwritew",
	MEMREADPTR:    "memreadptr",
	MEMWRITEPTR:   "memwriteptr",
	MEMINITPTR:    "meminitptr",
	MEMZEROPTR:    "memzeroptr",
	MEMZEROPTRND:  "memzeroptrnd",
	LOADSPOFFS:    "loadspoffs",
	CHECKNULL:     "checknull",
	CHECKNULLREG:  "checknullreg",
	ADD:           "add",
	SUB:           "sub",
	MUL:           "mul",
	ADDREG:        "addreg",
	SUBREG:        "subreg",
	MULREG:        "mulreg",
	DIVREG:        "divreg",
	GREATER:       "greater",
	GTE:           "gte",
	LESSTHAN:      "lessthan",
	LTE:           "lte",
	ISEQUAL:       "isequal",
	NOTEQUAL:      "notequal",
	FGREATER:      "fgreater",
	FGTE:          "fgte",
	FLESSTHAN:     "flessthan",
	FLTE:          "flte",
	FISEQUAL:      "fisequal",
	FNOTEQUAL:     "fnotequal",
	FADDREG:       "faddreg",
	FSUBREG:       "fsubreg",
	FMULREG:       "fmulreg",
	FDIVREG:       "fdivreg",
	STRINGSEQUAL:  "stringsequal",
	STRINGSNOTEQ:  "stringsnoteq",
	NOTREG:        "notreg",
	AND:           "and",
	OR:            "or",
	JZ:            "jz",
	JNZ:           "jnz",
	JMP:           "jmp",
	CALL:          "call",
	CALLEXT:       "callext",
	CALLOBJ:       "callobj",
	NUMFUNCARGS:   "numfuncargs",
	PUSHREG:       "pushreg",
	POPREG:        "popreg",
	PUSHREAL:      "pushreal",
	SUBREALSTACK:  "subrealstack",
	RET:           "ret",
	LINENUM:       "linenum",
	THISBASE:      "thisbase",
	LOOPCHECKOFF:  "loopcheckoff",
	CHECKBOUNDS:   "checkbounds",
	DYNAMICBOUNDS: "dynamicbounds",
	NEWARRAY:      "newarray",
	NEWUSEROBJECT: "newuserobject",
	CREATESTRING:  "createstring",
	ZEROMEMORY:    "zeromemory",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "illegal opcode"
}

// jumpOpcodes are opcodes whose sole argument is a relative jump distance,
// the only argument kind the forward/backward jump machinery patches.
var jumpOpcodes = map[Opcode]bool{
	JZ:  true,
	JNZ: true,
	JMP: true,
}

func IsJump(op Opcode) bool { return jumpOpcodes[op] }
