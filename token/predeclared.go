package token

// Predeclared symbol handles. These occupy the low end of the Symbol space
// (<= MaxPredefined) and are installed into a fresh SymbolTable by
// compiler.Bootstrap before any token stream is read, mirroring the way the
// scanner's own keyword/punctuation table is expected to line up with the
// parser's.
const (
	symZero Symbol = iota // NoSymbol, already 0

	SymIdent
	SymIntLit
	SymFloatLit
	SymStringLit

	SymPlus
	SymMinus
	SymStar
	SymSlash
	SymPercent
	SymAmpAmp
	SymPipePipe
	SymBang
	SymLt
	SymLe
	SymGt
	SymGe
	SymEqEq
	SymNotEq
	SymAssign
	SymPlusEq
	SymMinusEq
	SymStarEq
	SymSlashEq
	SymPlusPlus
	SymMinusMinus
	SymQuestion
	SymColon
	SymScope
	SymComma
	SymSemi
	SymDot
	SymEllipsis
	SymLParen
	SymRParen
	SymLBrack
	SymRBrack
	SymLBrace
	SymRBrace
	SymAmp
	SymPipe
	SymCaret
	SymTilde

	SymIf
	SymElse
	SymWhile
	SymDo
	SymFor
	SymSwitch
	SymCase
	SymDefault
	SymBreak
	SymContinue
	SymReturn
	SymStruct
	SymEnum
	SymExtends
	SymImport
	SymExport
	SymNew
	SymNull
	SymThis

	SymStatic
	SymConst
	SymAutoptr
	SymBuiltin
	SymManaged
	SymProtected
	SymReadonly
	SymWriteprotected
	SymStringstruct
	SymNoloopcheck
	SymAttribute

	SymVoid
	SymInt
	SymShort
	SymChar
	SymLong
	SymByte
	SymFloat
	SymString

	maxPredeclared
)

func init() {
	if maxPredeclared > MaxPredefined {
		panic("token: too many predeclared symbols for MaxPredefined")
	}
}

var predeclaredNames = map[Symbol]string{
	SymPlus: "+", SymMinus: "-", SymStar: "*", SymSlash: "/", SymPercent: "%",
	SymAmpAmp: "&&", SymPipePipe: "||", SymBang: "!",
	SymLt: "<", SymLe: "<=", SymGt: ">", SymGe: ">=", SymEqEq: "==", SymNotEq: "!=",
	SymAssign: "=", SymPlusEq: "+=", SymMinusEq: "-=", SymStarEq: "*=", SymSlashEq: "/=",
	SymPlusPlus: "++", SymMinusMinus: "--",
	SymQuestion: "?", SymColon: ":", SymScope: "::", SymComma: ",", SymSemi: ";",
	SymDot: ".", SymEllipsis: "...",
	SymLParen: "(", SymRParen: ")", SymLBrack: "[", SymRBrack: "]", SymLBrace: "{", SymRBrace: "}",
	SymAmp: "&", SymPipe: "|", SymCaret: "^", SymTilde: "~",
	SymIf: "if", SymElse: "else", SymWhile: "while", SymDo: "do", SymFor: "for",
	SymSwitch: "switch", SymCase: "case", SymDefault: "default",
	SymBreak: "break", SymContinue: "continue", SymReturn: "return",
	SymStruct: "struct", SymEnum: "enum", SymExtends: "extends",
	SymImport: "import", SymExport: "export", SymNew: "new", SymNull: "null", SymThis: "this",
	SymStatic: "static", SymConst: "const", SymAutoptr: "autoptr", SymBuiltin: "builtin",
	SymManaged: "managed", SymProtected: "protected", SymReadonly: "readonly",
	SymWriteprotected: "writeprotected", SymStringstruct: "stringstruct", SymNoloopcheck: "noloopcheck",
	SymAttribute: "attribute",
	SymVoid:      "void", SymInt: "int", SymShort: "short", SymChar: "char", SymLong: "long",
	SymByte: "byte", SymFloat: "float", SymString: "string",
}

// PredeclaredName returns the fixed spelling of a predeclared symbol, or ""
// if sym does not name one.
func PredeclaredName(sym Symbol) string { return predeclaredNames[sym] }

// binaryPriority maps a binary operator symbol to its "least binding
// wins" priority number used by the expression-span scan (spec §4.6):
// larger number binds less tightly.
var binaryPriority = map[Symbol]int{
	SymPipePipe: 15,
	SymAmpAmp:   14,
	SymPipe:     13,
	SymCaret:    12,
	SymAmp:      11,
	SymEqEq:     10, SymNotEq: 10,
	SymLt: 9, SymLe: 9, SymGt: 9, SymGe: 9,
	SymPlus: 8, SymMinus: 8,
	SymStar: 7, SymSlash: 7, SymPercent: 7,
}

// ternaryPriority places `?` below every binary operator: once a `?` is seen
// at span-outer nesting it always wins the split, since the ternary's
// condition is everything to its left.
const ternaryPriority = 0

// unaryOnly are operators that are never binary.
var unaryOnly = map[Symbol]bool{
	SymBang: true,
	SymNew:  true,
}

// maybeUnary are operators that are binary when an operand immediately
// precedes them and unary otherwise (only `-` in this language).
var maybeUnary = map[Symbol]bool{
	SymMinus: true,
}

// BinaryPriority reports the split priority of a binary operator symbol.
func BinaryPriority(sym Symbol) (int, bool) {
	p, ok := binaryPriority[sym]
	return p, ok
}

// IsUnaryOnly reports whether sym is only ever a unary operator.
func IsUnaryOnly(sym Symbol) bool { return unaryOnly[sym] }

// CanBeUnary reports whether sym can act as a unary operator depending on
// context (only `-`).
func CanBeUnary(sym Symbol) bool { return maybeUnary[sym] }

// IsOperator reports whether sym is any recognized operator symbol (unary,
// binary, or ternary `?`), the set the expression span scanner classifies
// as "operator" rather than "operand" (spec §4.6).
func IsOperator(sym Symbol) bool {
	if sym == SymQuestion {
		return true
	}
	if unaryOnly[sym] || maybeUnary[sym] {
		return true
	}
	_, ok := binaryPriority[sym]
	return ok
}

// IsAssignOp reports whether sym is a simple or compound assignment
// operator (handled by the access engine's assignment sink, not the
// expression parser).
func IsAssignOp(sym Symbol) bool {
	switch sym {
	case SymAssign, SymPlusEq, SymMinusEq, SymStarEq, SymSlashEq:
		return true
	}
	return false
}

// IsQualifierKeyword reports whether sym is a declaration qualifier keyword
// (spec §4.8).
func IsQualifierKeyword(sym Symbol) bool {
	switch sym {
	case SymStatic, SymConst, SymAutoptr, SymBuiltin, SymManaged, SymProtected,
		SymReadonly, SymWriteprotected, SymStringstruct, SymNoloopcheck, SymAttribute:
		return true
	}
	return false
}
