// Package symtab implements the interned identifier table and nested-scope
// bookkeeping described in spec §3/§4.3: a single monotonic table of
// SymbolTableEntry values addressed by a stable Symbol handle, plus the
// vartype composition and compatibility queries the rest of the compiler
// relies on.
package symtab

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"

	"github.com/scriptlang/cscompiler/token"
)

// Kind is the classification of a SymbolTableEntry (spec §3).
type Kind uint8

const (
	NoType Kind = iota
	Keyword
	Operator
	Vartype
	UndefinedStruct
	Function
	Attribute
	StructComponent
	Constant
	LiteralInt
	LiteralFloat
	LiteralString
	GlobalVar
	LocalVar
	Assign
	AssignMod
	AssignSOp
)

// Qualifier is one bit of the qualifier set carried by a SymbolTableEntry
// (spec §3).
type Qualifier uint16

const (
	QAttribute Qualifier = 1 << iota
	QAutoptr
	QBuiltin
	QConst
	QImport
	QManaged
	QProtected
	QReadonly
	QStatic
	QStringstruct
	QWriteprotected
)

func (q Qualifier) Has(flag Qualifier) bool { return q&flag != 0 }

// Flag is one bit of the struct-membership/compile-bookkeeping flags
// carried by a SymbolTableEntry (spec §3).
type Flag uint8

const (
	FStructMember Flag = 1 << iota
	FStructVartype
	FStructManaged
	FStructBuiltin
	FStructAutoPtr
	FNoLoopCheck
	FAccessed
)

func (f Flag) Has(flag Flag) bool { return f&flag != 0 }

// ParamDefaultKind tags the variant held in a ParamDefault.
type ParamDefaultKind uint8

const (
	DefaultNone ParamDefaultKind = iota
	DefaultInt
	DefaultFloat
	DefaultDyn // the only legal value is a null literal
)

// ParamDefault is the tagged union of a function parameter's default value
// (spec §3: funcParamDefaults).
type ParamDefault struct {
	Kind  ParamDefaultKind
	Int   int32
	Float float32
}

// modifier is a bit describing how a compound vartype was derived from its
// base (spec §3: "Vartype composition").
type modifier uint8

const (
	modConst modifier = 1 << iota
	modDynpointer
	modDynarray
	modArray
)

// Entry is a SymbolTableEntry (spec §3).
type Entry struct {
	Name       string
	Kind       Kind
	Vartype    token.Symbol
	Qualifiers Qualifier
	Offset     int
	Scope      int
	Size       int
	Parent     token.Symbol
	Children   []token.Symbol

	FuncParamVartypes []token.Symbol    // index 0 is the return type
	FuncParamDefaults []ParamDefault    // parallel to FuncParamVartypes
	Varargs           bool

	DeclaredAt token.Cursor
	Flags      Flag

	// vartype composition bookkeeping, set only for entries that are
	// themselves compound vartypes (see WithModifier/WithoutModifier).
	baseVartype  token.Symbol
	mods         modifier
	arrayDims    []int // classic array dimensions, outermost first
	elemVartype  token.Symbol
}

// Table is the interned identifier table (spec §4.3). Handles are stable for
// the lifetime of the compilation unit: PreAnalyze assigns handles that Main
// must see unchanged (the symbol-handle-stability testable property).
type Table struct {
	names   *swiss.Map[string, token.Symbol]
	entries []Entry // index 0 unused, so the zero Symbol stays "no symbol"

	stringStruct token.Symbol // designated managed wrapper for old-style strings, or NoSymbol
	thisSym      token.Symbol
}

// New creates a Table with its zero entry reserved so token.NoSymbol never
// resolves to a real entry.
func New() *Table {
	t := &Table{
		names:   swiss.NewMap[string, token.Symbol](64),
		entries: make([]Entry, 1),
	}
	return t
}

// FindOrAdd interns name, returning its existing handle or allocating a new
// NoType entry for it.
func (t *Table) FindOrAdd(name string) token.Symbol {
	if sym, ok := t.names.Get(name); ok {
		return sym
	}
	sym := t.add(Entry{Name: name})
	return sym
}

func (t *Table) add(e Entry) token.Symbol {
	sym := token.Symbol(len(t.entries))
	t.entries = append(t.entries, e)
	if e.Name != "" {
		t.names.Put(e.Name, sym)
	}
	return sym
}

// Find returns the handle for name if already interned.
func (t *Table) Find(name string) (token.Symbol, bool) {
	return t.names.Get(name)
}

// DefinePredeclared installs a fixed-index keyword/operator entry. Callers
// (the scanner bootstrap) must call this only for handles <= MaxPredefined,
// in ascending handle order, before any FindOrAdd call.
func (t *Table) DefinePredeclared(sym token.Symbol, e Entry) {
	for token.Symbol(len(t.entries)) <= sym {
		t.entries = append(t.entries, Entry{})
	}
	t.entries[sym] = e
	if e.Name != "" {
		t.names.Put(e.Name, sym)
	}
}

func (t *Table) entry(sym token.Symbol) *Entry {
	if !sym.Valid() || int(sym) >= len(t.entries) {
		return nil
	}
	return &t.entries[sym]
}

// Len returns one past the highest handle ever assigned, the bound an
// introspection tool (the `dump-symbols` CLI command) walks from just above
// token.MaxPredefined to list every symbol the compiler interned.
func (t *Table) Len() int { return len(t.entries) }

// Get returns a copy of the entry for sym. Ok is false for an invalid or
// unassigned handle.
func (t *Table) Get(sym token.Symbol) (Entry, bool) {
	e := t.entry(sym)
	if e == nil {
		return Entry{}, false
	}
	return *e, true
}

// Set overwrites the entry for sym in place (used by DeclarationParser to
// flesh out a previously forward-declared entry, and by NestingStack to
// restore a shadowed definition).
func (t *Table) Set(sym token.Symbol, e Entry) {
	if ent := t.entry(sym); ent != nil {
		*ent = e
		if e.Name != "" {
			t.names.Put(e.Name, sym)
		}
	}
}

func (t *Table) GetName(sym token.Symbol) string {
	if e := t.entry(sym); e != nil {
		return e.Name
	}
	return ""
}

func (t *Table) GetKind(sym token.Symbol) Kind {
	if e := t.entry(sym); e != nil {
		return e.Kind
	}
	return NoType
}

func (t *Table) GetVartype(sym token.Symbol) token.Symbol {
	if e := t.entry(sym); e != nil {
		return e.Vartype
	}
	return token.NoSymbol
}

func (t *Table) GetSize(sym token.Symbol) int {
	if e := t.entry(sym); e != nil {
		return e.Size
	}
	return 0
}

// SetStringStruct records the designated managed wrapper type for old-style
// strings, either from the struct declaration carrying the `stringstruct`
// qualifier or from the compiler's configured string-struct name (spec §3,
// §6).
func (t *Table) SetStringStruct(sym token.Symbol) { t.stringStruct = sym }
func (t *Table) StringStruct() token.Symbol        { return t.stringStruct }

func (t *Table) SetThis(sym token.Symbol) { t.thisSym = sym }
func (t *Table) This() token.Symbol       { return t.thisSym }

// MangleStructAndComponent produces and interns "S::C" for a struct
// component name (spec §4.3).
func (t *Table) MangleStructAndComponent(structSym, compSym token.Symbol) token.Symbol {
	name := t.GetName(structSym) + "::" + t.GetName(compSym)
	return t.FindOrAdd(name)
}

// SplitMangled splits a "S::C" name back into its parts; ok is false if name
// does not contain "::".
func SplitMangled(name string) (structName, compName string, ok bool) {
	i := strings.Index(name, "::")
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+2:], true
}

// --- vartype composition & queries (spec §3 "Vartype composition") ---

// WithModifier returns the (possibly newly interned) symbol for base with
// the given modifier applied. dims is only consulted when applying an Array
// modifier, and elem is only consulted when applying a Dynarray modifier.
func (t *Table) WithModifier(base token.Symbol, mod string, dims []int, elem token.Symbol) token.Symbol {
	baseEntry, _ := t.Get(base)
	var m modifier
	var key string
	switch mod {
	case "const":
		m = modConst
		key = "const " + baseEntry.Name
	case "dynpointer":
		m = modDynpointer
		key = baseEntry.Name + "*"
	case "dynarray":
		m = modDynarray
		key = baseEntry.Name + "[]"
	case "array":
		m = modArray
		var b strings.Builder
		b.WriteString(baseEntry.Name)
		for _, d := range dims {
			fmt.Fprintf(&b, "[%d]", d)
		}
		key = b.String()
	default:
		panic("symtab: unknown vartype modifier " + mod)
	}

	if sym, ok := t.Find(key); ok {
		return sym
	}

	size := baseEntry.Size
	switch m {
	case modDynpointer:
		size = 4 // one cell, spec §6 "Cell size & alignment"
	case modDynarray:
		size = 4
	case modArray:
		n := 1
		for _, d := range dims {
			n *= d
		}
		size = baseEntry.Size * n
	}

	sym := t.add(Entry{
		Name:        key,
		Kind:        Vartype,
		baseVartype: base,
		mods:        baseEntry.mods | m,
		arrayDims:   dims,
		elemVartype: elem,
		Size:        size,
	})
	return sym
}

// WithoutModifier returns the symbol for the base vartype with mod removed,
// reverting to (or re-interning) the underlying composition.
func (t *Table) WithoutModifier(sym token.Symbol, mod string) token.Symbol {
	e, ok := t.Get(sym)
	if !ok {
		return sym
	}
	switch mod {
	case "const":
		return e.baseVartype
	case "dynpointer", "dynarray", "array":
		return e.baseVartype
	}
	return sym
}

// BaseVartype strips every modifier, returning the innermost named type.
func (t *Table) BaseVartype(sym token.Symbol) token.Symbol {
	e, ok := t.Get(sym)
	for ok && e.baseVartype.Valid() {
		sym = e.baseVartype
		e, ok = t.Get(sym)
	}
	return sym
}

func (t *Table) IsConst(sym token.Symbol) bool {
	e, _ := t.Get(sym)
	return e.mods&modConst != 0
}

func (t *Table) IsDynpointer(sym token.Symbol) bool {
	e, _ := t.Get(sym)
	return e.mods&modDynpointer != 0
}

func (t *Table) IsDynarray(sym token.Symbol) bool {
	e, _ := t.Get(sym)
	return e.mods&modDynarray != 0
}

func (t *Table) IsArray(sym token.Symbol) bool {
	e, _ := t.Get(sym)
	return e.mods&modArray != 0
}

func (t *Table) IsManaged(sym token.Symbol) bool {
	if t.IsDynpointer(sym) || t.IsDynarray(sym) {
		return true
	}
	e, _ := t.Get(sym)
	return e.Flags.Has(FStructManaged)
}

func (t *Table) IsStruct(sym token.Symbol) bool {
	base := t.BaseVartype(sym)
	e, ok := t.Get(base)
	return ok && (e.Kind == Vartype || e.Kind == UndefinedStruct) && e.Flags.Has(FStructVartype)
}

func (t *Table) IsAnyInteger(sym token.Symbol) bool {
	base := t.BaseVartype(sym)
	name := t.GetName(base)
	switch name {
	case "int", "short", "char", "long", "byte":
		return true
	}
	return false
}

// ElemVartype returns the element vartype of a dynarray, or NoSymbol.
func (t *Table) ElemVartype(sym token.Symbol) token.Symbol {
	e, _ := t.Get(sym)
	return e.elemVartype
}

// NumArrayElements returns the product of a classic array's dimensions, or 0
// if sym is not an array.
func (t *Table) NumArrayElements(sym token.Symbol) int {
	e, ok := t.Get(sym)
	if !ok || e.mods&modArray == 0 {
		return 0
	}
	n := 1
	for _, d := range e.arrayDims {
		n *= d
	}
	return n
}

// ArrayDims returns the classic array's dimensions, outermost first.
func (t *Table) ArrayDims(sym token.Symbol) []int {
	e, _ := t.Get(sym)
	return e.arrayDims
}
