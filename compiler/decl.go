package compiler

import (
	"golang.org/x/exp/slices"

	"github.com/scriptlang/cscompiler/callpoint"
	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/token"
)

// headerKind tags a function's PreAnalyze-recorded disposition, consulted
// by Main to detect conflicts such as two bodies for the same function
// (spec §4.8 "In PreAnalyze, function entries gain a kind-tag").
type headerKind uint8

const (
	hkPureForward headerKind = iota
	hkImport
	hkLocalBody
)

// parseTopLevelDecl dispatches on the leading qualifier run plus the next
// keyword to one of struct/enum/variable/function declaration (spec §4.8).
func (c *Compiler) parseTopLevelDecl() error {
	line := c.curLine()
	quals, err := c.parseQualifiers()
	if err != nil {
		return err
	}
	if err := c.checkQualifierLegality(quals, ctxGlobal, line); err != nil {
		return err
	}

	switch c.peek() {
	case token.SymStruct:
		return c.parseStructDecl(quals)
	case token.SymEnum:
		return c.parseEnumDecl()
	case token.SymExport:
		c.next()
		return c.parseTopLevelDecl()
	default:
		return c.parseVarOrFuncDecl(quals, ctxGlobal)
	}
}

// --- struct declarations (spec §4.8 "Struct") ---

func (c *Compiler) parseStructDecl(quals symtab.Qualifier) error {
	line := c.curLine()
	c.next() // `struct`
	nameSym := c.next()
	name := c.syms.GetName(nameSym)

	var parent token.Symbol
	if c.peek() == token.SymExtends {
		c.next()
		parent = c.next()
		pe, _ := c.syms.Get(parent)
		if quals.Has(symtab.QManaged) != pe.Flags.Has(symtab.FStructManaged) ||
			quals.Has(symtab.QBuiltin) != pe.Flags.Has(symtab.FStructBuiltin) {
			return c.errorf(diag.Declaration, line, "struct %q managed/builtin-ness must match its parent", name)
		}
	}

	sym, existing := c.syms.Find(name)
	if !existing {
		sym = c.syms.FindOrAdd(name)
	}
	entry, _ := c.syms.Get(sym)
	entry.Name = name
	entry.Kind = symtab.UndefinedStruct
	entry.Parent = parent
	entry.DeclaredAt = c.cursor()
	entry.Flags |= symtab.FStructVartype
	if quals.Has(symtab.QManaged) {
		entry.Flags |= symtab.FStructManaged
	}
	if quals.Has(symtab.QBuiltin) {
		entry.Flags |= symtab.FStructBuiltin
	}
	if quals.Has(symtab.QAutoptr) {
		entry.Flags |= symtab.FStructAutoPtr
	}
	if quals.Has(symtab.QStringstruct) {
		c.syms.SetStringStruct(sym)
	}

	if c.peek() == token.SymSemi {
		c.next()
		if !quals.Has(symtab.QManaged) {
			return c.errorf(diag.Declaration, line, "forward-declared struct %q must be managed", name)
		}
		c.syms.Set(sym, entry)
		return nil
	}

	if err := c.expect(token.SymLBrace, "{"); err != nil {
		return err
	}

	entry.Kind = symtab.Vartype
	c.syms.Set(sym, entry)

	prevStruct := c.curStruct
	c.curStruct = sym
	defer func() { c.curStruct = prevStruct }()

	offset := 0
	var children []token.Symbol
	for c.peek() != token.SymRBrace {
		memberLine := c.curLine()
		memberQuals, err := c.parseQualifiers()
		if err != nil {
			return err
		}
		if err := c.checkQualifierLegality(memberQuals, ctxStructMember, memberLine); err != nil {
			return err
		}
		memberSym, size, err := c.parseStructMember(sym, memberQuals, offset)
		if err != nil {
			return err
		}
		if memberSym.Valid() {
			children = append(children, memberSym)
			offset += size
		}
	}
	c.next() // `}`
	if err := c.expect(token.SymSemi, ";"); err != nil {
		return err
	}

	entry, _ = c.syms.Get(sym)
	entry.Children = children
	entry.Size = alignStructSize(offset)
	c.syms.Set(sym, entry)
	return nil
}

// structAlignment is the platform struct alignment tail-padding uses (spec
// §6 "structs are padded to a fixed alignment (2 or 4 bytes)").
const structAlignment = 4

func alignStructSize(size int) int {
	if r := size % structAlignment; r != 0 {
		size += structAlignment - r
	}
	return size
}

// parseStructMember parses one field/attribute/member-function declaration
// inside a struct body, mangling its name to "Struct::Member" (spec §4.3,
// §4.8). offset is the running byte offset of the struct layout so far,
// assigned to a field's Entry.Offset (a member function doesn't occupy
// layout space and ignores it).
func (c *Compiler) parseStructMember(structSym token.Symbol, quals symtab.Qualifier, offset int) (token.Symbol, int, error) {
	line := c.curLine()
	vt, err := c.parseVartypeRef(quals)
	if err != nil {
		return token.NoSymbol, 0, err
	}
	nameSym := c.next()
	memberSym := c.syms.MangleStructAndComponent(structSym, nameSym)

	if c.peek() == token.SymLParen {
		return c.parseFunctionDecl(vt, memberSym, quals, structSym, false)
	}

	entry := symtab.Entry{
		Name:       c.syms.GetName(memberSym),
		Vartype:    vt,
		Qualifiers: quals,
		Parent:     structSym,
		Scope:      0,
		DeclaredAt: c.cursor(),
		Flags:      symtab.FStructMember,
	}
	if quals.Has(symtab.QAttribute) {
		entry.Kind = symtab.Attribute
	} else {
		entry.Kind = symtab.StructComponent
	}
	size := c.syms.GetSize(vt)
	entry.Size = size
	entry.Offset = offset
	c.syms.Set(memberSym, entry)

	if err := c.expect(token.SymSemi, ";"); err != nil {
		return token.NoSymbol, 0, err
	}

	if entry.Kind == symtab.Attribute {
		c.synthesizeAttributeAccessors(structSym, nameSym, vt, quals)
	}
	return memberSym, size, nil
}

// synthesizeAttributeAccessors registers the get_X/set_X function entries
// an attribute implies (spec §4.8 "the parser synthesizes getter/setter
// function declarations"); no set_X is registered for a readonly or
// writeprotected attribute. Indexed geti_X/seti_X accessors are not
// synthesized.
func (c *Compiler) synthesizeAttributeAccessors(structSym, nameSym, vt token.Symbol, quals symtab.Qualifier) {
	name := c.syms.GetName(nameSym)
	getName := c.syms.FindOrAdd("get_" + name)
	getSym := c.syms.MangleStructAndComponent(structSym, getName)
	c.syms.Set(getSym, symtab.Entry{
		Name:              c.syms.GetName(getSym),
		Kind:              symtab.Function,
		Vartype:           vt,
		Parent:            structSym,
		FuncParamVartypes: []token.Symbol{vt},
		FuncParamDefaults: []symtab.ParamDefault{{}},
		Flags:             symtab.FStructMember,
	})
	if quals.Has(symtab.QWriteprotected) || quals.Has(symtab.QReadonly) {
		return
	}
	setName := c.syms.FindOrAdd("set_" + name)
	setSym := c.syms.MangleStructAndComponent(structSym, setName)
	voidSym, _ := c.syms.Find("void")
	c.syms.Set(setSym, symtab.Entry{
		Name:              c.syms.GetName(setSym),
		Kind:              symtab.Function,
		Vartype:           voidSym,
		Parent:            structSym,
		FuncParamVartypes: []token.Symbol{voidSym, vt},
		FuncParamDefaults: []symtab.ParamDefault{{}, {}},
		Flags:             symtab.FStructMember,
	})
}

// --- enum declarations (spec §4.8 "Enum") ---

func (c *Compiler) parseEnumDecl() error {
	c.next() // `enum`
	enumSym := c.next()
	if err := c.expect(token.SymLBrace, "{"); err != nil {
		return err
	}

	next := int32(0)
	for c.peek() != token.SymRBrace {
		itemSym := c.next()
		value := next
		if c.peek() == token.SymAssign {
			c.next()
			v, err := c.parseConstIntExpr()
			if err != nil {
				return err
			}
			value = v
		}
		next = value + 1

		// Per SPEC_FULL.md item 4, the dead `TQ::kReadonly;` expression
		// statement from the original enum-item setup is not replicated here.
		c.declareEnumItem(enumSym, itemSym, value)

		if c.peek() == token.SymComma {
			c.next()
		}
	}
	c.next() // `}`
	return c.expect(token.SymSemi, ";")
}

func (c *Compiler) declareEnumItem(enumSym, itemSym token.Symbol, value int32) {
	c.syms.Set(itemSym, symtab.Entry{
		Name:       c.syms.GetName(itemSym),
		Kind:       symtab.Constant,
		Vartype:    enumSym,
		Parent:     enumSym,
		Offset:     int(value),
		DeclaredAt: c.cursor(),
	})
}

// parseConstIntExpr parses a constant integer literal (optionally negated),
// the only form spec §4.8 allows for explicit enum values.
func (c *Compiler) parseConstIntExpr() (int32, error) {
	neg := false
	if c.peek() == token.SymMinus {
		c.next()
		neg = true
	}
	idx := c.toks.GetCursor()
	sym := c.next()
	if sym != token.SymIntLit {
		return 0, c.errorf(diag.Syntax, c.curLine(), "expected a constant integer")
	}
	v := c.toks.IntLiteral(idx)
	if neg {
		v = -v
	}
	return v, nil
}

// --- variable & function declarations (spec §4.8) ---

func (c *Compiler) parseVarOrFuncDecl(quals symtab.Qualifier, ctx declContext) error {
	vt, err := c.parseVartypeRef(quals)
	if err != nil {
		return err
	}
	noloop := false
	if c.peek() == token.SymNoloopcheck {
		c.next()
		noloop = true
	}

	structQualName := token.NoSymbol
	firstName := c.next()
	if c.peek() == token.SymScope {
		c.next()
		structQualName = firstName
		firstName = c.next()
	}
	nameSym := firstName
	if structQualName.Valid() {
		nameSym = c.syms.MangleStructAndComponent(structQualName, firstName)
	}

	if c.peek() == token.SymLParen {
		return c.parseFunctionDeclFromName(vt, nameSym, quals, structQualName, noloop)
	}
	if noloop {
		return c.errorf(diag.Syntax, c.curLine(), "noloopcheck is only valid on a function")
	}
	return c.parseVariableDecl(vt, nameSym, quals, ctx)
}

// parseVartypeRef resolves a leading vartype name, applying `const` (from
// the already-consumed qualifier prefix) and a trailing `*` (dynpointer).
func (c *Compiler) parseVartypeRef(quals symtab.Qualifier) (token.Symbol, error) {
	line := c.curLine()
	nameSym := c.next()
	kind := c.syms.GetKind(nameSym)
	if kind != symtab.Vartype && kind != symtab.UndefinedStruct {
		return token.NoSymbol, c.errorf(diag.Declaration, line, "%q is not a vartype", c.syms.GetName(nameSym))
	}
	vt := nameSym
	if quals.Has(symtab.QConst) {
		vt = c.syms.WithModifier(vt, "const", nil, token.NoSymbol)
	}
	if c.peek() == token.SymStar {
		c.next()
		vt = c.syms.WithModifier(vt, "dynpointer", nil, token.NoSymbol)
	}
	return vt, nil
}

func (c *Compiler) parseVariableDecl(vt, nameSym token.Symbol, quals symtab.Qualifier, ctx declContext) error {
	for {
		if err := c.parseOneVariable(vt, nameSym, quals, ctx); err != nil {
			return err
		}
		if c.peek() != token.SymComma {
			break
		}
		c.next()
		nameSym = c.next()
	}
	return c.expect(token.SymSemi, ";")
}

func (c *Compiler) parseOneVariable(vt, nameSym token.Symbol, quals symtab.Qualifier, ctx declContext) error {
	line := c.curLine()
	finalVT := vt
	isDynarray := false

	if c.peek() == token.SymLBrack {
		c.next()
		var dims []int
		for c.peek() != token.SymRBrack {
			n, err := c.parseConstIntExpr()
			if err != nil {
				return err
			}
			if n < 1 {
				return c.errorf(diag.Semantic, line, "array size must be >= 1")
			}
			dims = append(dims, int(n))
			if c.peek() == token.SymComma {
				c.next()
			}
		}
		c.next() // `]`
		if len(dims) == 0 {
			if c.syms.GetName(c.syms.BaseVartype(vt)) == "string" && c.opts.OldStrings {
				return c.errorf(diag.Semantic, line, "dynarray is illegal for old-style strings")
			}
			finalVT = c.syms.WithModifier(vt, "dynarray", nil, vt)
			isDynarray = true
		} else {
			finalVT = c.syms.WithModifier(vt, "array", dims, token.NoSymbol)
		}
	}

	entry := symtab.Entry{
		Name:       c.syms.GetName(nameSym),
		Vartype:    finalVT,
		Qualifiers: quals,
		DeclaredAt: c.cursor(),
		Scope:      c.nest.TopLevel(),
	}
	entry.Size = c.syms.GetSize(finalVT)

	if ctx == ctxGlobal {
		if quals.Has(symtab.QImport) {
			entry.Kind = symtab.GlobalVar
			entry.Offset = c.em.AddNewImport(callpoint.EncodeImportOrdinal(entry.Name, 0, false))
			if c.peek() == token.SymAssign {
				return c.errorf(diag.Declaration, line, "an import declaration cannot have an initializer")
			}
		} else {
			entry.Kind = symtab.GlobalVar
			var initBlob []byte
			if c.peek() == token.SymAssign {
				c.next()
				blob, err := c.parseConstInitializer(finalVT)
				if err != nil {
					return err
				}
				initBlob = blob
			}
			if !c.isPreAnalyze() {
				entry.Offset = c.em.AddGlobal(entry.Size, initBlob)
			}
		}
	} else {
		entry.Kind = symtab.LocalVar
		if frame := c.nest.Top(); frame != nil {
			if old, ok := c.syms.Get(nameSym); ok && old.Kind != symtab.NoType {
				if already := frame.AddOldDefinition(nameSym, old); already {
					return c.errorf(diag.Declaration, line, "%q is already declared in this scope", entry.Name)
				}
			} else {
				frame.AddOldDefinition(nameSym, symtab.Entry{})
			}
		}
		if c.peek() == token.SymAssign {
			c.next()
			if err := c.parseExpr(token.SymSemi, token.SymComma); err != nil {
				return err
			}
			if c.syms.IsVartypeMismatch(c.axVartype, finalVT, true) {
				return c.errorf(diag.Type, line, "cannot initialize %q with incompatible type", entry.Name)
			}
		} else if !c.isPreAnalyze() {
			c.emitZeroInit(finalVT)
		}
		if !c.isPreAnalyze() {
			entry.Offset = c.em.OffsetToLocalVarBlock
			c.em.OffsetToLocalVarBlock += entry.Size
		}
	}

	if isDynarray {
		_ = isDynarray // bounds are enforced at access time, not declaration time
	}

	c.syms.Set(nameSym, entry)
	return nil
}

// emitZeroInit emits the bytecode that zero-initializes a freshly pushed
// local of the given vartype.
func (c *Compiler) emitZeroInit(vt token.Symbol) {
	c.em.WriteCmd(emitter.ZEROMEMORY, emitter.Cell(c.syms.GetSize(vt)))
}

// parseConstInitializer parses a global variable's initializer, one of a
// (possibly negated) int/float literal or an already-declared constant
// (an enum member), and returns the little-endian byte blob to seed the
// global's slot with. Unlike an ordinary expression, this never emits
// bytecode: a global's initial value is static data copied into the
// global-data blob at link time (spec §6 "GlobalData"), not something
// computed at run time, and float initializers are stored as raw bit
// patterns so that copy stays a plain byte-copy (spec §9 "Floats as ints").
func (c *Compiler) parseConstInitializer(vt token.Symbol) ([]byte, error) {
	line := c.curLine()
	neg := false
	if c.peek() == token.SymMinus {
		c.next()
		neg = true
	}

	idx := c.toks.GetCursor()
	switch c.peek() {
	case token.SymIntLit:
		c.next()
		v := c.toks.IntLiteral(idx)
		if neg {
			v = -v
		}
		intSym, _ := c.syms.Find("int")
		if c.syms.IsVartypeMismatch(intSym, vt, true) {
			return nil, c.errorf(diag.Type, line, "initializer type mismatch")
		}
		return intBlob(v, c.syms.GetSize(vt)), nil

	case token.SymFloatLit:
		if neg {
			return nil, c.errorf(diag.Syntax, line, "expected a constant literal after '-'")
		}
		c.next()
		v := c.toks.FloatLiteral(idx)
		floatSym, _ := c.syms.Find("float")
		if c.syms.IsVartypeMismatch(floatSym, vt, true) {
			return nil, c.errorf(diag.Type, line, "initializer type mismatch")
		}
		return intBlob(int32FromFloatBits(v), c.syms.GetSize(vt)), nil

	default:
		if neg {
			return nil, c.errorf(diag.Syntax, line, "expected a constant literal after '-'")
		}
		nameSym := c.next()
		entry, ok := c.syms.Get(nameSym)
		if !ok || entry.Kind != symtab.Constant {
			return nil, c.errorf(diag.Declaration, line, "global initializer must be a constant literal or enum member")
		}
		if c.syms.IsVartypeMismatch(entry.Vartype, vt, true) {
			return nil, c.errorf(diag.Type, line, "initializer type mismatch")
		}
		return intBlob(int32(entry.Offset), c.syms.GetSize(vt)), nil
	}
}

// intBlob encodes v as size little-endian bytes (spec §6 "Cell size &
// alignment": cells are 32 bits, but a narrower global like a char or short
// only occupies its own byte width in GlobalData).
func intBlob(v int32, size int) []byte {
	blob := make([]byte, size)
	for i := 0; i < size && i < 4; i++ {
		blob[i] = byte(v >> (8 * i))
	}
	return blob
}

// --- function declarations (spec §4.8 "Function declaration") ---

func (c *Compiler) parseFunctionDeclFromName(retVT, nameSym token.Symbol, quals symtab.Qualifier, structQual token.Symbol, noloop bool) error {
	return c.parseFunctionDecl(retVT, nameSym, quals, structQual, noloop)
}

func (c *Compiler) parseFunctionDecl(retVT, nameSym token.Symbol, quals symtab.Qualifier, structQual token.Symbol, noloop bool) (token.Symbol, int, error) {
	line := c.curLine()
	if err := c.expect(token.SymLParen, "("); err != nil {
		return token.NoSymbol, 0, err
	}

	paramVTs := []token.Symbol{retVT}
	paramNames := []token.Symbol{token.NoSymbol}
	paramDefaults := []symtab.ParamDefault{{}}
	varargs := false
	extendsStruct := structQual
	isStaticExtender := false

	first := true
	for c.peek() != token.SymRParen {
		if !first {
			if err := c.expect(token.SymComma, ","); err != nil {
				return token.NoSymbol, 0, err
			}
		}
		first = false

		if c.peek() == token.SymEllipsis {
			c.next()
			varargs = true
			break
		}

		pQuals, err := c.parseQualifiers()
		if err != nil {
			return token.NoSymbol, 0, err
		}
		if err := c.checkQualifierLegality(pQuals, ctxParameter, c.curLine()); err != nil {
			return token.NoSymbol, 0, err
		}

		if len(paramVTs) == 1 && !extendsStruct.Valid() && (c.peek() == token.SymThis || c.peek() == token.SymStatic) {
			isStaticExtender = c.peek() == token.SymStatic
			c.next()
			extendsStruct = c.next()
			if isStaticExtender {
				quals |= symtab.QStatic
			}
			continue
		}

		pvt, err := c.parseVartypeRef(pQuals)
		if err != nil {
			return token.NoSymbol, 0, err
		}
		pname := c.next() // parameter name, re-declared as a local when the body is compiled

		def := symtab.ParamDefault{}
		if c.peek() == token.SymAssign {
			c.next()
			d, err := c.parseParamDefault(pvt)
			if err != nil {
				return token.NoSymbol, 0, err
			}
			def = d
		} else if len(paramDefaults) > 1 && paramDefaults[len(paramDefaults)-1].Kind != symtab.DefaultNone {
			return token.NoSymbol, 0, c.errorf(diag.Declaration, line, "a parameter without a default cannot follow one with a default")
		}
		paramVTs = append(paramVTs, pvt)
		paramNames = append(paramNames, pname)
		paramDefaults = append(paramDefaults, def)
	}
	c.next() // `)`

	funcSym := nameSym
	if extendsStruct.Valid() && !structQual.Valid() {
		funcSym = c.syms.MangleStructAndComponent(extendsStruct, nameSym)
	}

	hasBody := c.peek() == token.SymLBrace
	if hasBody {
		if quals.Has(symtab.QImport) {
			return token.NoSymbol, 0, c.errorf(diag.Declaration, line, "an import cannot have a body")
		}
	} else {
		if noloop {
			return token.NoSymbol, 0, c.errorf(diag.Declaration, line, "noloopcheck is only valid on a function body")
		}
	}

	entry, hadPrior := c.syms.Get(funcSym)
	if hadPrior && entry.Kind == symtab.Function {
		if err := c.checkFuncMatch(entry, paramVTs, paramDefaults, varargs, retVT, quals, line); err != nil {
			return token.NoSymbol, 0, err
		}
	}

	entry = symtab.Entry{
		Name:              c.syms.GetName(funcSym),
		Kind:              symtab.Function,
		Vartype:           retVT,
		Qualifiers:        quals,
		Parent:            extendsStruct,
		FuncParamVartypes: paramVTs,
		FuncParamDefaults: paramDefaults,
		Varargs:           varargs,
		DeclaredAt:        c.cursor(),
	}
	if noloop {
		entry.Flags |= symtab.FNoLoopCheck
	}

	kind := hkPureForward
	switch {
	case quals.Has(symtab.QImport):
		kind = hkImport
	case hasBody:
		kind = hkLocalBody
	}
	if c.isPreAnalyze() {
		c.headers[funcSym] = entry
	} else if prior, ok := c.headers[funcSym]; ok {
		_ = prior // Main trusts PreAnalyze's header for forward-call resolution
	}
	_ = kind

	if quals.Has(symtab.QImport) {
		ordinal := callpoint.EncodeImportOrdinal(entry.Name, len(paramVTs)-1, varargs)
		entry.Offset = c.em.AddNewImport(ordinal)
	}

	c.syms.Set(funcSym, entry)

	if !hasBody {
		return funcSym, 0, c.expect(token.SymSemi, ";")
	}
	if c.isPreAnalyze() {
		return funcSym, 0, c.skipBalancedBraces()
	}

	offset, _ := c.em.AddNewFunction(entry.Name, len(paramVTs)-1)
	entry.Offset = offset
	c.syms.Set(funcSym, entry)
	if quals.Has(symtab.QImport) {
		c.importCalls.SetFuncCallpoint(c.em, funcSym, offset)
	} else {
		c.localCalls.SetFuncCallpoint(c.em, funcSym, offset)
	}

	if noloop {
		c.em.WriteCmd(emitter.LOOPCHECKOFF)
	}

	if err := c.parseFunctionBody(funcSym, entry, extendsStruct, paramNames); err != nil {
		return funcSym, 0, err
	}
	return funcSym, entry.Size, nil
}

// checkFuncMatch verifies a re-declaration agrees with the prior one on
// kind, qualifiers (ignoring import), parameter count, varargs, return
// type, parameter types, and defaults (spec §4.8 "Matching a prior
// declaration").
func (c *Compiler) checkFuncMatch(prior symtab.Entry, paramVTs []token.Symbol, defaults []symtab.ParamDefault, varargs bool, retVT token.Symbol, quals symtab.Qualifier, line int) error {
	mask := ^symtab.QImport
	if prior.Qualifiers&mask != quals&mask {
		return c.errorf(diag.Declaration, line, "qualifiers do not match prior declaration of %q", prior.Name)
	}
	if len(prior.FuncParamVartypes) != len(paramVTs) || prior.Varargs != varargs || prior.Vartype != retVT {
		return c.errorf(diag.Declaration, line, "signature does not match prior declaration of %q", prior.Name)
	}
	if !slices.Equal(prior.FuncParamVartypes, paramVTs) {
		for i := range paramVTs {
			if prior.FuncParamVartypes[i] != paramVTs[i] {
				return c.errorf(diag.Declaration, line, "parameter %d type does not match prior declaration of %q", i, prior.Name)
			}
		}
	}
	if len(prior.FuncParamDefaults) != len(defaults) {
		return c.errorf(diag.Declaration, line, "parameter defaults do not match prior declaration of %q", prior.Name)
	}
	for i := range defaults {
		if prior.FuncParamDefaults[i] != defaults[i] {
			return c.errorf(diag.Declaration, line, "parameter %d default does not match prior declaration of %q", i, prior.Name)
		}
	}
	return nil
}

func (c *Compiler) parseParamDefault(vt token.Symbol) (symtab.ParamDefault, error) {
	if c.peek() == token.SymNull {
		c.next()
		return symtab.ParamDefault{Kind: symtab.DefaultDyn}, nil
	}
	neg := false
	if c.peek() == token.SymMinus {
		c.next()
		neg = true
	}
	idx := c.toks.GetCursor()
	switch c.next() {
	case token.SymIntLit:
		v := c.toks.IntLiteral(idx)
		if neg {
			v = -v
		}
		return symtab.ParamDefault{Kind: symtab.DefaultInt, Int: v}, nil
	case token.SymFloatLit:
		v := c.toks.FloatLiteral(idx)
		if neg {
			v = -v
		}
		return symtab.ParamDefault{Kind: symtab.DefaultFloat, Float: v}, nil
	}
	return symtab.ParamDefault{}, c.errorf(diag.Syntax, c.curLine(), "illegal parameter default")
}

// skipBalancedBraces consumes a `{ ... }` body without interpreting it, the
// PreAnalyze behavior spec §2 describes ("collecting function headers...
// re-reads the token stream in Main").
func (c *Compiler) skipBalancedBraces() error {
	if err := c.expect(token.SymLBrace, "{"); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		if c.toks.ReachedEOF() {
			return c.errorf(diag.Syntax, c.curLine(), "unexpected end of input inside function body")
		}
		switch c.next() {
		case token.SymLBrace:
			depth++
		case token.SymRBrace:
			depth--
		}
	}
	return nil
}

