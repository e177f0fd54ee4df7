package symtab

import "github.com/scriptlang/cscompiler/token"

// IsVartypeMismatch implements the one-way vartype compatibility check of
// spec §4.6 ("is -> wantsToBe"). When orderMatters is false, either
// direction being legal is accepted (used by the type-promotion
// commutativity testable property).
func (t *Table) IsVartypeMismatch(is, wantsToBe token.Symbol, orderMatters bool) bool {
	if t.compatible(is, wantsToBe) {
		return false
	}
	if !orderMatters && t.compatible(wantsToBe, is) {
		return false
	}
	return true
}

func (t *Table) compatible(is, wantsToBe token.Symbol) bool {
	if is == wantsToBe {
		return true
	}

	isName := t.GetName(t.BaseVartype(is))
	wantName := t.GetName(t.BaseVartype(wantsToBe))

	// void converts to nothing.
	if isName == "void" {
		return false
	}

	// null converts to any dynpointer or dynarray.
	if isName == "null" {
		return t.IsDynpointer(wantsToBe) || t.IsDynarray(wantsToBe)
	}

	// const X does not convert to non-const X.
	if t.IsConst(is) && !t.IsConst(wantsToBe) {
		return false
	}

	// the string-struct dynpointer <-> const string conversion.
	ss := t.stringStruct
	if ss.Valid() {
		isStringStructPtr := t.IsDynpointer(is) && t.BaseVartype(is) == ss
		wantStringStructPtr := t.IsDynpointer(wantsToBe) && t.BaseVartype(wantsToBe) == ss
		isConstString := isName == "string" && t.IsConst(is)
		wantConstString := wantName == "string" && t.IsConst(wantsToBe)

		if isStringStructPtr && wantConstString {
			return true
		}
		if isConstString && wantStringStructPtr {
			return true
		}
	}

	isFloat := isName == "float"
	wantFloat := wantName == "float"
	if isFloat != wantFloat {
		return false
	}
	if isFloat && wantFloat {
		return true
	}

	// any small integer kind converts to int.
	if t.IsAnyInteger(is) && t.IsAnyInteger(wantsToBe) {
		return true
	}

	if t.IsDynarray(is) && t.IsDynarray(wantsToBe) {
		return t.ElemVartype(is) == t.ElemVartype(wantsToBe)
	}

	if t.IsDynpointer(is) && t.IsDynpointer(wantsToBe) {
		isStruct := t.BaseVartype(is)
		wantStruct := t.BaseVartype(wantsToBe)
		for s := isStruct; s.Valid(); {
			if s == wantStruct {
				return true
			}
			e, ok := t.Get(s)
			if !ok {
				break
			}
			s = e.Parent
		}
		return false
	}

	// struct-by-value and classic arrays require exact identity, already
	// handled by the is==wantsToBe check above.
	return false
}
