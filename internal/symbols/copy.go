package symbols

import (
	"slices"
	"strings"

	"tuff/internal/types"
)

// Примитивы, которые всегда копируются.
var copyPrimitives = map[string]bool{
	"I8": true, "I16": true, "I32": true, "I64": true, "I128": true,
	"U8": true, "U16": true, "U32": true, "U64": true, "U128": true,
	"USize": true, "ISize": true, "F32": true, "F64": true,
	"Bool": true, "Char": true,
	// built-in handle containers
	"Vec": true, "Map": true, "Set": true,
}

func builtinCopy(name string) bool {
	if name == "" || name == types.NameUnknown {
		return false
	}
	return strings.HasPrefix(name, "*") || copyPrimitives[name]
}

// IsCopyName reports whether values named by the canonical type name may be
// duplicated without a move. Pointers and primitives always copy; structs and
// enums only when marked; a copy alias only when its target copies.
func (t *Table) IsCopyName(name string) bool {
	if builtinCopy(name) {
		return true
	}
	if s, ok := t.Structs[name]; ok {
		return s.Copy
	}
	if e, ok := t.Enums[name]; ok {
		return e.Copy
	}
	if t.ExternTypes[name] {
		return false
	}
	if a, ok := t.Aliases[name]; ok && a.Copy {
		return t.copyable(a.Target, []string{name})
	}
	return false
}

// copyable walks a type expression; visiting guards alias cycles, which are
// never copyable.
func (t *Table) copyable(ty *types.Type, visiting []string) bool {
	if ty == nil {
		return false
	}
	switch ty.Kind {
	case types.KindNamed:
		name := ty.Name
		if builtinCopy(name) {
			return true
		}
		if s, ok := t.Structs[name]; ok {
			return s.Copy
		}
		if e, ok := t.Enums[name]; ok {
			return e.Copy
		}
		if t.ExternTypes[name] {
			return false
		}
		a, ok := t.Aliases[name]
		if !ok || !a.Copy || slices.Contains(visiting, name) {
			return false
		}
		return t.copyable(a.Target, append(slices.Clip(visiting), name))
	case types.KindRefinement:
		return t.copyable(ty.Elem, visiting)
	case types.KindPointer:
		return true
	case types.KindUnion:
		return t.copyable(ty.Left, visiting) && t.copyable(ty.Right, visiting)
	case types.KindTuple:
		for _, m := range ty.Members {
			if !t.copyable(m, visiting) {
				return false
			}
		}
		return true
	}
	return false
}

// InvalidCopyAlias returns the first alias, in declaration order, that is
// marked copy but aliases a type that is not copyable.
func (t *Table) InvalidCopyAlias() *Alias {
	for _, name := range t.aliasOrder {
		a := t.Aliases[name]
		if a.Copy && !t.copyable(a.Target, []string{name}) {
			return a
		}
	}
	return nil
}
