package borrow

import (
	"strings"

	"tuff/internal/ast"
)

// place is a canonical access path: base is the owning variable, path spells
// the access with `.field` and `[]` segments (all indices collapse to `[]`).
type place struct {
	base string
	path string
}

func (p place) indexed() bool {
	return strings.Contains(p.path, "[]")
}

// placeOf returns the place named by an identifier, member or index
// expression; anything else is not a place.
func placeOf(b *ast.Builder, id ast.ExprID) (place, bool) {
	expr := b.Exprs.Get(id)
	if expr == nil {
		return place{}, false
	}
	switch expr.Kind {
	case ast.ExprIdent:
		data, _ := b.Exprs.Ident(id)
		name := b.Name(data.Name)
		return place{base: name, path: name}, true
	case ast.ExprMember:
		data, _ := b.Exprs.Member(id)
		p, ok := placeOf(b, data.Target)
		if !ok {
			return place{}, false
		}
		return place{base: p.base, path: p.path + "." + b.Name(data.Field)}, true
	case ast.ExprIndex:
		data, _ := b.Exprs.Index(id)
		p, ok := placeOf(b, data.Target)
		if !ok {
			return place{}, false
		}
		return place{base: p.base, path: p.path + "[]"}, true
	}
	return place{}, false
}

// conflicts reports whether two places may alias. Equal paths conflict and a
// path conflicts with its own sub-paths, compared field by field. Once either
// side goes through an index the index segments are ignored.
func (p place) conflicts(q place) bool {
	if p.base != q.base {
		return false
	}
	a, b := p.path, q.path
	if p.indexed() || q.indexed() {
		a = strings.ReplaceAll(a, "[]", "")
		b = strings.ReplaceAll(b, "[]", "")
	}
	return a == b || strings.HasPrefix(a, b+".") || strings.HasPrefix(b, a+".")
}
