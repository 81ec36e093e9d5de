package types

import (
	"math"
	"slices"

	"tuff/internal/ast"
)

// Decls is the declaration view the resolver needs. symbols.Table implements it.
type Decls interface {
	// AliasTarget returns the aliased type of a type alias.
	AliasTarget(name string) (*Type, bool)
	// IsDeclaredType reports struct, enum, alias and extern type names.
	IsDeclaredType(name string) bool
}

// Resolver maps type expressions to Info. It is stateless apart from the
// read-only declarations and safe for concurrent use.
type Resolver struct {
	decls Decls
}

func NewResolver(decls Decls) *Resolver {
	return &Resolver{decls: decls}
}

// Resolve returns the Info of t; nil resolves to Unknown.
func (r *Resolver) Resolve(t *Type) Info {
	return r.resolve(t, nil)
}

// IsKnownTypeName reports whether name is a primitive or a declared type,
// i.e. cannot be a generic parameter.
func (r *Resolver) IsKnownTypeName(name string) bool {
	if IsBuiltin(name) {
		return true
	}
	return r.decls != nil && r.decls.IsDeclaredType(name)
}

// seen is the chain of aliases being expanded on the current path.
func (r *Resolver) resolve(t *Type, seen []string) Info {
	if t == nil {
		return Unknown()
	}
	switch t.Kind {
	case KindNamed:
		return r.resolveNamed(t, seen)
	case KindRefinement:
		return refine(r.resolve(t.Elem, seen), t.Op, t.Value)
	case KindUnion:
		left := r.resolve(t.Left, seen)
		right := r.resolve(t.Right, seen)
		tags := make([]string, 0, 4)
		for _, side := range []Info{left, right} {
			if len(side.UnionTags) > 0 && side.Type != nil && side.Type.Kind == KindUnion {
				tags = append(tags, side.UnionTags...)
				continue
			}
			if !side.IsUnknown() {
				tags = append(tags, side.Name)
			}
		}
		return Info{
			Name:      left.Name + "|" + right.Name,
			UnionTags: dedupe(tags),
			Type:      t,
		}
	case KindArray:
		return Info{Name: NameArray, ArrayInit: t.Init, ArrayTotal: t.Total, Type: t}
	case KindPointer:
		inner := r.resolve(t.Elem, seen)
		inner.Name = NameOf(&Type{Kind: KindPointer, Elem: Named(inner.Name), Mutable: t.Mutable})
		inner.Type = t
		return inner
	case KindTuple:
		return Info{Name: "Tuple", Type: t}
	}
	return Unknown()
}

func (r *Resolver) resolveNamed(t *Type, seen []string) Info {
	lo, hi := RangeOf(t.Name)
	info := Info{Name: t.Name, Min: lo, Max: hi, Type: t}
	if r.decls == nil || slices.Contains(seen, t.Name) {
		return info.Normalize()
	}
	target, ok := r.decls.AliasTarget(t.Name)
	if !ok {
		return info.Normalize()
	}
	aliased := r.resolve(target, append(slices.Clip(seen), t.Name))
	info.UnionTags = aliased.UnionTags
	info.Min = tighterMin(info.Min, aliased.Min)
	info.Max = tighterMax(info.Max, aliased.Max)
	info.NonZero = aliased.NonZero
	info.ArrayInit = aliased.ArrayInit
	info.ArrayTotal = aliased.ArrayTotal
	if aliased.IsNullablePointer() {
		// keep the union so guards can narrow values of the alias
		info.Type = aliased.Type
	}
	return info.Normalize()
}

// refine tightens base by `where op lit`.
func refine(base Info, op ast.ExprBinaryOp, lit Bound) Info {
	if !lit.Known {
		return base
	}
	v := lit.V
	switch op {
	case ast.ExprBinaryNotEq:
		if v == 0 {
			base.NonZero = true
		}
	case ast.ExprBinaryLess:
		if v != math.MinInt64 {
			base.Max = tighterMax(base.Max, Exact(v-1))
		}
	case ast.ExprBinaryLessEq:
		base.Max = tighterMax(base.Max, Exact(v))
	case ast.ExprBinaryGreater:
		if v != math.MaxInt64 {
			base.Min = tighterMin(base.Min, Exact(v+1))
		}
	case ast.ExprBinaryGreaterEq:
		base.Min = tighterMin(base.Min, Exact(v))
	case ast.ExprBinaryEq:
		base.Min = tighterMin(base.Min, Exact(v))
		base.Max = tighterMax(base.Max, Exact(v))
	}
	return base.Normalize()
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
