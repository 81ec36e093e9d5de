package types

import (
	"tuff/internal/ast"
)

// FromAST lowers a decoded type expression. NoTypeID lowers to nil.
func FromAST(b *ast.Builder, id ast.TypeID) *Type {
	te := b.Types.Get(id)
	if te == nil {
		return nil
	}
	switch te.Kind {
	case ast.TypeExprNamed:
		data, _ := b.Types.NamedType(id)
		args := make([]*Type, 0, len(data.Args))
		for _, a := range data.Args {
			args = append(args, FromAST(b, a))
		}
		return Named(b.Name(data.Name), args...)
	case ast.TypeExprRefinement:
		data, _ := b.Types.Refinement(id)
		value, suffix := LiteralValue(b, data.Value)
		return Refine(FromAST(b, data.Base), data.Op, value, suffix)
	case ast.TypeExprUnion:
		data, _ := b.Types.Union(id)
		return UnionOf(FromAST(b, data.Left), FromAST(b, data.Right))
	case ast.TypeExprArray:
		data, _ := b.Types.Array(id)
		init, _ := LiteralValue(b, data.Init)
		total, _ := LiteralValue(b, data.Total)
		return ArrayOf(FromAST(b, data.Elem), init, total)
	case ast.TypeExprPointer:
		data, _ := b.Types.Pointer(id)
		return PointerTo(FromAST(b, data.Elem), data.Mutable)
	case ast.TypeExprTuple:
		data, _ := b.Types.Tuple(id)
		members := make([]*Type, 0, len(data.Members))
		for _, m := range data.Members {
			members = append(members, FromAST(b, m))
		}
		return TupleOf(members...)
	}
	return nil
}

// LiteralValue extracts an integer literal (optionally negated) and its
// numeric suffix. Anything else yields an absent bound.
func LiteralValue(b *ast.Builder, id ast.ExprID) (Bound, string) {
	if lit, ok := b.Exprs.Literal(id); ok {
		if lit.Kind != ast.ExprLitNumber {
			return Bound{}, ""
		}
		return Exact(lit.Int), b.Name(lit.Suffix)
	}
	if un, ok := b.Exprs.Unary(id); ok && un.Op == ast.ExprUnaryNeg {
		v, suffix := LiteralValue(b, un.Operand)
		if !v.Known || v.V == minInt64 {
			return Bound{}, ""
		}
		return Exact(-v.V), suffix
	}
	return Bound{}, ""
}
