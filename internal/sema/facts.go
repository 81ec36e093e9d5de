package sema

import (
	"math"

	"tuff/internal/ast"
	"tuff/internal/types"
)

// DeriveFacts turns a branch condition into per-identifier refinements that
// hold when the condition evaluates to assumeTrue.
//
// `a && b` contributes both sides only when assumed true, `a || b` both
// negated sides only when assumed false (De Morgan). A comparison between an
// identifier and an integer literal yields a bound patch; under a false
// assumption the operator is negated first. `p != 0USize` marks a nullable
// pointer as guarded.
func DeriveFacts(b *ast.Builder, cond ast.ExprID, assumeTrue bool) *types.FactSet {
	facts := types.NewFactSet()
	deriveInto(b, cond, assumeTrue, facts)
	return facts
}

func deriveInto(b *ast.Builder, id ast.ExprID, truthy bool, facts *types.FactSet) {
	expr := b.Exprs.Get(id)
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ast.ExprUnary:
		if un, _ := b.Exprs.Unary(id); un.Op == ast.ExprUnaryNot {
			deriveInto(b, un.Operand, !truthy, facts)
		}
	case ast.ExprBinary:
		bin, _ := b.Exprs.Binary(id)
		switch {
		case bin.Op == ast.ExprBinaryLogicalAnd:
			if truthy {
				deriveInto(b, bin.Left, true, facts)
				deriveInto(b, bin.Right, true, facts)
			}
		case bin.Op == ast.ExprBinaryLogicalOr:
			if !truthy {
				deriveInto(b, bin.Left, false, facts)
				deriveInto(b, bin.Right, false, facts)
			}
		case bin.Op.IsComparison():
			op := bin.Op
			if !truthy {
				op = op.Negate()
			}
			fromComparison(b, bin.Left, op, bin.Right, facts)
		}
	}
}

func fromComparison(b *ast.Builder, left ast.ExprID, op ast.ExprBinaryOp, right ast.ExprID, facts *types.FactSet) {
	if ident, ok := b.Exprs.Ident(left); ok {
		if v, suffix := types.LiteralValue(b, right); v.Known {
			addComparisonFact(facts, b.Name(ident.Name), op, v.V, suffix)
		}
		return
	}
	// literal on the left: read `0 < x` as `x > 0`
	if ident, ok := b.Exprs.Ident(right); ok {
		if v, suffix := types.LiteralValue(b, left); v.Known {
			addComparisonFact(facts, b.Name(ident.Name), mirror(op), v.V, suffix)
		}
	}
}

func addComparisonFact(facts *types.FactSet, name string, op ast.ExprBinaryOp, v int64, suffix string) {
	switch op {
	case ast.ExprBinaryLess:
		if v != math.MinInt64 {
			facts.Add(name, types.Fact{Max: types.Exact(v - 1)})
		}
	case ast.ExprBinaryLessEq:
		facts.Add(name, types.Fact{Max: types.Exact(v)})
	case ast.ExprBinaryGreater:
		if v != math.MaxInt64 {
			facts.Add(name, types.Fact{Min: types.Exact(v + 1)})
		}
	case ast.ExprBinaryGreaterEq:
		facts.Add(name, types.Fact{Min: types.Exact(v)})
	case ast.ExprBinaryEq:
		facts.Add(name, types.Fact{
			Min:     types.Exact(v),
			Max:     types.Exact(v),
			NonZero: types.OptBool{Value: v != 0, Set: true},
		})
	case ast.ExprBinaryNotEq:
		if v != 0 {
			return
		}
		patch := types.Fact{NonZero: types.Yes()}
		if suffix == types.NameUSize {
			patch.NonNull = true
		}
		facts.Add(name, patch)
	}
}

// mirror swaps the operand order of a comparison.
func mirror(op ast.ExprBinaryOp) ast.ExprBinaryOp {
	switch op {
	case ast.ExprBinaryLess:
		return ast.ExprBinaryGreater
	case ast.ExprBinaryLessEq:
		return ast.ExprBinaryGreaterEq
	case ast.ExprBinaryGreater:
		return ast.ExprBinaryLess
	case ast.ExprBinaryGreaterEq:
		return ast.ExprBinaryLessEq
	}
	return op
}
