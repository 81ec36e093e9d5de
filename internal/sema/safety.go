package sema

import (
	"fmt"

	"tuff/internal/ast"
	"tuff/internal/diag"
	"tuff/internal/types"
)

// arithmetic types + - * / % and proves the strict-mode safety rules.
func (c *checker) arithmetic(id ast.ExprID, data *ast.ExprBinaryData, l, r types.Info) (types.Info, *diag.Diagnostic) {
	for _, side := range []types.Info{l, r} {
		if !types.IsNumeric(side.Name) && !side.IsUnknown() {
			return types.Info{}, diag.Errorf(diag.TypeOperand, c.pos(id),
				"operator %s expects numeric operands, got %s", data.Op, side.Name)
		}
	}

	if c.strict && !r.NonZero {
		switch data.Op {
		case ast.ExprBinaryDiv:
			return types.Info{}, diag.NewError(diag.SafetyDivByZero, c.pos(id),
				"division by zero cannot be ruled out at compile time").
				WithReason(fmt.Sprintf("Division requires denominator %s to be provably non-zero; its type is %s.", c.describe(data.Right), r))
		case ast.ExprBinaryMod:
			return types.Info{}, diag.NewError(diag.SafetyModByZero, c.pos(id),
				"modulo by zero cannot be ruled out at compile time").
				WithReason(fmt.Sprintf("Modulo requires divisor %s to be provably non-zero; its type is %s.", c.describe(data.Right), r))
		}
	}

	name := l.Name
	if l.IsUnknown() {
		name = r.Name
	}
	out := types.Info{Name: name}
	if !out.IsUnknown() {
		out.Type = types.Named(name)
	}

	iv, bounded := types.Arith(data.Op, l, r)
	if c.strict && overflowChecked(data.Op) && !isFloat(name) {
		if !bounded && data.Op != ast.ExprBinaryDiv {
			return types.Info{}, diag.Errorf(diag.SafetyOverflow, c.pos(id),
				"integer overflow cannot be ruled out for '%s'", data.Op).
				WithReason(fmt.Sprintf("Operands of '%s' must have proven bounds; got %s and %s.", data.Op, l, r))
		}
		if bounded {
			lo, hi := types.OverflowRange()
			if witness := iv.Escape(lo, hi); witness != nil {
				return types.Info{}, diag.Errorf(diag.SafetyOverflow, c.pos(id),
					"integer overflow/underflow proven possible for '%s'", data.Op).
					WithReason(fmt.Sprintf("'%s' can produce %s, outside the I32 range [%d, %d].",
						data.Op, witness, lo, hi))
			}
		}
	}
	if bounded {
		out.Min, out.Max = iv.Bounds()
	}
	return out.Normalize(), nil
}

func overflowChecked(op ast.ExprBinaryOp) bool {
	switch op {
	case ast.ExprBinaryAdd, ast.ExprBinarySub, ast.ExprBinaryMul, ast.ExprBinaryDiv:
		return true
	}
	return false
}

func isFloat(name string) bool {
	return name == "F32" || name == "F64"
}

// checkBounds proves 0 <= index < initialized length.
func (c *checker) checkBounds(id, indexExpr ast.ExprID, target, index types.Info) *diag.Diagnostic {
	initLen := target.ArrayInit.V
	if !index.Max.Known {
		return diag.NewError(diag.SafetyArrayBoundsUnproven, c.pos(id), "cannot prove array index bound safety").
			WithReason(fmt.Sprintf("Index %s has no proven upper bound below the initialized length %d.", c.describe(indexExpr), initLen))
	}
	if index.Max.V >= initLen {
		return diag.NewError(diag.SafetyArrayBounds, c.pos(id), "array index may be out of bounds").
			WithReason(fmt.Sprintf("Index %s may be %d, but only %d elements are initialized.", c.describe(indexExpr), index.Max.V, initLen))
	}
	if index.Min.Known && index.Min.V < 0 {
		return diag.NewError(diag.SafetyArrayBounds, c.pos(id), "array index may be negative").
			WithReason(fmt.Sprintf("Index %s may be %d.", c.describe(indexExpr), index.Min.V))
	}
	return nil
}

func (c *checker) nullableGuard(id, operand ast.ExprID, what string) *diag.Diagnostic {
	return diag.Errorf(diag.SafetyNullablePointerGuard, c.pos(id), "nullable pointer %s requires a guard", what).
		WithReason(fmt.Sprintf("%s may hold the 0USize sentinel at this point.", c.describe(operand)))
}

// describe names an expression for reasons: identifiers by name, anything
// else by kind.
func (c *checker) describe(id ast.ExprID) string {
	if ident, ok := c.b.Exprs.Ident(id); ok {
		return "'" + c.b.Name(ident.Name) + "'"
	}
	if v, _ := types.LiteralValue(c.b, id); v.Known {
		return v.String()
	}
	if e := c.b.Exprs.Get(id); e != nil {
		return "the " + e.Kind.String() + " expression"
	}
	return "the expression"
}
