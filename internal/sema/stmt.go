package sema

import (
	"math"

	"tuff/internal/ast"
	"tuff/internal/diag"
	"tuff/internal/types"
)

// checkBlock runs stmts in a child of e and returns the info of the last
// statement (Void for an empty block).
func (c *checker) checkBlock(e env, stmts []ast.StmtID) (types.Info, *diag.Diagnostic) {
	inner := e.nested(e.facts.Fork())
	last := types.Void()
	for _, id := range stmts {
		info, d := c.checkStmt(inner, id)
		if d != nil {
			return types.Info{}, d
		}
		last = info
	}
	e.close(inner)
	return last, nil
}

// checkNested checks a statement used as a branch or loop body under facts.
func (c *checker) checkNested(e env, facts *types.FactSet, id ast.StmtID) *diag.Diagnostic {
	if !id.IsValid() {
		return nil
	}
	inner := e.nested(facts)
	if _, d := c.checkStmt(inner, id); d != nil {
		return d
	}
	e.close(inner)
	return nil
}

func (c *checker) checkStmt(e env, id ast.StmtID) (types.Info, *diag.Diagnostic) {
	stmt := c.b.Stmts.Get(id)
	if stmt == nil {
		return types.Void(), nil
	}
	switch stmt.Kind {
	case ast.StmtLet:
		data, _ := c.b.Stmts.Let(id)
		return types.Void(), c.checkLet(e, id, data)
	case ast.StmtAssign:
		data, _ := c.b.Stmts.Assign(id)
		return types.Void(), c.checkAssign(e, id, data)
	case ast.StmtExpr:
		data, _ := c.b.Stmts.Expr(id)
		return c.inferExpr(e, data.Expr)
	case ast.StmtReturn:
		data, _ := c.b.Stmts.Return(id)
		return c.checkReturn(e, id, data)
	case ast.StmtIf:
		data, _ := c.b.Stmts.If(id)
		if _, d := c.condition(e, data.Cond); d != nil {
			return types.Info{}, d
		}
		thenFacts := types.Merge(e.facts, DeriveFacts(c.b, data.Cond, true))
		if d := c.checkNested(e, thenFacts, data.Then); d != nil {
			return types.Info{}, d
		}
		elseFacts := types.Merge(e.facts, DeriveFacts(c.b, data.Cond, false))
		return types.Void(), c.checkNested(e, elseFacts, data.Else)
	case ast.StmtFor:
		data, _ := c.b.Stmts.For(id)
		return types.Void(), c.checkFor(e, data)
	case ast.StmtWhile:
		data, _ := c.b.Stmts.While(id)
		c.widenAssigned(e, data.Body)
		if _, d := c.condition(e, data.Cond); d != nil {
			return types.Info{}, d
		}
		bodyFacts := types.Merge(e.facts, DeriveFacts(c.b, data.Cond, true))
		return types.Void(), c.checkNested(e, bodyFacts, data.Body)
	case ast.StmtLoop:
		data, _ := c.b.Stmts.Loop(id)
		c.widenAssigned(e, data.Body)
		return types.Void(), c.checkNested(e, e.facts.Fork(), data.Body)
	case ast.StmtDrop:
		data, _ := c.b.Stmts.Drop(id)
		_, d := c.inferExpr(e, data.Target)
		return types.Void(), d
	}
	// break, continue
	return types.Void(), nil
}

func (c *checker) checkLet(e env, id ast.StmtID, data *ast.StmtLetData) *diag.Diagnostic {
	name := c.b.Name(data.Name)
	var expected *types.Info
	if data.Type.IsValid() {
		info := c.resolver.Resolve(types.FromAST(c.b, data.Type))
		expected = &info
	}

	value := types.Unknown()
	if data.Value.IsValid() {
		v, d := c.inferExpr(e, data.Value)
		if d != nil {
			return d
		}
		value = v
	} else if expected != nil {
		value = *expected
	}

	if expected == nil {
		e.scope.define(name, value, c.declaredOf(value))
		e.facts.Kill(name)
		return nil
	}
	if !c.compatible(*expected, value) {
		return diag.Errorf(diag.TypeMismatch, c.stmtPos(id),
			"type mismatch for let %s: expected %s, got %s", name, expected.Name, value.Name)
	}
	if c.strict && expected.NonZero && !value.NonZero {
		return diag.Errorf(diag.SafetyNonZeroRefinement, c.stmtPos(id),
			"cannot prove non-zero refinement for %s", name).
			WithReason("'" + name + "' is declared non-zero but its initializer " + value.String() + " may be zero.")
	}
	e.scope.define(name, types.IntersectInfo(*expected, value), *expected)
	e.facts.Kill(name)
	return nil
}

func (c *checker) checkAssign(e env, id ast.StmtID, data *ast.StmtAssignData) *diag.Diagnostic {
	ident, isIdent := c.b.Exprs.Ident(data.Target)
	if !isIdent {
		if _, d := c.inferExpr(e, data.Target); d != nil {
			return d
		}
		_, d := c.inferExpr(e, data.Value)
		return d
	}
	value, d := c.inferExpr(e, data.Value)
	if d != nil {
		return d
	}
	name := c.b.Name(ident.Name)
	bound, ok := e.scope.lookup(name)
	if !ok {
		return nil
	}
	if !c.compatible(bound.declared, value) {
		return diag.Errorf(diag.TypeMismatch, c.stmtPos(id),
			"assignment mismatch for %s: expected %s, got %s", name, bound.declared.Name, value.Name)
	}
	if c.strict && bound.declared.NonZero && !value.NonZero {
		return diag.Errorf(diag.SafetyNonZeroRefinement, c.stmtPos(id),
			"cannot prove non-zero refinement for %s", name)
	}
	e.scope.assign(name, types.IntersectInfo(bound.declared, value))
	e.facts.Kill(name)
	return nil
}

func (c *checker) checkReturn(e env, id ast.StmtID, data *ast.StmtReturnData) (types.Info, *diag.Diagnostic) {
	value := types.Void()
	if data.Value.IsValid() {
		v, d := c.inferExpr(e, data.Value)
		if d != nil {
			return types.Info{}, d
		}
		value = v
	}
	if c.fn == nil || c.fn.Result == nil {
		return value, nil
	}
	if !c.compatible(c.result, value) {
		return types.Info{}, diag.Errorf(diag.TypeReturnMismatch, c.stmtPos(id),
			"return type mismatch: expected %s, got %s", c.result.Name, value.Name)
	}
	if c.strict && c.result.NonZero && !value.NonZero {
		return types.Info{}, diag.Errorf(diag.SafetyNonZeroRefinement, c.stmtPos(id),
			"return value of %s does not satisfy the non-zero refinement", c.fn.Name)
	}
	return value, nil
}

func (c *checker) checkFor(e env, data *ast.StmtForData) *diag.Diagnostic {
	start, d := c.inferExpr(e, data.Start)
	if d != nil {
		return d
	}
	end, d := c.inferExpr(e, data.End)
	if d != nil {
		return d
	}
	c.widenAssigned(e, data.Body)

	lo := start.Min
	if !lo.Known {
		lo = types.Exact(0)
	}
	hi := types.Bound{}
	if end.Max.Known && end.Max.V != math.MinInt64 {
		hi = types.Exact(end.Max.V - 1)
	}
	iter := types.Info{Name: types.NameI32, Type: types.Named(types.NameI32)}.WithBounds(lo, hi)

	inner := e.nested(e.facts.Fork())
	name := c.b.Name(data.Iterator)
	inner.scope.define(name, iter, iter)
	inner.facts.Kill(name)
	if _, d := c.checkStmt(inner, data.Body); d != nil {
		return d
	}
	e.close(inner)
	return nil
}

// widenAssigned resets every visible binding the loop body assigns, so the
// single pass over the body holds for all iterations.
func (c *checker) widenAssigned(e env, body ast.StmtID) {
	for _, name := range assignedNames(c.b, body) {
		if _, ok := e.scope.lookup(name); ok {
			e.scope.widen(name)
			e.facts.Kill(name)
		}
	}
}

// condition infers a branch or loop condition and requires Bool.
func (c *checker) condition(e env, cond ast.ExprID) (types.Info, *diag.Diagnostic) {
	info, d := c.inferExpr(e, cond)
	if d != nil {
		return types.Info{}, d
	}
	if info.Name != types.NameBool && !info.IsUnknown() {
		return types.Info{}, diag.Errorf(diag.TypeCondition, c.pos(cond), "condition must be Bool, got %s", info.Name)
	}
	return info, nil
}
