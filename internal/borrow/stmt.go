package borrow

import (
	"fmt"

	"tuff/internal/ast"
	"tuff/internal/diag"
	"tuff/internal/types"
)

// checkBlock opens a lexical scope: loans and pending drops introduced inside
// end with it.
func (c *checker) checkBlock(st *state, env *typeEnv, stmts []ast.StmtID) *diag.Diagnostic {
	st.beginScope()
	defer st.endScope()
	inner := newTypeEnv(env)
	for _, id := range stmts {
		if d := c.checkStmt(st, inner, id); d != nil {
			return d
		}
	}
	return nil
}

// checkLoopBody runs a loop body once inside its own loan scope.
func (c *checker) checkLoopBody(st *state, env *typeEnv, body ast.StmtID) *diag.Diagnostic {
	st.beginScope()
	defer st.endScope()
	return c.checkStmt(st, env, body)
}

func (c *checker) checkStmt(st *state, env *typeEnv, id ast.StmtID) *diag.Diagnostic {
	stmt := c.b.Stmts.Get(id)
	if stmt == nil {
		return nil
	}
	switch stmt.Kind {
	case ast.StmtLet:
		data, _ := c.b.Stmts.Let(id)
		return c.checkLet(st, env, data)
	case ast.StmtAssign:
		data, _ := c.b.Stmts.Assign(id)
		return c.checkAssign(st, env, id, data)
	case ast.StmtExpr:
		data, _ := c.b.Stmts.Expr(id)
		return c.checkExpr(st, env, data.Expr, modeMove)
	case ast.StmtReturn:
		data, _ := c.b.Stmts.Return(id)
		if !data.Value.IsValid() {
			return nil
		}
		return c.checkExpr(st, env, data.Value, c.modeFor(data.Value))
	case ast.StmtIf:
		data, _ := c.b.Stmts.If(id)
		if d := c.checkExpr(st, env, data.Cond, modeRead); d != nil {
			return d
		}
		then := st.fork()
		if d := c.checkStmt(then, newTypeEnv(env), data.Then); d != nil {
			return d
		}
		if !data.Else.IsValid() {
			st.moved.union(then.moved)
			return nil
		}
		els := st.fork()
		if d := c.checkStmt(els, newTypeEnv(env), data.Else); d != nil {
			return d
		}
		joinArms(st, then, els)
		return nil
	case ast.StmtFor:
		data, _ := c.b.Stmts.For(id)
		if d := c.checkExpr(st, env, data.Start, modeRead); d != nil {
			return d
		}
		if d := c.checkExpr(st, env, data.End, modeRead); d != nil {
			return d
		}
		loopEnv := newTypeEnv(env)
		loopEnv.set(c.b.Name(data.Iterator), types.NameI32)
		return c.checkLoopBody(st, loopEnv, data.Body)
	case ast.StmtWhile:
		data, _ := c.b.Stmts.While(id)
		if d := c.checkExpr(st, env, data.Cond, modeRead); d != nil {
			return d
		}
		return c.checkLoopBody(st, newTypeEnv(env), data.Body)
	case ast.StmtLoop:
		data, _ := c.b.Stmts.Loop(id)
		return c.checkLoopBody(st, newTypeEnv(env), data.Body)
	case ast.StmtDrop:
		data, _ := c.b.Stmts.Drop(id)
		return c.drop(st, env, data.Target, data.Target)
	}
	return nil
}

func (c *checker) checkLet(st *state, env *typeEnv, data *ast.StmtLetData) *diag.Diagnostic {
	name := c.b.Name(data.Name)
	if !data.Value.IsValid() {
		ty := types.NameUnknown
		if data.Type.IsValid() {
			ty = c.typeNameOf(data.Type)
		}
		env.set(name, ty)
		st.moved.remove(name)
		return nil
	}
	if d := c.checkExpr(st, env, data.Value, c.modeFor(data.Value)); d != nil {
		return d
	}
	ty := c.exprTypeName(env, data.Value)
	if data.Type.IsValid() {
		ty = c.typeNameOf(data.Type)
	}
	env.set(name, ty)
	st.moved.remove(name)
	st.dropped.remove(name)
	if c.hasDestructor(ty) {
		st.trackPending(name)
	}
	return nil
}

func (c *checker) checkAssign(st *state, env *typeEnv, id ast.StmtID, data *ast.StmtAssignData) *diag.Diagnostic {
	ident, isIdent := c.b.Exprs.Ident(data.Target)
	name := ""
	if isIdent {
		name = c.b.Name(ident.Name)
		// overwriting a live destructor-carrying value drops the old one
		if c.hasDestructor(env.lookup(name)) && st.pending.has(name) {
			st.pending.remove(name)
			st.dropped.add(name)
		}
	}
	if p, ok := placeOf(c.b, data.Target); ok {
		if l, ok := st.conflicting(p, false); ok {
			return diag.Errorf(diag.BorrowAssignWhileBorrowed, c.stmtPos(id),
				"Cannot assign to '%s' while it is borrowed", p.base).
				WithReason(fmt.Sprintf("'%s' is borrowed through %s; writing to it would change the value behind that borrow.", p.base, l.place.path)).
				WithFix("End active borrows before assignment, or assign in a non-overlapping scope.")
		}
	}
	if d := c.checkExpr(st, env, data.Value, c.modeFor(data.Value)); d != nil {
		return d
	}
	if isIdent {
		st.moved.remove(name)
		st.dropped.remove(name)
		if c.hasDestructor(env.lookup(name)) {
			st.trackPending(name)
		}
	}
	return nil
}
