package borrow

import (
	"fmt"

	"tuff/internal/ast"
	"tuff/internal/diag"
)

// mode says whether a place in this position is only read or consumed.
type mode uint8

const (
	modeRead mode = iota
	modeMove
)

// modeFor moves places and reads everything else: the value side of let,
// assignment and return.
func (c *checker) modeFor(id ast.ExprID) mode {
	if _, ok := placeOf(c.b, id); ok {
		return modeMove
	}
	return modeRead
}

func (c *checker) checkExpr(st *state, env *typeEnv, id ast.ExprID, m mode) *diag.Diagnostic {
	expr := c.b.Exprs.Get(id)
	if expr == nil {
		return nil
	}
	switch expr.Kind {
	case ast.ExprLit:
		return nil
	case ast.ExprIdent:
		if m == modeMove {
			data, _ := c.b.Exprs.Ident(id)
			if _, ok := c.tables.Funcs[c.b.Name(data.Name)]; ok {
				return nil
			}
		}
		return c.usePlace(st, env, id, m)
	case ast.ExprMember:
		return c.usePlace(st, env, id, m)
	case ast.ExprIndex:
		data, _ := c.b.Exprs.Index(id)
		if d := c.checkExpr(st, env, data.Index, modeRead); d != nil {
			return d
		}
		return c.usePlace(st, env, id, m)
	case ast.ExprUnary:
		data, _ := c.b.Exprs.Unary(id)
		if data.Op == ast.ExprUnaryRef || data.Op == ast.ExprUnaryRefMut {
			return c.borrow(st, env, id, data)
		}
		return c.checkExpr(st, env, data.Operand, modeRead)
	case ast.ExprBinary:
		data, _ := c.b.Exprs.Binary(id)
		if d := c.checkExpr(st, env, data.Left, modeRead); d != nil {
			return d
		}
		return c.checkExpr(st, env, data.Right, modeRead)
	case ast.ExprCall:
		return c.checkCall(st, env, id)
	case ast.ExprStruct:
		data, _ := c.b.Exprs.Struct(id)
		for _, f := range data.Fields {
			if d := c.checkExpr(st, env, f.Value, modeRead); d != nil {
				return d
			}
		}
		return nil
	case ast.ExprIf:
		data, _ := c.b.Exprs.If(id)
		if d := c.checkExpr(st, env, data.Cond, modeRead); d != nil {
			return d
		}
		then := st.fork()
		if d := c.checkExpr(then, newTypeEnv(env), data.Then, modeMove); d != nil {
			return d
		}
		if !data.Else.IsValid() {
			st.moved.union(then.moved)
			return nil
		}
		els := st.fork()
		if d := c.checkExpr(els, newTypeEnv(env), data.Else, modeMove); d != nil {
			return d
		}
		joinArms(st, then, els)
		return nil
	case ast.ExprMatch:
		data, _ := c.b.Exprs.Match(id)
		if d := c.checkExpr(st, env, data.Subject, modeRead); d != nil {
			return d
		}
		arms := make([]*state, 0, len(data.Arms))
		for _, arm := range data.Arms {
			branch := st.fork()
			if d := c.checkExpr(branch, newTypeEnv(env), arm.Body, modeMove); d != nil {
				return d
			}
			arms = append(arms, branch)
		}
		for _, branch := range arms {
			st.moved.union(branch.moved)
		}
		return nil
	case ast.ExprIs:
		data, _ := c.b.Exprs.Is(id)
		return c.checkExpr(st, env, data.Value, modeRead)
	case ast.ExprUnwrap:
		data, _ := c.b.Exprs.Unwrap(id)
		return c.checkExpr(st, env, data.Value, modeRead)
	case ast.ExprBlock:
		data, _ := c.b.Exprs.Block(id)
		return c.checkBlock(st, env, data.Stmts)
	}
	return nil
}

// joinArms replaces the moved set by the union of both arms. A name moved on
// only one arm still counts as moved afterwards.
func joinArms(st, then, els *state) {
	moved := then.moved.fork()
	moved.union(els.moved)
	st.moved = moved
}

// usePlace reads or consumes a place expression. A member or index whose
// root is not a place (a call result, a literal) only reads its target.
func (c *checker) usePlace(st *state, env *typeEnv, id ast.ExprID, m mode) *diag.Diagnostic {
	p, ok := placeOf(c.b, id)
	if !ok {
		if member, isMember := c.b.Exprs.Member(id); isMember {
			return c.checkExpr(st, env, member.Target, modeRead)
		}
		if index, isIndex := c.b.Exprs.Index(id); isIndex {
			return c.checkExpr(st, env, index.Target, modeRead)
		}
		return nil
	}
	if m == modeRead {
		return c.checkLive(st, p, id, "Reinitialize the value before use, or borrow it before moving.")
	}
	return c.consume(st, env, p, id)
}

// checkLive fails when the base of p was dropped or moved.
func (c *checker) checkLive(st *state, p place, id ast.ExprID, fix string) *diag.Diagnostic {
	if st.dropped.has(p.base) {
		return diag.Errorf(diag.BorrowUseAfterDrop, c.pos(id), "Use of dropped value '%s'", p.base).
			WithReason(fmt.Sprintf("'%s' was dropped earlier, so its resources are already released.", p.base))
	}
	if st.moved.has(p.base) {
		return diag.Errorf(diag.BorrowUseAfterMove, c.pos(id), "Use of moved value '%s'", p.base).
			WithReason(fmt.Sprintf("'%s' was moved by an earlier use and no longer owns its value.", p.base)).
			WithFix(fix)
	}
	return nil
}

// consume moves out of p. Copy values and element moves through an index
// leave the base owned.
func (c *checker) consume(st *state, env *typeEnv, p place, id ast.ExprID) *diag.Diagnostic {
	if d := c.checkLive(st, p, id, "Reinitialize the value before use, or borrow it with '&' / '&mut' instead of moving."); d != nil {
		return d
	}
	if l, ok := st.conflicting(p, false); ok {
		return diag.Errorf(diag.BorrowMoveWhileBorrowed, c.pos(id), "Cannot move '%s' while it is borrowed", p.base).
			WithReason(fmt.Sprintf("'%s' is still borrowed through %s, and moving it would invalidate that borrow.", p.base, l.place.path)).
			WithFix("Ensure all borrows end before moving, or pass a borrow (&/&mut) instead.")
	}
	if !c.isCopy(c.exprTypeName(env, id)) && !p.indexed() {
		st.moved.add(p.base)
	}
	return nil
}

func (c *checker) borrow(st *state, env *typeEnv, id ast.ExprID, data *ast.ExprUnaryData) *diag.Diagnostic {
	p, ok := placeOf(c.b, data.Operand)
	if !ok {
		if operand := c.b.Exprs.Get(data.Operand); operand != nil && operand.Kind == ast.ExprStruct {
			return c.checkExpr(st, env, data.Operand, modeRead)
		}
		return diag.NewError(diag.BorrowInvalidTarget, c.pos(id), "Borrow target is not a place expression").
			WithReason(fmt.Sprintf("Only named places can be borrowed, but the operand is %s.", c.describe(data.Operand))).
			WithFix("Borrow only identifiers, fields, or index places (e.g. &x, &obj.f, &arr[i]).")
	}
	if d := c.checkLive(st, p, data.Operand, "Reinitialize the value before use, or borrow it before moving."); d != nil {
		return d
	}
	if data.Op == ast.ExprUnaryRef {
		if l, ok := st.conflicting(p, true); ok {
			return diag.Errorf(diag.BorrowImmutWhileMut, c.pos(id),
				"Cannot immutably borrow '%s' because it is mutably borrowed", p.base).
				WithReason(fmt.Sprintf("'%s' has an active exclusive borrow of %s.", p.base, l.place.path)).
				WithFix("End the mutable borrow first, or borrow mutably in a non-overlapping scope.")
		}
		st.addLoan(loanShared, p)
		return nil
	}
	if l, ok := st.conflicting(p, false); ok {
		return diag.Errorf(diag.BorrowMutConflict, c.pos(id),
			"Cannot mutably borrow '%s' because it is already borrowed", p.base).
			WithReason(fmt.Sprintf("'%s' already has an active borrow of %s, and '&mut' requires exclusive access.", p.base, l.place.path)).
			WithFix("Ensure no active borrows overlap this place before taking '&mut'.")
	}
	st.addLoan(loanMut, p)
	return nil
}

func (c *checker) checkCall(st *state, env *typeEnv, id ast.ExprID) *diag.Diagnostic {
	data, _ := c.b.Exprs.Call(id)
	callee, isIdent := c.b.Exprs.Ident(data.Callee)
	if isIdent && c.b.Name(callee.Name) == "drop" {
		target := ast.NoExprID
		if len(data.Args) > 0 {
			target = data.Args[0]
		}
		return c.drop(st, env, id, target)
	}
	global := false
	if isIdent {
		_, global = c.tables.Funcs[c.b.Name(callee.Name)]
	}
	if !global {
		if d := c.checkExpr(st, env, data.Callee, modeRead); d != nil {
			return d
		}
	}
	for _, a := range data.Args {
		if d := c.checkExpr(st, env, a, modeRead); d != nil {
			return d
		}
	}
	return nil
}

// drop runs an explicit destructor call on a place.
func (c *checker) drop(st *state, env *typeEnv, at, target ast.ExprID) *diag.Diagnostic {
	p, ok := placeOf(c.b, target)
	if !ok {
		return diag.NewError(diag.BorrowInvalidTarget, c.pos(at), "drop target must be a place expression").
			WithReason(fmt.Sprintf("drop needs a named owner, but its operand is %s.", c.describe(target))).
			WithFix("Call drop with a local/place value such as drop(x).")
	}
	if st.dropped.has(p.base) {
		return diag.Errorf(diag.BorrowDoubleDrop, c.pos(at), "Double drop of '%s'", p.base).
			WithReason(fmt.Sprintf("'%s' was already dropped; running its destructor again would release it twice.", p.base))
	}
	ty := c.exprTypeName(env, target)
	if !c.hasDestructor(ty) {
		return diag.Errorf(diag.BorrowDropMissingDestructor, c.pos(at), "Type '%s' has no associated destructor", ty).
			WithReason(fmt.Sprintf("'%s' has type %s, which has no destructor to run.", p.base, ty)).
			WithFix("Associate a destructor via 'type Alias = Base then destructorName;' and use that alias type.")
	}
	if d := c.checkLive(st, p, target, "Only live, non-moved values can be dropped."); d != nil {
		return d
	}
	st.pending.remove(p.base)
	st.dropped.add(p.base)
	st.moved.add(p.base)
	return nil
}
