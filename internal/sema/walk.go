package sema

import (
	"slices"

	"tuff/internal/ast"
)

// assignedNames collects the identifiers assigned anywhere inside a
// statement, nested blocks and arms included. The result is sorted.
func assignedNames(b *ast.Builder, root ast.StmtID) []string {
	w := &assignWalker{b: b, seen: make(map[string]bool)}
	w.stmt(root)
	out := make([]string, 0, len(w.seen))
	for name := range w.seen {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

type assignWalker struct {
	b    *ast.Builder
	seen map[string]bool
}

func (w *assignWalker) stmt(id ast.StmtID) {
	s := w.b.Stmts.Get(id)
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.StmtLet:
		data, _ := w.b.Stmts.Let(id)
		w.expr(data.Value)
	case ast.StmtAssign:
		data, _ := w.b.Stmts.Assign(id)
		if ident, ok := w.b.Exprs.Ident(data.Target); ok {
			w.seen[w.b.Name(ident.Name)] = true
		}
		w.expr(data.Value)
	case ast.StmtExpr:
		data, _ := w.b.Stmts.Expr(id)
		w.expr(data.Expr)
	case ast.StmtReturn:
		data, _ := w.b.Stmts.Return(id)
		w.expr(data.Value)
	case ast.StmtIf:
		data, _ := w.b.Stmts.If(id)
		w.expr(data.Cond)
		w.stmt(data.Then)
		w.stmt(data.Else)
	case ast.StmtFor:
		data, _ := w.b.Stmts.For(id)
		w.stmt(data.Body)
	case ast.StmtWhile:
		data, _ := w.b.Stmts.While(id)
		w.expr(data.Cond)
		w.stmt(data.Body)
	case ast.StmtLoop:
		data, _ := w.b.Stmts.Loop(id)
		w.stmt(data.Body)
	}
}

// expr only descends into expressions that can contain statements.
func (w *assignWalker) expr(id ast.ExprID) {
	e := w.b.Exprs.Get(id)
	if e == nil {
		return
	}
	switch e.Kind {
	case ast.ExprBlock:
		data, _ := w.b.Exprs.Block(id)
		for _, s := range data.Stmts {
			w.stmt(s)
		}
	case ast.ExprIf:
		data, _ := w.b.Exprs.If(id)
		w.expr(data.Cond)
		w.expr(data.Then)
		w.expr(data.Else)
	case ast.ExprMatch:
		data, _ := w.b.Exprs.Match(id)
		w.expr(data.Subject)
		for _, arm := range data.Arms {
			w.expr(arm.Body)
		}
	case ast.ExprBinary:
		data, _ := w.b.Exprs.Binary(id)
		w.expr(data.Left)
		w.expr(data.Right)
	case ast.ExprUnary:
		data, _ := w.b.Exprs.Unary(id)
		w.expr(data.Operand)
	case ast.ExprCall:
		data, _ := w.b.Exprs.Call(id)
		for _, a := range data.Args {
			w.expr(a)
		}
	}
}
