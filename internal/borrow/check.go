package borrow

import (
	"fmt"

	"tuff/internal/ast"
	"tuff/internal/diag"
	"tuff/internal/source"
	"tuff/internal/symbols"
	"tuff/internal/trace"
	"tuff/internal/types"
)

// Options configures the ownership pass.
type Options struct {
	Tracer trace.Tracer
	// ParentSpan links the pass span under a driver span.
	ParentSpan uint64
}

type checker struct {
	b      *ast.Builder
	tables *symbols.Table
	tracer trace.Tracer
	span   uint64
}

// Check verifies move, drop and borrow discipline over every item of file and
// returns the first violation in pre-order, or nil.
func Check(b *ast.Builder, file ast.FileID, tables *symbols.Table, opts Options) *diag.Diagnostic {
	if tables == nil {
		tables = symbols.Build(b, file)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	span := trace.Begin(tracer, trace.ScopePass, "borrow", opts.ParentSpan)
	c := &checker{b: b, tables: tables, tracer: tracer, span: span.ID()}

	d := c.checkCopyAliases()
	if d == nil {
		d = c.checkFile(file)
	}
	if d != nil {
		span.WithExtra("code", d.Code.ID())
	}
	span.End("")
	return d
}

// checkCopyAliases rejects copy aliases over non-copy targets up front,
// whether or not the alias is ever used.
func (c *checker) checkCopyAliases() *diag.Diagnostic {
	a := c.tables.InvalidCopyAlias()
	if a == nil {
		return nil
	}
	return diag.Errorf(diag.BorrowInvalidCopyAlias, a.Pos, "copy type %s must alias a copy-compatible type", a.Name).
		WithReason(fmt.Sprintf("Alias '%s' is marked copy, but its target %s is not copy-compatible under move semantics.", a.Name, a.Target)).
		WithFix("Only mark aliases as 'copy' when the aliased type is copy-compatible (primitives, pointers, copy enums, copy structs, or other copy aliases).")
}

func (c *checker) checkFile(file ast.FileID) *diag.Diagnostic {
	f := c.b.Files.Get(file)
	if f == nil {
		return nil
	}
	// top-level lets share one state
	st := newState()
	env := c.globals()
	for _, id := range f.Items {
		item := c.b.Items.Get(id)
		if item == nil {
			continue
		}
		var d *diag.Diagnostic
		switch item.Kind {
		case ast.ItemFn:
			d = c.checkFn(id)
		case ast.ItemLet:
			data, _ := c.b.Items.Let(id)
			d = c.checkStmt(st, env, data.Stmt)
		}
		if d != nil {
			return d
		}
	}
	return nil
}

func (c *checker) globals() *typeEnv {
	env := newTypeEnv(nil)
	for _, name := range c.tables.GlobalNames() {
		env.set(name, types.NameOf(c.tables.Globals[name].Type))
	}
	return env
}

func (c *checker) checkFn(id ast.ItemID) *diag.Diagnostic {
	fn, _ := c.b.Items.Fn(id)
	span := trace.Begin(c.tracer, trace.ScopeNode, "fn "+c.b.Name(fn.Name), c.span)
	defer span.End("")

	env := newTypeEnv(c.globals())
	for _, p := range fn.Params {
		env.set(c.b.Name(p.Name), c.typeNameOf(p.Type))
	}
	return c.checkExpr(newState(), env, fn.Body, modeMove)
}

func (c *checker) isCopy(typeName string) bool {
	return c.tables.IsCopyName(typeName)
}

func (c *checker) hasDestructor(typeName string) bool {
	_, ok := c.tables.Destructor(typeName)
	return ok
}

func (c *checker) pos(id ast.ExprID) source.Pos {
	if e := c.b.Exprs.Get(id); e != nil {
		return e.Pos
	}
	return source.Pos{}
}

func (c *checker) stmtPos(id ast.StmtID) source.Pos {
	if s := c.b.Stmts.Get(id); s != nil {
		return s.Pos
	}
	return source.Pos{}
}

// describe names a non-place expression by its kind.
func (c *checker) describe(id ast.ExprID) string {
	if e := c.b.Exprs.Get(id); e != nil {
		return "a " + e.Kind.String()
	}
	return "an empty expression"
}
