package sema

import (
	"tuff/internal/ast"
	"tuff/internal/diag"
	"tuff/internal/source"
	"tuff/internal/symbols"
	"tuff/internal/trace"
	"tuff/internal/types"
)

// Options configures the inference pass.
type Options struct {
	// StrictSafety enables the overflow, division, bounds, nullable and
	// exhaustiveness proofs.
	StrictSafety bool
	Tracer       trace.Tracer
	// ParentSpan links pass spans under a driver span.
	ParentSpan uint64
}

type checker struct {
	b        *ast.Builder
	tables   *symbols.Table
	resolver *types.Resolver
	strict   bool
	tracer   trace.Tracer
	span     uint64

	// signature of the function being checked; nil at top level
	fn     *symbols.Func
	result types.Info
}

// Check runs the inference pass over every item of file. It returns the first
// violation, or nil when the unit is accepted. The tree is never modified.
func Check(b *ast.Builder, file ast.FileID, tables *symbols.Table, opts Options) *diag.Diagnostic {
	if tables == nil {
		tables = symbols.Build(b, file)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	span := trace.Begin(tracer, trace.ScopePass, "sema", opts.ParentSpan)
	c := &checker{
		b:        b,
		tables:   tables,
		resolver: types.NewResolver(tables),
		strict:   opts.StrictSafety,
		tracer:   tracer,
		span:     span.ID(),
	}
	d := c.checkFile(file)
	if d != nil {
		span.WithExtra("code", d.Code.ID())
	}
	span.End("")
	return d
}

func (c *checker) checkFile(file ast.FileID) *diag.Diagnostic {
	f := c.b.Files.Get(file)
	if f == nil {
		return nil
	}
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
			c.fn = nil
			_, d = c.checkStmt(rootEnv(), data.Stmt)
		}
		if d != nil {
			return d
		}
	}
	return nil
}

func (c *checker) checkFn(id ast.ItemID) *diag.Diagnostic {
	fnItem, _ := c.b.Items.Fn(id)
	name := c.b.Name(fnItem.Name)
	span := trace.Begin(c.tracer, trace.ScopeNode, "fn "+name, c.span)
	defer span.End("")

	sig := c.tables.Funcs[name]
	if sig == nil || sig.Item != id {
		// shadowed by a later declaration of the same name
		sig = &symbols.Func{Name: name, Item: id, Result: types.FromAST(c.b, fnItem.Result)}
		for _, p := range fnItem.Params {
			sig.Params = append(sig.Params, symbols.Param{Name: c.b.Name(p.Name), Type: types.FromAST(c.b, p.Type)})
		}
	}
	c.fn = sig
	c.result = c.resolver.Resolve(sig.Result)
	defer func() { c.fn = nil }()

	e := rootEnv()
	for _, p := range sig.Params {
		info := c.resolver.Resolve(p.Type)
		e.scope.define(p.Name, info, info)
	}

	body, d := c.inferExpr(e, fnItem.Body)
	if d != nil {
		return d
	}
	if sig.Result == nil {
		return nil
	}
	if body.Name != types.NameVoid && !c.compatible(c.result, body) {
		return diag.Errorf(diag.TypeReturnMismatch, c.pos(fnItem.Body),
			"function %s returns %s, expected %s", name, body.Name, c.result.Name)
	}
	if c.strict && c.result.NonZero && !body.NonZero {
		if at, ok := c.resultExpr(fnItem.Body); ok {
			return diag.Errorf(diag.SafetyNonZeroRefinement, c.pos(at),
				"result of %s is not proven non-zero", name)
		}
	}
	return nil
}

// resultExpr is the expression that yields a body's value: the body itself,
// or the trailing expression statement of a block. Blocks ending in a return
// are checked by checkReturn.
func (c *checker) resultExpr(body ast.ExprID) (ast.ExprID, bool) {
	block, ok := c.b.Exprs.Block(body)
	if !ok {
		return body, true
	}
	if len(block.Stmts) == 0 {
		return ast.NoExprID, false
	}
	last, ok := c.b.Stmts.Expr(block.Stmts[len(block.Stmts)-1])
	if !ok {
		return ast.NoExprID, false
	}
	return last.Expr, true
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

// compatible reports whether a value of actual may flow where expected is
// required. Unknown on either side, type variables and opaque (alias or
// extern) expectations are accepted; aliases are also compared through their
// canonical target names.
func (c *checker) compatible(expected, actual types.Info) bool {
	if expected.IsUnknown() || actual.IsUnknown() {
		return true
	}
	e, a := expected.Name, actual.Name
	if types.IsTypeVariableName(e) || types.IsTypeVariableName(a) {
		return true
	}
	if types.CompatibleNamed(e, a) || types.CompatibleNumeric(e, actual) {
		return true
	}
	ce, ca := c.canonical(e), c.canonical(a)
	if ce != e || ca != a {
		canon := actual
		canon.Name = ca
		if types.CompatibleNamed(ce, ca) || types.CompatibleNumeric(ce, canon) {
			return true
		}
	}
	return c.tables.IsOpaque(e)
}

// canonical unwraps alias names to the name of their target.
func (c *checker) canonical(name string) string {
	seen := make(map[string]bool)
	for !seen[name] {
		seen[name] = true
		target, ok := c.tables.AliasTarget(name)
		if !ok {
			break
		}
		next := types.NameOf(target)
		if next == "" {
			break
		}
		name = next
	}
	return name
}

// declaredOf widens an inferred info back to the full range of its type; it
// is the declared info of an unannotated let.
func (c *checker) declaredOf(info types.Info) types.Info {
	if info.Type == nil || info.IsNullablePointer() {
		return info.WithBounds(types.Bound{}, types.Bound{})
	}
	return c.resolver.Resolve(info.Type)
}
