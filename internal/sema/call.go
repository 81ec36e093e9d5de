package sema

import (
	"fmt"

	"tuff/internal/ast"
	"tuff/internal/diag"
	"tuff/internal/symbols"
	"tuff/internal/types"
)

func (c *checker) inferCall(e env, id ast.ExprID) (types.Info, *diag.Diagnostic) {
	data, _ := c.b.Exprs.Call(id)
	var fn *symbols.Func
	if ident, ok := c.b.Exprs.Ident(data.Callee); ok {
		fn = c.tables.Funcs[c.b.Name(ident.Name)]
	} else if _, d := c.inferExpr(e, data.Callee); d != nil {
		return types.Info{}, d
	}

	args := make([]types.Info, 0, len(data.Args))
	for _, a := range data.Args {
		info, d := c.inferExpr(e, a)
		if d != nil {
			return types.Info{}, d
		}
		args = append(args, info)
	}
	if fn == nil {
		return types.Unknown(), nil
	}
	return c.checkCallArgs(id, data, fn, args)
}

// checkCallArgs binds generics from the argument types, then checks arity,
// per-argument compatibility and non-zero/nullable parameter contracts.
func (c *checker) checkCallArgs(id ast.ExprID, data *ast.ExprCallData, fn *symbols.Func, args []types.Info) (types.Info, *diag.Diagnostic) {
	generics := make(map[string]bool, len(fn.Generics))
	for _, g := range fn.Generics {
		generics[g] = true
	}
	for _, p := range fn.Params {
		types.CollectTypeVariables(p.Type, c.resolver.IsKnownTypeName, generics)
	}
	types.CollectTypeVariables(fn.Result, c.resolver.IsKnownTypeName, generics)

	bindings := make(types.Bindings)
	if len(generics) > 0 {
		for i, arg := range args {
			if i >= len(fn.Params) {
				break
			}
			if arg.Type == nil {
				continue
			}
			types.BindGenerics(fn.Params[i].Type, arg.Type, generics, bindings)
		}
	}

	if !fn.Extern && len(args) != len(fn.Params) {
		return types.Info{}, diag.Errorf(diag.TypeArity, c.pos(id),
			"function %s expects %d args, got %d", fn.Name, len(fn.Params), len(args)).
			WithReason(fmt.Sprintf("%s declares %d parameter(s).", fn.Name, len(fn.Params)))
	}

	for i, arg := range args {
		if i >= len(fn.Params) {
			break
		}
		argPos := c.pos(data.Args[i])
		expected := c.resolver.Resolve(types.Substitute(fn.Params[i].Type, bindings))
		if c.strict && expected.IsPointer() && !expected.IsNullablePointer() && arg.IsNullablePointer() {
			return types.Info{}, diag.Errorf(diag.SafetyNullablePointerGuard, argPos,
				"call to %s arg %d requires nullable pointer guard", fn.Name, i+1).
				WithReason(fmt.Sprintf("%s may hold the 0USize sentinel but parameter %s expects %s.",
					c.describe(data.Args[i]), fn.Params[i].Name, expected.Name))
		}
		if !c.compatible(expected, arg) {
			return types.Info{}, diag.Errorf(diag.TypeMismatch, argPos,
				"type mismatch in call to %s arg %d: expected %s, got %s", fn.Name, i+1, expected.Name, arg.Name)
		}
		if c.strict && expected.NonZero && !arg.NonZero {
			return types.Info{}, diag.Errorf(diag.SafetyNonZeroRefinement, argPos,
				"call to %s requires arg %d to be proven non-zero", fn.Name, i+1).
				WithReason(fmt.Sprintf("Parameter %s is declared non-zero but %s is %s.",
					fn.Params[i].Name, c.describe(data.Args[i]), arg))
		}
	}

	if fn.Result == nil {
		return types.Unknown(), nil
	}
	return c.resolver.Resolve(types.Substitute(fn.Result, bindings)), nil
}
