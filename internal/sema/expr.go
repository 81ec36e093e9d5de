package sema

import (
	"fmt"
	"strings"

	"tuff/internal/ast"
	"tuff/internal/diag"
	"tuff/internal/types"
)

func (c *checker) inferExpr(e env, id ast.ExprID) (types.Info, *diag.Diagnostic) {
	expr := c.b.Exprs.Get(id)
	if expr == nil {
		return types.Unknown(), nil
	}
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := c.b.Exprs.Literal(id)
		return c.literal(lit), nil
	case ast.ExprIdent:
		ident, _ := c.b.Exprs.Ident(id)
		return c.identifier(e, c.b.Name(ident.Name)), nil
	case ast.ExprStruct:
		return c.inferStructInit(e, id)
	case ast.ExprUnary:
		return c.inferUnary(e, id)
	case ast.ExprBinary:
		return c.inferBinary(e, id)
	case ast.ExprCall:
		return c.inferCall(e, id)
	case ast.ExprMember:
		return c.inferMember(e, id)
	case ast.ExprIndex:
		return c.inferIndex(e, id)
	case ast.ExprIf:
		return c.inferIf(e, id)
	case ast.ExprMatch:
		return c.inferMatch(e, id)
	case ast.ExprIs:
		data, _ := c.b.Exprs.Is(id)
		if _, d := c.inferExpr(e, data.Value); d != nil {
			return types.Info{}, d
		}
		return types.Simple(types.NameBool), nil
	case ast.ExprUnwrap:
		data, _ := c.b.Exprs.Unwrap(id)
		return c.inferExpr(e, data.Value)
	case ast.ExprBlock:
		data, _ := c.b.Exprs.Block(id)
		return c.checkBlock(e, data.Stmts)
	}
	return types.Unknown(), nil
}

func (c *checker) literal(lit *ast.ExprLiteralData) types.Info {
	switch lit.Kind {
	case ast.ExprLitNumber:
		name := c.b.Name(lit.Suffix)
		if !types.IsNumeric(name) {
			name = types.NameI32
		}
		return types.Literal(name, lit.Int)
	case ast.ExprLitBool:
		return types.Simple(types.NameBool)
	case ast.ExprLitChar:
		return types.Simple(types.NameChar)
	case ast.ExprLitString:
		return types.Info{Name: types.NameStrPtr, NonZero: true, Type: types.PointerTo(types.Named("Str"), false)}
	}
	return types.Unknown()
}

// identifier resolves locals (narrowed by facts), then globals, functions and
// type names.
func (c *checker) identifier(e env, name string) types.Info {
	if b, ok := e.scope.lookup(name); ok {
		if fact, ok := e.facts.Lookup(name); ok {
			return types.Intersect(b.info, fact)
		}
		return b.info
	}
	if g, ok := c.tables.Globals[name]; ok {
		return c.resolver.Resolve(g.Type)
	}
	if _, ok := c.tables.Funcs[name]; ok {
		return types.Info{Name: types.NameFn}
	}
	if _, ok := c.tables.Structs[name]; ok {
		return types.Simple(name)
	}
	if _, ok := c.tables.Enums[name]; ok {
		return types.Simple(name)
	}
	return types.Unknown()
}

func (c *checker) inferStructInit(e env, id ast.ExprID) (types.Info, *diag.Diagnostic) {
	data, _ := c.b.Exprs.Struct(id)
	name := c.b.Name(data.Name)
	decl, ok := c.tables.Structs[name]
	if !ok {
		return types.Info{}, diag.Errorf(diag.TypeUnknownField, c.pos(id), "unknown struct '%s'", name).
			WithReason(fmt.Sprintf("'%s' is not a declared struct, so none of its fields can be checked.", name)).
			WithFix("Declare the struct or fix the name.")
	}
	for _, f := range data.Fields {
		fieldName := c.b.Name(f.Name)
		field, ok := decl.Field(fieldName)
		if !ok {
			return types.Info{}, diag.Errorf(diag.TypeUnknownField, c.pos(id),
				"unknown field '%s' for struct %s", fieldName, name)
		}
		value, d := c.inferExpr(e, f.Value)
		if d != nil {
			return types.Info{}, d
		}
		expected := c.resolver.Resolve(field.Type)
		if !c.compatible(expected, value) {
			return types.Info{}, diag.Errorf(diag.TypeMismatch, c.pos(f.Value),
				"field %s.%s expects %s, got %s", name, fieldName, expected.Name, value.Name)
		}
	}
	return types.Simple(name), nil
}

func (c *checker) inferUnary(e env, id ast.ExprID) (types.Info, *diag.Diagnostic) {
	data, _ := c.b.Exprs.Unary(id)
	t, d := c.inferExpr(e, data.Operand)
	if d != nil {
		return types.Info{}, d
	}
	switch data.Op {
	case ast.ExprUnaryRef, ast.ExprUnaryRefMut:
		mutable := data.Op == ast.ExprUnaryRefMut
		elem := t.Type
		if elem == nil {
			elem = types.Named(t.Name)
		}
		ptr := types.PointerTo(elem, mutable)
		return types.Info{Name: types.NameOf(types.PointerTo(types.Named(t.Name), mutable)), NonZero: true, Type: ptr}, nil
	case ast.ExprUnaryNot:
		if t.Name != types.NameBool && !t.IsUnknown() {
			return types.Info{}, diag.Errorf(diag.TypeOperand, c.pos(id), "'!' expects Bool, got %s", t.Name)
		}
		return types.Simple(types.NameBool), nil
	case ast.ExprUnaryNeg:
		if !types.IsNumeric(t.Name) && !t.IsUnknown() {
			return types.Info{}, diag.Errorf(diag.TypeOperand, c.pos(id), "unary '-' expects a numeric type, got %s", t.Name)
		}
		return types.Negate(t), nil
	case ast.ExprUnaryDeref:
		if c.strict && t.IsNullablePointer() {
			return types.Info{}, c.nullableGuard(id, data.Operand, "dereference")
		}
		if t.Type == nil || t.Type.Kind != types.KindPointer {
			return types.Unknown(), nil
		}
		return c.resolver.Resolve(t.Type.Elem), nil
	}
	return types.Unknown(), nil
}

func (c *checker) inferBinary(e env, id ast.ExprID) (types.Info, *diag.Diagnostic) {
	data, _ := c.b.Exprs.Binary(id)
	l, d := c.inferExpr(e, data.Left)
	if d != nil {
		return types.Info{}, d
	}
	r, d := c.inferExpr(e, data.Right)
	if d != nil {
		return types.Info{}, d
	}
	switch {
	case data.Op.IsArithmetic():
		return c.arithmetic(id, data, l, r)
	case data.Op.IsComparison():
		return types.Simple(types.NameBool), nil
	case data.Op.IsLogical():
		for _, side := range []types.Info{l, r} {
			if side.Name != types.NameBool && !side.IsUnknown() {
				return types.Info{}, diag.Errorf(diag.TypeOperand, c.pos(id),
					"operator %s expects Bool operands, got %s", data.Op, side.Name)
			}
		}
		return types.Simple(types.NameBool), nil
	}
	return types.Unknown(), nil
}

func (c *checker) inferMember(e env, id ast.ExprID) (types.Info, *diag.Diagnostic) {
	data, _ := c.b.Exprs.Member(id)
	t, d := c.inferExpr(e, data.Target)
	if d != nil {
		return types.Info{}, d
	}
	if c.strict && t.IsNullablePointer() {
		return types.Info{}, c.nullableGuard(id, data.Target, "member access")
	}
	field := c.b.Name(data.Field)
	if field == "length" || field == "init" {
		hi := t.ArrayTotal
		if !hi.Known {
			hi = t.ArrayInit
		}
		return types.Info{Name: types.NameUSize, Min: types.Exact(0), Max: hi, Type: types.Named(types.NameUSize)}.Normalize(), nil
	}
	// fields are reachable through pointers as well
	structName := strings.TrimPrefix(strings.TrimPrefix(t.Name, "*mut "), "*")
	if decl, ok := c.tables.Structs[structName]; ok {
		f, ok := decl.Field(field)
		if !ok {
			return types.Info{}, diag.Errorf(diag.TypeUnknownField, c.pos(id),
				"struct %s has no field '%s'", structName, field).
				WithReason(fmt.Sprintf("'%s' is not declared by struct %s.", field, structName)).
				WithFix("Use one of the declared fields.")
		}
		return c.resolver.Resolve(f.Type), nil
	}
	return types.Unknown(), nil
}

func (c *checker) inferIndex(e env, id ast.ExprID) (types.Info, *diag.Diagnostic) {
	data, _ := c.b.Exprs.Index(id)
	target, d := c.inferExpr(e, data.Target)
	if d != nil {
		return types.Info{}, d
	}
	if c.strict && target.IsNullablePointer() {
		return types.Info{}, c.nullableGuard(id, data.Target, "indexing")
	}
	index, d := c.inferExpr(e, data.Index)
	if d != nil {
		return types.Info{}, d
	}
	if c.strict && target.ArrayInit.Known {
		if d := c.checkBounds(id, data.Index, target, index); d != nil {
			return types.Info{}, d
		}
	}
	if target.Type != nil && target.Type.Kind == types.KindArray {
		return c.resolver.Resolve(target.Type.Elem), nil
	}
	return types.Unknown(), nil
}

func (c *checker) inferIf(e env, id ast.ExprID) (types.Info, *diag.Diagnostic) {
	data, _ := c.b.Exprs.If(id)
	if _, d := c.condition(e, data.Cond); d != nil {
		return types.Info{}, d
	}
	thenFacts := types.Merge(e.facts, DeriveFacts(c.b, data.Cond, true))
	a, d := c.inferArm(e, thenFacts, data.Then)
	if d != nil {
		return types.Info{}, d
	}
	if !data.Else.IsValid() {
		return a, nil
	}
	elseFacts := types.Merge(e.facts, DeriveFacts(c.b, data.Cond, false))
	b, d := c.inferArm(e, elseFacts, data.Else)
	if d != nil {
		return types.Info{}, d
	}
	return types.Join(a, b), nil
}

// inferArm infers one branch arm in its own child env.
func (c *checker) inferArm(e env, facts *types.FactSet, body ast.ExprID) (types.Info, *diag.Diagnostic) {
	inner := e.nested(facts)
	info, d := c.inferExpr(inner, body)
	if d != nil {
		return types.Info{}, d
	}
	e.close(inner)
	return info, nil
}

func (c *checker) inferMatch(e env, id ast.ExprID) (types.Info, *diag.Diagnostic) {
	data, _ := c.b.Exprs.Match(id)
	subject, d := c.inferExpr(e, data.Subject)
	if d != nil {
		return types.Info{}, d
	}
	covered := make(map[string]bool)
	wildcard := false
	var result *types.Info
	for _, arm := range data.Arms {
		inner := e.nested(e.facts.Fork())
		if pat := c.b.Patterns.Get(arm.Pattern); pat != nil {
			switch pat.Kind {
			case ast.PatternWildcard:
				wildcard = true
			case ast.PatternName:
				covered[c.b.Name(pat.Name)] = true
			case ast.PatternStruct:
				covered[c.b.Name(pat.Name)] = true
				for _, f := range pat.Fields {
					inner.scope.define(c.b.Name(f), types.Unknown(), types.Unknown())
				}
			}
		}
		info, d := c.inferExpr(inner, arm.Body)
		if d != nil {
			return types.Info{}, d
		}
		e.close(inner)
		if result == nil {
			result = &info
		} else {
			joined := types.Join(*result, info)
			result = &joined
		}
	}
	if c.strict && len(subject.UnionTags) > 0 && !wildcard {
		for _, tag := range subject.UnionTags {
			if !covered[tag] {
				return types.Info{}, diag.Errorf(diag.MatchNonExhaustive, c.pos(id),
					"non-exhaustive match: missing case for %s", tag).
					WithReason(fmt.Sprintf("The subject may be %s, but no case handles it.", tag))
			}
		}
	}
	if result == nil {
		return types.Unknown(), nil
	}
	return *result, nil
}
