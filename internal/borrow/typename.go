package borrow

import (
	"strings"

	"tuff/internal/ast"
	"tuff/internal/types"
)

// typeEnv maps variable names to the type name they were declared with.
// Blocks and branch arms open a child layer; children never write through.
type typeEnv struct {
	parent *typeEnv
	vars   map[string]string
}

func newTypeEnv(parent *typeEnv) *typeEnv {
	return &typeEnv{parent: parent, vars: make(map[string]string)}
}

func (e *typeEnv) lookup(name string) string {
	for layer := e; layer != nil; layer = layer.parent {
		if ty, ok := layer.vars[name]; ok {
			return ty
		}
	}
	return types.NameUnknown
}

func (e *typeEnv) set(name, ty string) {
	e.vars[name] = ty
}

// typeNameOf lowers a syntactic type to the name the copy and destructor
// registries are keyed by.
func (c *checker) typeNameOf(id ast.TypeID) string {
	name := types.NameOf(types.FromAST(c.b, id))
	if name == "" {
		return types.NameUnknown
	}
	return name
}

// exprTypeName is the shallow type inference the ownership pass needs: it
// only has to decide copy-ness and destructor lookup.
func (c *checker) exprTypeName(env *typeEnv, id ast.ExprID) string {
	expr := c.b.Exprs.Get(id)
	if expr == nil {
		return types.NameUnknown
	}
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := c.b.Exprs.Literal(id)
		switch lit.Kind {
		case ast.ExprLitNumber:
			if suffix := c.b.Name(lit.Suffix); types.IsNumeric(suffix) {
				return suffix
			}
			return types.NameI32
		case ast.ExprLitBool:
			return types.NameBool
		case ast.ExprLitChar:
			return types.NameChar
		case ast.ExprLitString:
			return types.NameStrPtr
		}
	case ast.ExprIdent:
		data, _ := c.b.Exprs.Ident(id)
		return env.lookup(c.b.Name(data.Name))
	case ast.ExprUnary:
		data, _ := c.b.Exprs.Unary(id)
		inner := c.exprTypeName(env, data.Operand)
		switch data.Op {
		case ast.ExprUnaryRef:
			return "*" + inner
		case ast.ExprUnaryRefMut:
			return "*mut " + inner
		case ast.ExprUnaryNot:
			return types.NameBool
		}
		return inner
	case ast.ExprBinary:
		data, _ := c.b.Exprs.Binary(id)
		if data.Op.IsComparison() || data.Op.IsLogical() {
			return types.NameBool
		}
		return c.exprTypeName(env, data.Left)
	case ast.ExprCall:
		data, _ := c.b.Exprs.Call(id)
		if ident, ok := c.b.Exprs.Ident(data.Callee); ok {
			if fn := c.tables.Funcs[c.b.Name(ident.Name)]; fn != nil && fn.Result != nil {
				return types.NameOf(fn.Result)
			}
		}
	case ast.ExprStruct:
		data, _ := c.b.Exprs.Struct(id)
		return c.b.Name(data.Name)
	case ast.ExprMember:
		data, _ := c.b.Exprs.Member(id)
		owner := strings.TrimPrefix(strings.TrimPrefix(c.exprTypeName(env, data.Target), "*mut "), "*")
		if decl := c.tables.Structs[owner]; decl != nil {
			if f, ok := decl.Field(c.b.Name(data.Field)); ok {
				if name := types.NameOf(f.Type); name != "" {
					return name
				}
			}
		}
	}
	return types.NameUnknown
}
