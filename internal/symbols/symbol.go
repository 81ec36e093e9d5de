package symbols

import (
	"tuff/internal/ast"
	"tuff/internal/source"
	"tuff/internal/types"
)

// Kind classifies a top-level declaration.
type Kind uint8

const (
	KindFn Kind = iota
	KindStruct
	KindEnum
	KindAlias
	KindExternType
	KindGlobal
)

func (k Kind) String() string {
	switch k {
	case KindFn:
		return "fn"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindAlias:
		return "type"
	case KindExternType:
		return "extern type"
	case KindGlobal:
		return "let"
	default:
		return "?"
	}
}

// Param is one declared function parameter.
type Param struct {
	Name string
	Type *types.Type
}

// Func is a function signature. Extern functions have no body and skip the
// arity check at call sites.
type Func struct {
	Name     string
	Item     ast.ItemID
	Pos      source.Pos
	Generics []string
	Params   []Param
	Result   *types.Type
	Extern   bool
}

type Field struct {
	Name string
	Type *types.Type
}

type Struct struct {
	Name   string
	Item   ast.ItemID
	Pos    source.Pos
	Fields []Field
	Copy   bool
}

// Field returns the declared field by name.
func (s *Struct) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type Enum struct {
	Name     string
	Item     ast.ItemID
	Pos      source.Pos
	Variants []string
	Copy     bool
}

// Alias is a type alias; Destructor names the function run when a value of
// the alias is dropped.
type Alias struct {
	Name       string
	Item       ast.ItemID
	Pos        source.Pos
	Target     *types.Type
	Copy       bool
	Destructor string
}

// Global is a typed top-level let or an extern let.
type Global struct {
	Name   string
	Item   ast.ItemID
	Pos    source.Pos
	Type   *types.Type
	Extern bool
}
