package symbols

import (
	"slices"

	"tuff/internal/ast"
	"tuff/internal/source"
	"tuff/internal/types"
)

// Table aggregates the declaration tables of one unit. It is built once and
// read by both checkers; nothing mutates it after Build.
type Table struct {
	Funcs       map[string]*Func
	Structs     map[string]*Struct
	Enums       map[string]*Enum
	Aliases     map[string]*Alias
	ExternTypes map[string]bool
	Globals     map[string]*Global

	// declaration order, used where the first offender must be deterministic
	aliasOrder  []string
	globalOrder []string
}

// NewTable returns empty tables.
func NewTable() *Table {
	return &Table{
		Funcs:       make(map[string]*Func),
		Structs:     make(map[string]*Struct),
		Enums:       make(map[string]*Enum),
		Aliases:     make(map[string]*Alias),
		ExternTypes: make(map[string]bool),
		Globals:     make(map[string]*Global),
	}
}

// Build collects the top-level declarations of file. A later declaration of
// the same name replaces an earlier one.
func Build(b *ast.Builder, file ast.FileID) *Table {
	t := NewTable()
	f := b.Files.Get(file)
	if f == nil {
		return t
	}
	for _, id := range f.Items {
		t.declare(b, id)
	}
	return t
}

func (t *Table) declare(b *ast.Builder, id ast.ItemID) {
	item := b.Items.Get(id)
	if item == nil {
		return
	}
	switch item.Kind {
	case ast.ItemFn, ast.ItemExternFn:
		fn, _ := b.Items.Fn(id)
		decl := &Func{
			Name:     b.Name(fn.Name),
			Item:     id,
			Pos:      item.Pos,
			Generics: names(b, fn.Generics),
			Result:   types.FromAST(b, fn.Result),
			Extern:   item.Kind == ast.ItemExternFn,
		}
		for _, p := range fn.Params {
			decl.Params = append(decl.Params, Param{Name: b.Name(p.Name), Type: types.FromAST(b, p.Type)})
		}
		t.Funcs[decl.Name] = decl
	case ast.ItemStruct:
		data, _ := b.Items.Struct(id)
		decl := &Struct{Name: b.Name(data.Name), Item: id, Pos: item.Pos, Copy: data.Copy}
		for _, f := range data.Fields {
			decl.Fields = append(decl.Fields, Field{Name: b.Name(f.Name), Type: types.FromAST(b, f.Type)})
		}
		t.Structs[decl.Name] = decl
	case ast.ItemEnum:
		data, _ := b.Items.Enum(id)
		decl := &Enum{Name: b.Name(data.Name), Item: id, Pos: item.Pos, Variants: names(b, data.Variants), Copy: data.Copy}
		t.Enums[decl.Name] = decl
	case ast.ItemTypeAlias:
		data, _ := b.Items.TypeAlias(id)
		decl := &Alias{
			Name:       b.Name(data.Name),
			Item:       id,
			Pos:        item.Pos,
			Target:     types.FromAST(b, data.Target),
			Copy:       data.Copy,
			Destructor: b.Name(data.Destructor),
		}
		if _, dup := t.Aliases[decl.Name]; !dup {
			t.aliasOrder = append(t.aliasOrder, decl.Name)
		}
		t.Aliases[decl.Name] = decl
	case ast.ItemExternType:
		data, _ := b.Items.ExternType(id)
		t.ExternTypes[b.Name(data.Name)] = true
	case ast.ItemLet, ast.ItemExternLet:
		data, _ := b.Items.Let(id)
		extern := item.Kind == ast.ItemExternLet
		if !data.Type.IsValid() {
			// untyped top-level lets are checked like statements, not published
			return
		}
		decl := &Global{Name: b.Name(data.Name), Item: id, Pos: item.Pos, Type: types.FromAST(b, data.Type), Extern: extern}
		if _, dup := t.Globals[decl.Name]; !dup {
			t.globalOrder = append(t.globalOrder, decl.Name)
		}
		t.Globals[decl.Name] = decl
	}
}

func names(b *ast.Builder, ids []source.StringID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.Name(id))
	}
	return out
}

// AliasTarget implements types.Decls.
func (t *Table) AliasTarget(name string) (*types.Type, bool) {
	a, ok := t.Aliases[name]
	if !ok || a.Target == nil {
		return nil, false
	}
	return a.Target, true
}

// IsDeclaredType implements types.Decls.
func (t *Table) IsDeclaredType(name string) bool {
	if _, ok := t.Structs[name]; ok {
		return true
	}
	if _, ok := t.Enums[name]; ok {
		return true
	}
	if _, ok := t.Aliases[name]; ok {
		return true
	}
	return t.ExternTypes[name]
}

// IsOpaque reports alias and extern type names; call and let checks accept
// any value where such a type is expected.
func (t *Table) IsOpaque(name string) bool {
	if _, ok := t.Aliases[name]; ok {
		return true
	}
	return t.ExternTypes[name]
}

// Destructor returns the destructor registered for a type name.
func (t *Table) Destructor(name string) (string, bool) {
	a, ok := t.Aliases[name]
	if !ok || a.Destructor == "" {
		return "", false
	}
	return a.Destructor, true
}

// AliasNames lists aliases in declaration order.
func (t *Table) AliasNames() []string {
	return slices.Clone(t.aliasOrder)
}

// GlobalNames lists typed globals in declaration order.
func (t *Table) GlobalNames() []string {
	return slices.Clone(t.globalOrder)
}

// FuncNames returns the sorted function names.
func (t *Table) FuncNames() []string {
	out := make([]string, 0, len(t.Funcs))
	for name := range t.Funcs {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Lookup reports what kind of declaration name refers to.
func (t *Table) Lookup(name string) (Kind, bool) {
	switch {
	case t.Funcs[name] != nil:
		return KindFn, true
	case t.Structs[name] != nil:
		return KindStruct, true
	case t.Enums[name] != nil:
		return KindEnum, true
	case t.Aliases[name] != nil:
		return KindAlias, true
	case t.ExternTypes[name]:
		return KindExternType, true
	case t.Globals[name] != nil:
		return KindGlobal, true
	}
	return 0, false
}

var _ types.Decls = (*Table)(nil)
