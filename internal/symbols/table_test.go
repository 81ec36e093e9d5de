package symbols

import (
	"testing"

	"tuff/internal/ast"
	"tuff/internal/source"
)

type fixture struct {
	b    *ast.Builder
	file ast.FileID
}

func newFixture() *fixture {
	b := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	return &fixture{b: b, file: b.NewFile(source.Pos{}, source.NoStringID)}
}

func (f *fixture) named(name string) ast.TypeID {
	return f.b.Types.NewNamed(source.Pos{}, f.b.Intern(name), nil)
}

func (f *fixture) structDecl(name string, isCopy bool, fields ...string) {
	data := ast.StructItem{Name: f.b.Intern(name), Copy: isCopy}
	for i := 0; i+1 < len(fields); i += 2 {
		data.Fields = append(data.Fields, ast.StructField{Name: f.b.Intern(fields[i]), Type: f.named(fields[i+1])})
	}
	f.b.PushItem(f.file, f.b.Items.NewStruct(source.Pos{}, data))
}

func (f *fixture) alias(name, target string, isCopy bool, destructor string) {
	data := ast.TypeAliasItem{Name: f.b.Intern(name), Target: f.named(target), Copy: isCopy}
	if destructor != "" {
		data.Destructor = f.b.Intern(destructor)
	}
	f.b.PushItem(f.file, f.b.Items.NewTypeAlias(source.Pos{Line: 3, Col: 1}, data))
}

func TestBuildCollectsDeclarations(t *testing.T) {
	f := newFixture()
	f.structDecl("Point", true, "x", "I32", "y", "I32")
	f.b.PushItem(f.file, f.b.Items.NewEnum(source.Pos{}, ast.EnumItem{
		Name:     f.b.Intern("Color"),
		Variants: []source.StringID{f.b.Intern("Red"), f.b.Intern("Green")},
	}))
	f.b.PushItem(f.file, f.b.Items.NewFn(source.Pos{}, ast.FnItem{
		Name:     f.b.Intern("id"),
		Generics: []source.StringID{f.b.Intern("T")},
		Params:   []ast.FnParam{{Name: f.b.Intern("v"), Type: f.named("T")}},
		Result:   f.named("T"),
	}, false))
	f.b.PushItem(f.file, f.b.Items.NewFn(source.Pos{}, ast.FnItem{Name: f.b.Intern("puts")}, true))
	f.b.PushItem(f.file, f.b.Items.NewExternType(source.Pos{}, ast.ExternTypeItem{Name: f.b.Intern("FILE")}))
	f.b.PushItem(f.file, f.b.Items.NewLet(source.Pos{}, ast.LetItem{Name: f.b.Intern("limit"), Type: f.named("I32")}, false))
	f.b.PushItem(f.file, f.b.Items.NewLet(source.Pos{}, ast.LetItem{Name: f.b.Intern("tmp")}, false))

	table := Build(f.b, f.file)

	if p := table.Structs["Point"]; p == nil || len(p.Fields) != 2 || !p.Copy {
		t.Fatalf("unexpected struct entry: %+v", p)
	}
	if fld, ok := table.Structs["Point"].Field("y"); !ok || fld.Type.Name != "I32" {
		t.Fatalf("expected field y: I32, got %+v", fld)
	}
	if e := table.Enums["Color"]; e == nil || len(e.Variants) != 2 || e.Variants[1] != "Green" {
		t.Fatalf("unexpected enum entry: %+v", e)
	}
	id := table.Funcs["id"]
	if id == nil || id.Extern || len(id.Generics) != 1 || id.Result.Name != "T" {
		t.Fatalf("unexpected fn entry: %+v", id)
	}
	if !table.Funcs["puts"].Extern {
		t.Fatalf("expected puts to be extern")
	}
	if !table.IsDeclaredType("FILE") || !table.IsOpaque("FILE") || table.IsDeclaredType("I32") {
		t.Fatalf("declared type view is wrong")
	}
	if _, ok := table.Globals["limit"]; !ok {
		t.Fatalf("expected typed global")
	}
	if _, ok := table.Globals["tmp"]; ok {
		t.Fatalf("untyped let must not be published")
	}
	if kind, ok := table.Lookup("id"); !ok || kind != KindFn {
		t.Fatalf("lookup id: %v %v", kind, ok)
	}
	if got := table.FuncNames(); len(got) != 2 || got[0] != "id" {
		t.Fatalf("FuncNames = %v", got)
	}
}

func TestCopyRegistry(t *testing.T) {
	f := newFixture()
	f.structDecl("Box", false)
	f.structDecl("Pair", true)
	f.alias("PairAlias", "Pair", true, "")
	f.alias("Handle", "USize", false, "close")
	f.b.PushItem(f.file, f.b.Items.NewEnum(source.Pos{}, ast.EnumItem{Name: f.b.Intern("Mode")}))
	table := Build(f.b, f.file)

	cases := map[string]bool{
		"I32":       true,
		"*Box":      true,
		"*mut Box":  true,
		"Vec":       true,
		"Box":       false,
		"Pair":      true,
		"PairAlias": true,
		"Handle":    false,
		"Mode":      false,
		"Unknown":   false,
	}
	for name, want := range cases {
		if got := table.IsCopyName(name); got != want {
			t.Errorf("IsCopyName(%q) = %v, want %v", name, got, want)
		}
	}
	if bad := table.InvalidCopyAlias(); bad != nil {
		t.Fatalf("unexpected invalid alias %s", bad.Name)
	}
	if d, ok := table.Destructor("Handle"); !ok || d != "close" {
		t.Fatalf("expected destructor close, got %q", d)
	}
}

func TestInvalidCopyAliasIsFirstInOrder(t *testing.T) {
	f := newFixture()
	f.structDecl("Box", false)
	f.alias("Loop", "Loop", true, "")
	f.alias("BoxAlias", "Box", true, "")
	table := Build(f.b, f.file)

	bad := table.InvalidCopyAlias()
	if bad == nil || bad.Name != "Loop" {
		t.Fatalf("expected self-referential alias to be rejected first, got %+v", bad)
	}
	if table.IsCopyName("BoxAlias") {
		t.Fatalf("alias over non-copy struct must not copy")
	}
	if got := table.AliasNames(); len(got) != 2 || got[1] != "BoxAlias" {
		t.Fatalf("AliasNames = %v", got)
	}
}
