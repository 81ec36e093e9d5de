package astjson

import (
	"os"
	"strings"
	"testing"

	"tuff/internal/ast"
	"tuff/internal/borrow"
	"tuff/internal/diag"
	"tuff/internal/sema"
	"tuff/internal/source"
	"tuff/internal/symbols"
	"tuff/internal/testkit"
)

func decode(t *testing.T, doc string) (*ast.Builder, ast.FileID, *diag.Diagnostic) {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	file, d := Decode(b, 1, []byte(doc))
	return b, file, d
}

func TestDecodeProgram(t *testing.T) {
	data, err := os.ReadFile("testdata/safe_div.json")
	if err != nil {
		t.Fatal(err)
	}
	b, file, d := decode(t, string(data))
	if d != nil {
		t.Fatalf("decode: %v", d)
	}
	if err := testkit.CheckTreeInvariants(b, file); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	f := b.Files.Get(file)
	if got := b.Name(f.Origin); got != "examples/safe_div.tuff" {
		t.Fatalf("origin = %q", got)
	}
	wantKinds := []ast.ItemKind{ast.ItemTypeAlias, ast.ItemExternFn, ast.ItemFn, ast.ItemLet}
	if len(f.Items) != len(wantKinds) {
		t.Fatalf("items = %d, want %d", len(f.Items), len(wantKinds))
	}
	for i, id := range f.Items {
		if got := b.Items.Get(id).Kind; got != wantKinds[i] {
			t.Fatalf("item %d kind = %s, want %s", i, got, wantKinds[i])
		}
	}

	alias, _ := b.Items.TypeAlias(f.Items[0])
	if b.Name(alias.Destructor) != "release" {
		t.Fatalf("destructor = %q", b.Name(alias.Destructor))
	}
	fn, _ := b.Items.Fn(f.Items[2])
	if len(fn.Params) != 2 || !fn.Result.IsValid() || !fn.Body.IsValid() {
		t.Fatalf("fn = %+v", fn)
	}
	body, ok := b.Exprs.Block(fn.Body)
	if !ok || len(body.Stmts) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if pos := b.Stmts.Get(body.Stmts[1]).Pos; pos.Line != 8 || pos.Col != 3 || pos.File != 1 {
		t.Fatalf("return pos = %v", pos)
	}

	tables := symbols.Build(b, file)
	if d := sema.Check(b, file, tables, sema.Options{StrictSafety: true}); d != nil {
		t.Fatalf("sema: %v", d)
	}
	if d := borrow.Check(b, file, tables, borrow.Options{}); d != nil {
		t.Fatalf("borrow: %v", d)
	}
}

func TestDecodeInheritsParentLocation(t *testing.T) {
	b, file, d := decode(t, `{"kind":"Program","loc":{"line":3,"column":2},"body":[
		{"kind":"LetDecl","name":"x","value":{"kind":"NumberLiteral","value":1,"numberType":"U8"}}]}`)
	if d != nil {
		t.Fatalf("decode: %v", d)
	}
	let, _ := b.Items.Let(b.Files.Get(file).Items[0])
	stmt, _ := b.Stmts.Let(let.Stmt)
	lit, _ := b.Exprs.Literal(stmt.Value)
	if b.Name(lit.Suffix) != "U8" || lit.Int != 1 {
		t.Fatalf("literal = %+v", lit)
	}
	if pos := b.Exprs.Get(stmt.Value).Pos; pos.Line != 3 || pos.Col != 2 {
		t.Fatalf("pos = %v", pos)
	}
}

func TestDecodeWrapsBlocksInStatementPosition(t *testing.T) {
	b, file, d := decode(t, `{"kind":"Program","body":[{"kind":"FnDecl","name":"f","params":[],
		"body":{"kind":"Block","statements":[
			{"kind":"WhileStmt","condition":{"kind":"BoolLiteral","value":true},
			 "body":{"kind":"Block","statements":[{"kind":"BreakStmt"}]}}]}}]}`)
	if d != nil {
		t.Fatalf("decode: %v", d)
	}
	fn, _ := b.Items.Fn(b.Files.Get(file).Items[0])
	body, _ := b.Exprs.Block(fn.Body)
	loop, ok := b.Stmts.While(body.Stmts[0])
	if !ok {
		t.Fatal("expected a while statement")
	}
	wrapped, ok := b.Stmts.Expr(loop.Body)
	if !ok {
		t.Fatalf("loop body kind = %s", b.Stmts.Get(loop.Body).Kind)
	}
	if b.Exprs.Get(wrapped.Expr).Kind != ast.ExprBlock {
		t.Fatalf("wrapped kind = %s", b.Exprs.Get(wrapped.Expr).Kind)
	}
}

func TestDecodePatternsAndTypes(t *testing.T) {
	b, file, d := decode(t, `{"kind":"Program","body":[
		{"kind":"TypeAlias","name":"P","aliasedType":{"kind":"UnionType",
			"left":{"kind":"PointerType","to":{"kind":"NamedType","name":"I32"},"mutable":true},
			"right":{"kind":"ArrayType","element":{"kind":"NamedType","name":"U8"},
				"init":{"kind":"NumberLiteral","value":2},"total":{"kind":"NumberLiteral","value":4}}}},
		{"kind":"FnDecl","name":"f","params":[{"name":"s","type":{"kind":"NamedType","name":"S"}}],
		 "body":{"kind":"MatchExpr","target":{"kind":"Identifier","name":"s"},"cases":[
			{"pattern":{"kind":"StructPattern","name":"S","fields":["a",{"name":"b"}]},"body":{"kind":"NumberLiteral","value":1}},
			{"pattern":{"kind":"LiteralPattern","value":7},"body":{"kind":"NumberLiteral","value":2}},
			{"pattern":{"kind":"WildcardPattern"},"body":{"kind":"NumberLiteral","value":3}}]}}]}`)
	if d != nil {
		t.Fatalf("decode: %v", d)
	}
	items := b.Files.Get(file).Items
	alias, _ := b.Items.TypeAlias(items[0])
	union, ok := b.Types.Union(alias.Target)
	if !ok {
		t.Fatal("expected a union")
	}
	if ptr, ok := b.Types.Pointer(union.Left); !ok || !ptr.Mutable {
		t.Fatalf("left = %+v", ptr)
	}
	if arr, ok := b.Types.Array(union.Right); !ok || !arr.Init.IsValid() || !arr.Total.IsValid() {
		t.Fatalf("right = %+v", arr)
	}

	fn, _ := b.Items.Fn(items[1])
	match, _ := b.Exprs.Match(fn.Body)
	if len(match.Arms) != 3 {
		t.Fatalf("arms = %d", len(match.Arms))
	}
	sp := b.Patterns.Get(match.Arms[0].Pattern)
	if sp.Kind != ast.PatternStruct || len(sp.Fields) != 2 || b.Name(sp.Fields[1]) != "b" {
		t.Fatalf("struct pattern = %+v", sp)
	}
	lp := b.Patterns.Get(match.Arms[1].Pattern)
	lit, _ := b.Exprs.Literal(lp.Value)
	if lp.Kind != ast.PatternLiteral || lit.Int != 7 {
		t.Fatalf("literal pattern = %+v", lp)
	}
	if err := testkit.CheckTreeInvariants(b, file); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantLine uint32
		wantMsg  string
	}{
		{"not json", `{"kind":`, 1, "object"},
		{"not a program", `{"kind":"Block","statements":[]}`, 1, "Program"},
		{"unknown item", `{"kind":"Program","body":[{"kind":"Macro","loc":{"line":4,"column":1}}]}`, 4, "unknown item"},
		{"missing field", `{"kind":"Program","body":[{"kind":"FnDecl","loc":{"line":2,"column":1},"params":[]}]}`, 2, `"name"`},
		{"unknown operator", `{"kind":"Program","body":[{"kind":"LetDecl","name":"x","loc":{"line":6,"column":1},
			"value":{"kind":"BinaryExpr","op":"**","loc":{"line":6,"column":9},
				"left":{"kind":"NumberLiteral","value":1},"right":{"kind":"NumberLiteral","value":2}}}]}`, 6, "**"},
		{"fractional number", `{"kind":"Program","body":[{"kind":"LetDecl","name":"x",
			"value":{"kind":"NumberLiteral","value":1.5,"loc":{"line":3,"column":9}}}]}`, 3, "value"},
		{"line out of range", `{"kind":"Program","body":[{"kind":"ExternTypeDecl","name":"T","loc":{"line":5000000000,"column":1}}]}`, 1, "line"},
		{"unknown unary", `{"kind":"Program","body":[{"kind":"LetDecl","name":"x",
			"value":{"kind":"UnaryExpr","op":"~","expr":{"kind":"NumberLiteral","value":1},"loc":{"line":2,"column":9}}}]}`, 2, "~"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, d := decode(t, tt.doc)
			if d == nil {
				t.Fatal("expected a diagnostic")
			}
			if d.Code != diag.InputMalformed {
				t.Fatalf("code = %s", d.Code.ID())
			}
			if d.Primary.Line != tt.wantLine {
				t.Fatalf("line = %d, want %d (%s)", d.Primary.Line, tt.wantLine, d.Message)
			}
			if !strings.Contains(d.Message, tt.wantMsg) {
				t.Fatalf("message %q does not mention %q", d.Message, tt.wantMsg)
			}
		})
	}
}
