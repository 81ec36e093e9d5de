package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"tuff/internal/diag"
	"tuff/internal/source"
	"tuff/internal/testkit"
)

func unitWithProgram(t *testing.T) (*source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	fs.AddVirtual("/work/prog.tuff", []byte("fn f(a : I32) : I32 => {\n\tlet x = a / 0;\n}\n"))
	unit := fs.AddVirtual("/work/prog.json", []byte(`{"kind":"Program"}`))
	fs.SetOrigin(unit, "/work/prog.tuff")
	return fs, unit
}

func TestPrettyLayout(t *testing.T) {
	fs, unit := unitWithProgram(t)
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SafetyDivByZero, source.Pos{File: unit, Line: 2, Col: 10}, "division by zero cannot be ruled out at compile time"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAbsolute})
	out := buf.String()

	want := []string{
		"E_SAFETY_DIV_BY_ZERO /work/prog.tuff:2:10",
		"  source:",
		"    \tlet x = a / 0;",
		"    \t        ^",
		"  cause:",
		"  reason:",
		"  fix:",
	}
	for _, line := range want {
		if !strings.Contains(out, line+"\n") {
			t.Fatalf("missing %q in:\n%s", line, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected escape codes:\n%s", out)
	}
}

func TestPrettyWithoutSource(t *testing.T) {
	fs := source.NewFileSet()
	unit := fs.AddVirtual("/work/gone.json", []byte("{}"))
	fs.SetOrigin(unit, "/nonexistent/prog.tuff")
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.BorrowUseAfterMove, source.Pos{File: unit, Line: 3, Col: 1}, "Use of moved value 'x'"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if !strings.Contains(buf.String(), "    <unavailable>\n") {
		t.Fatalf("expected an unavailable excerpt:\n%s", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	fs, unit := unitWithProgram(t)
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SafetyOverflow, source.Pos{File: unit, Line: 1, Col: 1}, "overflow"))
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected escape codes:\n%q", buf.String())
	}
}

func TestExcerptWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	unit := fs.AddVirtual("/work/wide.tuff", []byte("let 名前 = x;\n"))
	lines := excerpt(fs, source.Pos{File: unit, Line: 1, Col: 10}, 0)
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	// "let " is 4 columns, each ideograph 2, then " = " puts x at width 11
	if lines[1] != strings.Repeat(" ", 11)+"^" {
		t.Fatalf("caret = %q", lines[1])
	}
}

func TestJSONOutput(t *testing.T) {
	fs, unit := unitWithProgram(t)
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SafetyDivByZero, source.Pos{File: unit, Line: 2, Col: 10}, "division"))
	bag.Add(diag.NewError(diag.BorrowDoubleDrop, source.Pos{File: unit, Line: 3, Col: 1}, "Double drop of 'x'"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeAbsolute, Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	got := out.Diagnostics[0]
	if got.Code != "E_SAFETY_DIV_BY_ZERO" || got.Location.File != "/work/prog.tuff" || got.Location.Line != 2 {
		t.Fatalf("diagnostic = %+v", got)
	}
	if got.Reason == "" || got.Fix == "" || len(got.Source) != 2 {
		t.Fatalf("contract fields missing: %+v", got)
	}
}

func TestShortFormat(t *testing.T) {
	fs, unit := unitWithProgram(t)
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.MatchNonExhaustive, source.Pos{File: unit, Line: 4, Col: 2}, "Non-exhaustive   match"))
	var buf bytes.Buffer
	Short(&buf, bag, fs, false)
	if got := buf.String(); got != "error E_MATCH_NON_EXHAUSTIVE /work/prog.tuff:4:2 Non-exhaustive match\n" {
		t.Fatalf("short = %q", got)
	}
}

func TestFormatTree(t *testing.T) {
	u := testkit.NewUnit()
	u.Struct("Point", true, "x", u.Named("I32"))
	u.Fn("main", nil, u.Named("I32"), u.Block(
		u.Let("p", u.Named("Point"), u.StructInit("Point", "x", u.Num(1))),
		u.Return(u.Member(u.ID("p"), "x")),
	))

	var buf bytes.Buffer
	if err := FormatTree(&buf, u.B, u.File, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"├─ StructDecl copy Point",
		"│  └─ field x: I32",
		"└─ FnDecl main",
		"LetDecl p: Point",
		"MemberExpr .x",
		"Identifier p",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
