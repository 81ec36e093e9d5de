package diag

import (
	"testing"

	"tuff/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	unit := fs.Add("/workspace/out/sample.json", []byte("{}"), 0)

	diags := []*Diagnostic{
		NewError(BorrowUseAfterMove, source.Pos{File: unit, Line: 3, Col: 9}, "Use of moved value 'v'"),
		NewError(SafetyDivByZero, source.Pos{File: unit, Line: 1, Col: 20}, "Division by zero\nnot excluded").
			WithNote(source.Pos{File: unit, Line: 1, Col: 1}, "x declared here"),
	}

	expected := "note E_SAFETY_DIV_BY_ZERO out/sample.json:1:1 x declared here\n" +
		"error E_SAFETY_DIV_BY_ZERO out/sample.json:1:20 Division by zero not excluded\n" +
		"error E_BORROW_USE_AFTER_MOVE out/sample.json:3:9 Use of moved value 'v'"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestCatalogueFillsContract(t *testing.T) {
	for code, info := range codeCatalogue {
		if code == UnknownCode {
			continue
		}
		d := NewError(code, source.Pos{Line: 1, Col: 1}, "msg")
		if d.Code.ID() != info.id || d.Reason == "" || d.Fix == "" {
			t.Errorf("%s: incomplete diagnostic contract %+v", info.id, d)
		}
		if back, ok := ParseCode(info.id); !ok || back != code {
			t.Errorf("ParseCode(%s) = %v, %v", info.id, back, ok)
		}
	}
}

func TestWithReasonKeepsDefaultOnEmpty(t *testing.T) {
	d := NewError(SafetyOverflow, source.Pos{}, "overflow").WithReason("")
	if d.Reason != SafetyOverflow.DefaultReason() {
		t.Fatalf("expected default reason, got %q", d.Reason)
	}
	d.WithReason("computed value 2147483648")
	if d.Reason != "computed value 2147483648" {
		t.Fatalf("reason not replaced: %q", d.Reason)
	}
	if got := d.Code.Family(); got != "safety" {
		t.Fatalf("expected safety family, got %q", got)
	}
	if got := BorrowMutConflict.Family(); got != "borrow" {
		t.Fatalf("expected borrow family, got %q", got)
	}
}

func TestBagSortAndLimit(t *testing.T) {
	bag := NewBag(2)
	late := NewError(TypeMismatch, source.Pos{File: 1, Line: 1, Col: 1}, "b")
	early := NewError(TypeMismatch, source.Pos{File: 0, Line: 5, Col: 1}, "a")
	if !bag.Add(late) || !bag.Add(early) {
		t.Fatalf("expected both diagnostics to fit")
	}
	if bag.Add(NewError(TypeArity, source.Pos{}, "c")) {
		t.Fatalf("expected limit to reject third diagnostic")
	}
	bag.Sort()
	if bag.Items()[0] != early {
		t.Fatalf("expected file 0 first")
	}
	if !bag.HasErrors() {
		t.Fatalf("expected errors")
	}
}
