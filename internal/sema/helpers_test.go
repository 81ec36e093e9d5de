package sema

import (
	"strings"
	"testing"

	"tuff/internal/diag"
	"tuff/internal/symbols"
	"tuff/internal/testkit"
)

type unit struct {
	*testkit.Unit
}

func newUnit() *unit {
	return &unit{Unit: testkit.NewUnit()}
}

func (u *unit) check(strict bool) *diag.Diagnostic {
	return Check(u.B, u.File, symbols.Build(u.B, u.File), Options{StrictSafety: strict})
}

func expectCode(t *testing.T, d *diag.Diagnostic, want diag.Code) {
	t.Helper()
	if d == nil {
		t.Fatalf("expected %s, got success", want.ID())
	}
	if d.Code != want {
		t.Fatalf("expected %s, got %s: %s", want.ID(), d.Code.ID(), d.Message)
	}
	if d.Reason == "" || d.Fix == "" || !d.Primary.IsValid() {
		t.Fatalf("diagnostic contract incomplete: %+v", d)
	}
}

func expectOK(t *testing.T, d *diag.Diagnostic) {
	t.Helper()
	if d != nil {
		t.Fatalf("expected success, got %s: %s (%s)", d.Code.ID(), d.Message, d.Reason)
	}
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }
