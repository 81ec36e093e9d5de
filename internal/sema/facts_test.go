package sema

import (
	"testing"

	"tuff/internal/ast"
	"tuff/internal/types"
)

func TestDeriveFactsComparisons(t *testing.T) {
	u := newUnit()

	facts := DeriveFacts(u.B, u.Bin("&&", u.Bin(">", u.ID("x"), u.Num(0)), u.Bin("!=", u.ID("y"), u.Num(0))), true)
	x, ok := facts.Lookup("x")
	if !ok || !x.Min.Known || x.Min.V != 1 {
		t.Fatalf("x > 0 should give min 1, got %+v", x)
	}
	y, ok := facts.Lookup("y")
	if !ok || !y.NonZero.Value || y.NonNull {
		t.Fatalf("y != 0 should give non-zero only, got %+v", y)
	}

	// && says nothing when false
	facts = DeriveFacts(u.B, u.Bin("&&", u.Bin(">", u.ID("x"), u.Num(0)), u.Bin("!=", u.ID("y"), u.Num(0))), false)
	if facts.Len() != 0 {
		t.Fatalf("expected no facts, got %v", facts.Names())
	}

	// negation under a false assumption: !(x < 5) means x >= 5
	facts = DeriveFacts(u.B, u.Bin("<", u.ID("x"), u.Num(5)), false)
	if x, _ := facts.Lookup("x"); !x.Min.Known || x.Min.V != 5 || x.Max.Known {
		t.Fatalf("expected min 5, got %+v", x)
	}

	facts = DeriveFacts(u.B, u.Unary(ast.ExprUnaryNot, u.Bin("<=", u.ID("x"), u.Num(9))), true)
	if x, _ := facts.Lookup("x"); !x.Min.Known || x.Min.V != 10 {
		t.Fatalf("expected min 10, got %+v", x)
	}
}

func TestDeriveFactsOrUnderFalse(t *testing.T) {
	u := newUnit()
	cond := u.Bin("||", u.Bin(">", u.ID("x"), u.Num(0)), u.Bin(">", u.ID("y"), u.Num(0)))

	if facts := DeriveFacts(u.B, cond, true); facts.Len() != 0 {
		t.Fatalf("|| under true must not narrow, got %v", facts.Names())
	}
	facts := DeriveFacts(u.B, cond, false)
	for _, name := range []string{"x", "y"} {
		f, ok := facts.Lookup(name)
		if !ok || !f.Max.Known || f.Max.V != 0 {
			t.Fatalf("%s should be capped at 0, got %+v", name, f)
		}
	}
}

func TestDeriveFactsLiteralOnLeft(t *testing.T) {
	u := newUnit()
	facts := DeriveFacts(u.B, u.Bin("<", u.Num(0), u.ID("x")), true)
	if x, _ := facts.Lookup("x"); !x.Min.Known || x.Min.V != 1 {
		t.Fatalf("0 < x should give min 1, got %+v", x)
	}
}

func TestDeriveFactsNullSentinel(t *testing.T) {
	u := newUnit()
	facts := DeriveFacts(u.B, u.Bin("!=", u.ID("p"), u.USize(0)), true)
	p, ok := facts.Lookup("p")
	if !ok || !p.NonNull || !p.NonZero.Value {
		t.Fatalf("p != 0USize should mark the pointer guarded, got %+v", p)
	}

	facts = DeriveFacts(u.B, u.Bin("==", u.ID("p"), u.USize(0)), true)
	p, _ = facts.Lookup("p")
	if p.NonNull || !p.NonZero.Set || p.NonZero.Value {
		t.Fatalf("p == 0USize proves zero, got %+v", p)
	}
}

func TestFactsNarrowBindings(t *testing.T) {
	u := newUnit()
	e := rootEnv()
	declared := types.Info{Name: types.NameI32, Type: types.Named(types.NameI32)}.WithBounds(types.Exact(-10), types.Exact(10))
	e.scope.define("x", declared, declared)

	inner := e.nested(types.Merge(e.facts, DeriveFacts(u.B, u.Bin(">=", u.ID("x"), u.Num(3)), true)))
	c := &checker{b: u.B}
	got := c.identifier(inner, "x")
	if got.Min.V != 3 || got.Max.V != 10 || !got.NonZero {
		t.Fatalf("expected [3, 10] != 0, got %s", got)
	}
	if outer := c.identifier(e, "x"); outer.Min.V != -10 {
		t.Fatalf("facts leaked into the parent env: %s", outer)
	}
}
