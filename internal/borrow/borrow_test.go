package borrow

import (
	"strings"
	"testing"

	"tuff/internal/ast"
	"tuff/internal/diag"
	"tuff/internal/symbols"
	"tuff/internal/testkit"
)

type unit struct {
	*testkit.Unit
}

func newUnit() *unit {
	u := &unit{Unit: testkit.NewUnit()}
	u.Struct("Box", false, "x", u.Named("I32"))
	u.Struct("Pair", true, "x", u.Named("I32"))
	u.AliasWith("Owned", u.Named("Box"), false, "destroy")
	return u
}

// fn declares `fn f(params...) => { stmts }`; params alternate names and
// type names.
func (u *unit) fn(params []string, stmts ...ast.StmtID) {
	var ps []ast.FnParam
	for i := 0; i+1 < len(params); i += 2 {
		ps = append(ps, u.Param(params[i], u.Named(params[i+1])))
	}
	u.Fn("f", ps, ast.NoTypeID, u.Block(stmts...))
}

func (u *unit) let(name string, value ast.ExprID) ast.StmtID {
	return u.Let(name, ast.NoTypeID, value)
}

func (u *unit) check() *diag.Diagnostic {
	return Check(u.B, u.File, symbols.Build(u.B, u.File), Options{})
}

func expectCode(t *testing.T, d *diag.Diagnostic, want diag.Code, ident string) {
	t.Helper()
	if d == nil {
		t.Fatalf("expected %s, got success", want.ID())
	}
	if d.Code != want {
		t.Fatalf("expected %s, got %s: %s", want.ID(), d.Code.ID(), d.Message)
	}
	if d.Fix == "" || !d.Primary.IsValid() {
		t.Fatalf("diagnostic contract incomplete: %+v", d)
	}
	if ident != "" && !strings.Contains(d.Reason, "'"+ident+"'") {
		t.Fatalf("reason should name %q: %q", ident, d.Reason)
	}
}

func expectOK(t *testing.T, d *diag.Diagnostic) {
	t.Helper()
	if d != nil {
		t.Fatalf("expected success, got %s: %s (%s)", d.Code.ID(), d.Message, d.Reason)
	}
}

func TestSecondMoveOfNonCopyFails(t *testing.T) {
	u := newUnit()
	u.fn([]string{"v", "Box"}, u.let("a", u.ID("v")), u.let("b", u.ID("v")))
	expectCode(t, u.check(), diag.BorrowUseAfterMove, "v")
}

func TestMemberOfCallReadsArguments(t *testing.T) {
	u := newUnit()
	u.Fn("take", []ast.FnParam{u.Param("b", u.Named("Box"))}, u.Named("Box"), u.ID("b"))
	u.fn([]string{"v", "Box"}, u.let("a", u.ID("v")), u.let("b", u.Member(u.Call("take", u.ID("v")), "x")))
	expectCode(t, u.check(), diag.BorrowUseAfterMove, "v")

	u = newUnit()
	u.Fn("take", []ast.FnParam{u.Param("b", u.Named("Box"))}, u.Named("Box"), u.ID("b"))
	u.fn([]string{"v", "Box"}, u.let("b", u.Member(u.Call("take", u.ID("v")), "x")))
	expectOK(t, u.check())
}

func TestCopyValuesAreNotConsumed(t *testing.T) {
	for _, ty := range []string{"Pair", "I32", "*Box"} {
		u := newUnit()
		u.fn([]string{"v", ty}, u.let("a", u.ID("v")), u.let("b", u.ID("v")))
		expectOK(t, u.check())
	}
}

func TestReadsDoNotConsume(t *testing.T) {
	u := newUnit()
	u.ExternFn("show", []ast.FnParam{u.Param("b", u.Named("Box"))}, ast.NoTypeID)
	u.fn([]string{"v", "Box"},
		u.Stmt(u.Call("show", u.ID("v"))),
		u.Stmt(u.Call("show", u.ID("v"))),
		u.let("a", u.ID("v")),
	)
	expectOK(t, u.check())
}

func TestCopyFieldDoesNotConsumeOwner(t *testing.T) {
	u := newUnit()
	u.fn([]string{"v", "Box"}, u.let("a", u.Member(u.ID("v"), "x")), u.let("b", u.ID("v")))
	expectOK(t, u.check())
}

func TestIndexMoveKeepsBase(t *testing.T) {
	u := newUnit()
	u.fn([]string{"items", "Vec2"},
		u.let("a", u.Index(u.ID("items"), u.Num(0))),
		u.let("b", u.Index(u.ID("items"), u.Num(1))),
	)
	expectOK(t, u.check())
}

func TestBorrowConflicts(t *testing.T) {
	cases := []struct {
		name  string
		first func(u *unit) ast.ExprID
		then  func(u *unit) ast.ExprID
		want  diag.Code
	}{
		{"shared then shared",
			func(u *unit) ast.ExprID { return u.Ref(u.ID("b")) },
			func(u *unit) ast.ExprID { return u.Ref(u.ID("b")) }, diag.UnknownCode},
		{"shared then mut",
			func(u *unit) ast.ExprID { return u.Ref(u.ID("b")) },
			func(u *unit) ast.ExprID { return u.RefMut(u.ID("b")) }, diag.BorrowMutConflict},
		{"mut then shared",
			func(u *unit) ast.ExprID { return u.RefMut(u.ID("b")) },
			func(u *unit) ast.ExprID { return u.Ref(u.ID("b")) }, diag.BorrowImmutWhileMut},
		{"mut field then shared sibling",
			func(u *unit) ast.ExprID { return u.RefMut(u.Member(u.ID("b"), "x")) },
			func(u *unit) ast.ExprID { return u.Ref(u.Member(u.ID("b"), "y")) }, diag.UnknownCode},
		{"mut field then shared owner",
			func(u *unit) ast.ExprID { return u.RefMut(u.Member(u.ID("b"), "x")) },
			func(u *unit) ast.ExprID { return u.Ref(u.ID("b")) }, diag.BorrowImmutWhileMut},
		{"element then whole",
			func(u *unit) ast.ExprID { return u.RefMut(u.Index(u.ID("b"), u.Num(0))) },
			func(u *unit) ast.ExprID { return u.RefMut(u.ID("b")) }, diag.BorrowMutConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := newUnit()
			u.fn([]string{"b", "Box"}, u.let("r", tc.first(u)), u.let("m", tc.then(u)))
			d := u.check()
			if tc.want == diag.UnknownCode {
				expectOK(t, d)
				return
			}
			expectCode(t, d, tc.want, "b")
		})
	}
}

func TestLoansEndWithTheirBlock(t *testing.T) {
	u := newUnit()
	u.fn([]string{"b", "Box"},
		u.Stmt(u.Block(u.let("r", u.RefMut(u.ID("b"))))),
		u.let("m", u.RefMut(u.ID("b"))),
	)
	expectOK(t, u.check())
}

func TestMoveWhileBorrowed(t *testing.T) {
	u := newUnit()
	u.fn([]string{"v", "Box"}, u.let("r", u.Ref(u.ID("v"))), u.let("a", u.ID("v")))
	expectCode(t, u.check(), diag.BorrowMoveWhileBorrowed, "v")
}

func TestAssignWhileBorrowed(t *testing.T) {
	u := newUnit()
	u.fn([]string{"x", "I32"}, u.let("r", u.Ref(u.ID("x"))), u.Assign("x", u.Num(1)))
	expectCode(t, u.check(), diag.BorrowAssignWhileBorrowed, "x")
}

func TestAssignmentRevivesMovedName(t *testing.T) {
	u := newUnit()
	u.fn([]string{"v", "Box", "w", "Box"},
		u.let("a", u.ID("v")),
		u.Assign("v", u.ID("w")),
		u.let("b", u.ID("v")),
	)
	expectOK(t, u.check())
}

func TestInvalidBorrowTargets(t *testing.T) {
	u := newUnit()
	u.fn([]string{"x", "I32"}, u.let("r", u.Ref(u.Bin("+", u.ID("x"), u.Num(1)))))
	expectCode(t, u.check(), diag.BorrowInvalidTarget, "")

	// a struct literal operand is read instead
	u = newUnit()
	u.fn(nil, u.let("r", u.Ref(u.StructInit("Pair", "x", u.Num(1)))))
	expectOK(t, u.check())
}

func TestCopyAliasValidatedEagerly(t *testing.T) {
	u := newUnit()
	u.AliasWith("BoxAlias", u.Named("Box"), true, "")
	d := u.check()
	expectCode(t, d, diag.BorrowInvalidCopyAlias, "BoxAlias")

	u = newUnit()
	u.AliasWith("Meters", u.Named("I32"), true, "")
	u.fn([]string{"m", "Meters"}, u.let("a", u.ID("m")), u.let("b", u.ID("m")))
	expectOK(t, u.check())
}

func TestDropRules(t *testing.T) {
	cases := []struct {
		name  string
		param string
		stmts func(u *unit) []ast.StmtID
		want  diag.Code
	}{
		{"drop once", "Owned", func(u *unit) []ast.StmtID {
			return []ast.StmtID{u.Drop(u.ID("v"))}
		}, diag.UnknownCode},
		{"double drop", "Owned", func(u *unit) []ast.StmtID {
			return []ast.StmtID{u.Drop(u.ID("v")), u.Stmt(u.Call("drop", u.ID("v")))}
		}, diag.BorrowDoubleDrop},
		{"use after drop", "Owned", func(u *unit) []ast.StmtID {
			return []ast.StmtID{u.Drop(u.ID("v")), u.let("a", u.ID("v"))}
		}, diag.BorrowUseAfterDrop},
		{"drop after move", "Owned", func(u *unit) []ast.StmtID {
			return []ast.StmtID{u.let("a", u.ID("v")), u.Drop(u.ID("v"))}
		}, diag.BorrowUseAfterMove},
		{"no destructor", "Box", func(u *unit) []ast.StmtID {
			return []ast.StmtID{u.Drop(u.ID("v"))}
		}, diag.BorrowDropMissingDestructor},
		{"not a place", "Owned", func(u *unit) []ast.StmtID {
			return []ast.StmtID{u.Stmt(u.Call("drop", u.Num(1)))}
		}, diag.BorrowInvalidTarget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := newUnit()
			u.fn([]string{"v", tc.param}, tc.stmts(u)...)
			d := u.check()
			if tc.want == diag.UnknownCode {
				expectOK(t, d)
				return
			}
			expectCode(t, d, tc.want, "")
		})
	}
}

func TestBranchMovesAreUnioned(t *testing.T) {
	u := newUnit()
	u.fn([]string{"v", "Box", "c", "Bool"},
		u.IfStmt(u.ID("c"), u.Stmt(u.Block(u.let("a", u.ID("v")))), ast.NoStmtID),
		u.let("b", u.ID("v")),
	)
	expectCode(t, u.check(), diag.BorrowUseAfterMove, "v")

	// each arm sees the state before the branch, not the other arm
	u = newUnit()
	u.fn([]string{"v", "Box", "c", "Bool"},
		u.Stmt(u.If(u.ID("c"),
			u.Block(u.let("a", u.ID("v"))),
			u.Block(u.let("b", u.ID("v"))))),
	)
	expectOK(t, u.check())
}

func TestMatchArmsAreIndependent(t *testing.T) {
	u := newUnit()
	u.fn([]string{"v", "Box", "n", "I32"},
		u.Stmt(u.Match(u.ID("n"),
			u.Arm(u.NamePat("A"), u.Block(u.let("a", u.ID("v")))),
			u.Arm(u.Wildcard(), u.Block(u.let("b", u.ID("v")))),
		)),
		u.let("c", u.ID("v")),
	)
	expectCode(t, u.check(), diag.BorrowUseAfterMove, "v")
}

func TestFunctionNamesAreNotMoved(t *testing.T) {
	u := newUnit()
	u.Fn("g", nil, ast.NoTypeID, u.Num(1))
	u.fn(nil, u.let("a", u.ID("g")), u.let("b", u.ID("g")))
	expectOK(t, u.check())
}

func TestFunctionsGetFreshState(t *testing.T) {
	u := newUnit()
	u.fn([]string{"v", "Box"}, u.let("a", u.ID("v")))
	u.Fn("h", []ast.FnParam{u.Param("v", u.Named("Box"))}, ast.NoTypeID, u.Block(u.Let("a", ast.NoTypeID, u.ID("v"))))
	expectOK(t, u.check())
}

func TestPlacesConflict(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"x", "x", true},
		{"x", "x.f", true},
		{"x.f", "x.g", false},
		{"x.f", "x.fg", false},
		{"x[]", "x", true},
		{"x[].f", "x.f", true},
		{"x.f[]", "x.foo", false},
		{"x.f[]", "x.f.g", true},
	}
	for _, tc := range cases {
		p := place{base: "x", path: tc.a}
		q := place{base: "x", path: tc.b}
		if got := p.conflicts(q); got != tc.want {
			t.Errorf("%s vs %s: got %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
	if (place{base: "x", path: "x"}).conflicts(place{base: "y", path: "y"}) {
		t.Fatalf("different bases must not conflict")
	}
}

func TestForkIsolatesState(t *testing.T) {
	st := newState()
	st.moved.add("a")
	st.addLoan(loanShared, place{base: "a", path: "a"})

	arm := st.fork()
	arm.moved.add("b")
	arm.addLoan(loanMut, place{base: "b", path: "b"})

	if st.moved.has("b") || len(st.loans) != 1 {
		t.Fatalf("arm writes leaked into the parent: moved=%v loans=%d", st.moved.sorted(), len(st.loans))
	}
	if !arm.moved.has("a") {
		t.Fatalf("arm lost inherited moves")
	}

	st.addLoan(loanMut, place{base: "c", path: "c"})
	if len(arm.loans) != 2 || arm.loans[1].place.base != "b" {
		t.Fatalf("parent append clobbered the arm: %+v", arm.loans)
	}
}
