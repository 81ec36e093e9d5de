package sema

import (
	"math"
	"testing"

	"tuff/internal/ast"
	"tuff/internal/diag"
	"tuff/internal/symbols"
	"tuff/internal/types"
)

func TestLiteralInfoIsExact(t *testing.T) {
	u := newUnit()
	c := &checker{b: u.B, tables: symbols.NewTable(), resolver: types.NewResolver(nil)}
	for _, v := range []int64{math.MinInt32, -1, 0, 1, 42, math.MaxInt32} {
		info, d := c.inferExpr(rootEnv(), u.Num(v))
		if d != nil {
			t.Fatalf("literal %d: %v", v, d)
		}
		if info.Name != types.NameI32 {
			t.Fatalf("literal %d: name %s", v, info.Name)
		}
		if !info.Min.Known || !info.Max.Known || info.Min.V != v || info.Max.V != v {
			t.Fatalf("literal %d: bounds %s", v, info)
		}
		if info.NonZero != (v != 0) {
			t.Fatalf("literal %d: nonZero=%v", v, info.NonZero)
		}
	}

	info, _ := c.inferExpr(rootEnv(), u.USize(7))
	if info.Name != types.NameUSize {
		t.Fatalf("suffix ignored: %s", info)
	}
}

func TestGuardedDivisionPasses(t *testing.T) {
	u := newUnit()
	body := u.If(u.Bin("!=", u.ID("x"), u.Num(0)),
		u.Block(u.Stmt(u.Bin("/", u.Num(100), u.ID("x")))),
		u.Block(u.Stmt(u.Num(0))))
	u.Fn("f", []ast.FnParam{u.Param("x", u.Named("I32"))}, u.Named("I32"), body)
	expectOK(t, u.check(true))
}

func TestUnguardedDivisionFails(t *testing.T) {
	u := newUnit()
	u.Fn("f", []ast.FnParam{u.Param("x", u.Named("I32"))}, u.Named("I32"), u.Bin("/", u.Num(100), u.ID("x")))
	d := u.check(true)
	expectCode(t, d, diag.SafetyDivByZero)
	if !contains(d.Reason, "'x'") {
		t.Fatalf("reason should name the denominator: %q", d.Reason)
	}

	// the proofs are only demanded in strict mode
	expectOK(t, u.check(false))
}

func TestModuloNeedsNonZeroDivisor(t *testing.T) {
	u := newUnit()
	u.Fn("f", []ast.FnParam{u.Param("x", u.Named("I32"))}, u.Named("I32"), u.Bin("%", u.Num(7), u.ID("x")))
	expectCode(t, u.check(true), diag.SafetyModByZero)

	u = newUnit()
	nonZero := u.Refine(u.Named("I32"), "!=", u.Num(0))
	u.Fn("f", []ast.FnParam{u.Param("x", nonZero)}, u.Named("I32"), u.Bin("%", u.Num(7), u.ID("x")))
	expectOK(t, u.check(true))
}

func TestOverflowWitness(t *testing.T) {
	u := newUnit()
	u.Fn("f", nil, u.Named("I32"), u.Bin("+", u.Num(math.MaxInt32), u.Num(1)))
	d := u.check(true)
	expectCode(t, d, diag.SafetyOverflow)
	if !contains(d.Reason, "2147483648") {
		t.Fatalf("reason should carry the escaping value: %q", d.Reason)
	}

	u = newUnit()
	u.Fn("f", nil, u.Named("I32"), u.Bin("+", u.Num(math.MaxInt32-1), u.Num(1)))
	expectOK(t, u.check(true))
}

func TestOverflowUnprovenForUnboundedOperand(t *testing.T) {
	u := newUnit()
	u.Fn("f", []ast.FnParam{u.Param("x", u.Named("U64"))}, u.Named("U64"), u.Bin("+", u.ID("x"), u.Num(1)))
	d := u.check(true)
	expectCode(t, d, diag.SafetyOverflow)
	if !contains(d.Message, "cannot be ruled out") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestOverflowChecksI32Range(t *testing.T) {
	// U8 + U8 is at most 510: inside I32 even though it leaves U8
	u := newUnit()
	u.Fn("f", []ast.FnParam{u.Param("x", u.Named("U8")), u.Param("y", u.Named("U8"))}, u.Named("I32"),
		u.Bin("+", u.ID("x"), u.ID("y")))
	expectOK(t, u.check(true))

	// a full U32 operand already escapes I32
	u = newUnit()
	u.Fn("f", []ast.FnParam{u.Param("x", u.Named("U32"))}, u.Named("U32"), u.Bin("+", u.ID("x"), u.Num(0)))
	d := u.check(true)
	expectCode(t, d, diag.SafetyOverflow)
	if !contains(d.Reason, "4294967295") || !contains(d.Reason, "I32 range") {
		t.Fatalf("reason = %q", d.Reason)
	}
}

func TestGenericBindingSkipsUntypedArgument(t *testing.T) {
	u := newUnit()
	u.Fn("second", []ast.FnParam{u.Param("a", u.Named("I32")), u.Param("b", u.Named("T"))}, u.Named("T"), u.ID("b"), "T")
	u.Fn("g", nil, u.Named("I32"), u.Bin("+", u.Call("second", u.ID("zzz"), u.Num(5)), u.Num(1)))
	expectOK(t, u.check(false))
}

func shapeUnit(withWildcard bool) *unit {
	u := newUnit()
	u.Struct("Circle", false)
	u.Struct("Square", false)
	u.Alias("Shape", u.Union(u.Named("Circle"), u.Named("Square")))
	arms := []ast.ExprMatchArm{u.Arm(u.NamePat("Circle"), u.Num(1))}
	if withWildcard {
		arms = append(arms, u.Arm(u.Wildcard(), u.Num(2)))
	}
	u.Fn("area", []ast.FnParam{u.Param("s", u.Named("Shape"))}, u.Named("I32"), u.Match(u.ID("s"), arms...))
	return u
}

func TestMatchExhaustiveness(t *testing.T) {
	d := shapeUnit(false).check(true)
	expectCode(t, d, diag.MatchNonExhaustive)
	if !contains(d.Message, "Square") || !contains(d.Reason, "Square") {
		t.Fatalf("missing tag not named: %q / %q", d.Message, d.Reason)
	}
	expectOK(t, shapeUnit(true).check(true))
}

func TestCallChecks(t *testing.T) {
	cases := []struct {
		name string
		call func(u *unit) ast.ExprID
		want diag.Code
	}{
		{"ok", func(u *unit) ast.ExprID { return u.Call("h", u.Num(1)) }, diag.UnknownCode},
		{"arity", func(u *unit) ast.ExprID { return u.Call("h", u.Num(1), u.Num(2)) }, diag.TypeArity},
		{"mismatch", func(u *unit) ast.ExprID { return u.Call("h", u.Bool(true)) }, diag.TypeMismatch},
		{"unsigned from negative", func(u *unit) ast.ExprID {
			return u.Call("small", u.Unary(ast.ExprUnaryNeg, u.Num(1)))
		}, diag.TypeMismatch},
		{"unsigned from literal", func(u *unit) ast.ExprID { return u.Call("small", u.Num(5)) }, diag.UnknownCode},
		{"non-zero param", func(u *unit) ast.ExprID { return u.Call("d", u.Num(0)) }, diag.SafetyNonZeroRefinement},
		{"non-zero literal", func(u *unit) ast.ExprID { return u.Call("d", u.Num(3)) }, diag.UnknownCode},
		{"generic return", func(u *unit) ast.ExprID { return u.Call("id", u.Num(5)) }, diag.UnknownCode},
		{"implicit generic", func(u *unit) ast.ExprID { return u.Call("first", u.Num(5)) }, diag.UnknownCode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := newUnit()
			u.Fn("h", []ast.FnParam{u.Param("a", u.Named("I32"))}, u.Named("I32"), u.ID("a"))
			u.Fn("small", []ast.FnParam{u.Param("a", u.Named("U8"))}, u.Named("U8"), u.ID("a"))
			u.Fn("d", []ast.FnParam{u.Param("x", u.Refine(u.Named("I32"), "!=", u.Num(0)))}, u.Named("I32"),
				u.Bin("/", u.Num(100), u.ID("x")))
			u.Fn("id", []ast.FnParam{u.Param("v", u.Named("T"))}, u.Named("T"), u.ID("v"), "T")
			u.Fn("first", []ast.FnParam{u.Param("v", u.Named("T"))}, u.Named("T"), u.ID("v"))
			u.Fn("g", nil, u.Named("I32"), tc.call(u))
			d := u.check(true)
			if tc.want == diag.UnknownCode {
				expectOK(t, d)
				return
			}
			expectCode(t, d, tc.want)
		})
	}
}

func TestExternCallSkipsArity(t *testing.T) {
	u := newUnit()
	u.ExternFn("puts", []ast.FnParam{u.Param("s", u.Pointer(u.Named("Str"), false))}, ast.NoTypeID)
	u.Fn("g", nil, ast.NoTypeID, u.Call("puts"))
	expectOK(t, u.check(true))
}

func nullableUnit(guarded bool) *unit {
	u := newUnit()
	u.Alias("Ptr", u.Union(u.Pointer(u.Named("I32"), false), u.Refine(u.Named("USize"), "==", u.USize(0))))
	deref := u.Unary(ast.ExprUnaryDeref, u.ID("p"))
	body := deref
	if guarded {
		body = u.If(u.Bin("!=", u.ID("p"), u.USize(0)),
			u.Block(u.Stmt(deref)),
			u.Block(u.Stmt(u.Num(0))))
	}
	u.Fn("read", []ast.FnParam{u.Param("p", u.Named("Ptr"))}, u.Named("I32"), body)
	return u
}

func TestNullablePointerGuard(t *testing.T) {
	d := nullableUnit(false).check(true)
	expectCode(t, d, diag.SafetyNullablePointerGuard)
	if !contains(d.Reason, "'p'") {
		t.Fatalf("reason should name the pointer: %q", d.Reason)
	}
	expectOK(t, nullableUnit(true).check(true))
}

func arrayUnit(index func(u *unit) ast.ExprID, params ...string) *unit {
	u := newUnit()
	var fnParams []ast.FnParam
	for i := 0; i+1 < len(params); i += 2 {
		fnParams = append(fnParams, u.Param(params[i], u.Named(params[i+1])))
	}
	body := u.Block(
		u.Let("arr", u.Array(u.Named("I32"), 3), ast.NoExprID),
		u.Stmt(u.Index(u.ID("arr"), index(u))),
	)
	u.Fn("f", fnParams, u.Named("I32"), body)
	return u
}

func TestArrayBounds(t *testing.T) {
	expectOK(t, arrayUnit(func(u *unit) ast.ExprID { return u.Num(2) }).check(true))
	expectCode(t, arrayUnit(func(u *unit) ast.ExprID { return u.Num(3) }).check(true), diag.SafetyArrayBounds)
	expectCode(t, arrayUnit(func(u *unit) ast.ExprID {
		return u.Unary(ast.ExprUnaryNeg, u.Num(1))
	}).check(true), diag.SafetyArrayBounds)

	wide := arrayUnit(func(u *unit) ast.ExprID { return u.ID("i") }, "i", "U64")
	expectCode(t, wide.check(true), diag.SafetyArrayBoundsUnproven)
}

func TestForIteratorIsBoundedByRange(t *testing.T) {
	for _, tc := range []struct {
		end  int64
		want diag.Code
	}{{3, diag.UnknownCode}, {4, diag.SafetyArrayBounds}} {
		u := newUnit()
		loop := u.B.Stmts.NewFor(u.Pos(), ast.StmtForData{
			Iterator: u.B.Intern("i"),
			Start:    u.Num(0),
			End:      u.Num(tc.end),
			Body:     u.Stmt(u.Block(u.Stmt(u.Index(u.ID("arr"), u.ID("i"))))),
		})
		body := u.Block(u.Let("arr", u.Array(u.Named("I32"), 3), ast.NoExprID), loop)
		u.Fn("f", nil, ast.NoTypeID, body)
		d := u.check(true)
		if tc.want == diag.UnknownCode {
			expectOK(t, d)
		} else {
			expectCode(t, d, tc.want)
		}
	}
}

func TestWhileConditionNarrowsBody(t *testing.T) {
	u := newUnit()
	loop := u.B.Stmts.NewWhile(u.Pos(), u.Bin("<", u.ID("i"), u.Num(3)), u.Stmt(u.Block(
		u.Stmt(u.Index(u.ID("arr"), u.ID("i"))),
		u.Assign("i", u.Bin("+", u.ID("i"), u.Num(1))),
	)))
	body := u.Block(
		u.Let("arr", u.Array(u.Named("I32"), 3), ast.NoExprID),
		u.Let("i", u.Named("U8"), u.Num(0)),
		loop,
	)
	u.Fn("f", nil, ast.NoTypeID, body)
	expectOK(t, u.check(true))
}

func TestAssignmentDropsNarrowing(t *testing.T) {
	u := newUnit()
	body := u.Block(
		u.Let("x", u.Named("I32"), u.Num(1)),
		u.Stmt(u.If(u.Bin("!=", u.ID("x"), u.Num(0)),
			u.Block(u.Assign("x", u.Num(0)), u.Stmt(u.Bin("/", u.Num(100), u.ID("x")))),
			u.Block(u.Stmt(u.Num(0))))),
	)
	u.Fn("f", nil, ast.NoTypeID, body)
	expectCode(t, u.check(true), diag.SafetyDivByZero)
}

func branchAssignUnit(assign bool) *unit {
	u := newUnit()
	then := u.Stmt(u.Block())
	if assign {
		then = u.Stmt(u.Block(u.Assign("x", u.Num(0))))
	}
	body := u.Block(
		u.Let("x", u.Named("I32"), u.Num(5)),
		u.B.Stmts.NewIf(u.Pos(), u.ID("c"), then, ast.NoStmtID),
		u.Stmt(u.Bin("/", u.Num(100), u.ID("x"))),
	)
	u.Fn("f", []ast.FnParam{u.Param("c", u.Named("Bool"))}, u.Named("I32"), body)
	return u
}

func TestBranchAssignmentWidensAfterMerge(t *testing.T) {
	expectOK(t, branchAssignUnit(false).check(true))
	expectCode(t, branchAssignUnit(true).check(true), diag.SafetyDivByZero)
}

func TestLoopBodySeesWidenedBindings(t *testing.T) {
	u := newUnit()
	loop := u.B.Stmts.NewLoop(u.Pos(), u.Stmt(u.Block(
		u.Stmt(u.Bin("/", u.Num(100), u.ID("x"))),
		u.Assign("x", u.Num(0)),
	)))
	u.Fn("f", nil, ast.NoTypeID, u.Block(u.Let("x", u.Named("I32"), u.Num(5)), loop))
	expectCode(t, u.check(true), diag.SafetyDivByZero)
}

func TestReturnAndConditionTypes(t *testing.T) {
	u := newUnit()
	u.Fn("f", nil, u.Named("Bool"), u.Num(1))
	expectCode(t, u.check(false), diag.TypeReturnMismatch)

	u = newUnit()
	u.Fn("f", nil, u.Named("I32"), u.If(u.Num(1), u.Num(1), u.Num(2)))
	expectCode(t, u.check(false), diag.TypeCondition)
}

func TestNonZeroResultOfBlockBody(t *testing.T) {
	nonZero := func(u *unit) ast.TypeID { return u.Refine(u.Named("I32"), "!=", u.Num(0)) }

	u := newUnit()
	u.Fn("f", nil, nonZero(u), u.Block(u.Let("a", ast.NoTypeID, u.Num(1)), u.Stmt(u.Num(0))))
	expectCode(t, u.check(true), diag.SafetyNonZeroRefinement)

	u = newUnit()
	u.Fn("f", nil, nonZero(u), u.Block(u.Let("a", ast.NoTypeID, u.Num(1)), u.Stmt(u.Num(3))))
	expectOK(t, u.check(true))

	u = newUnit()
	u.Fn("f", nil, nonZero(u), u.Block(u.Return(u.Num(0))))
	expectCode(t, u.check(true), diag.SafetyNonZeroRefinement)
}

func TestTopLevelLetRefinement(t *testing.T) {
	u := newUnit()
	typ := u.Refine(u.Named("I32"), "!=", u.Num(0))
	stmt := u.Let("g", typ, u.Num(0))
	u.B.PushItem(u.File, u.B.Items.NewLet(u.Pos(), ast.LetItem{Stmt: stmt, Name: u.B.Intern("g"), Type: typ}, false))
	expectCode(t, u.check(true), diag.SafetyNonZeroRefinement)
}

func TestUnknownStructField(t *testing.T) {
	u := newUnit()
	u.B.PushItem(u.File, u.B.Items.NewStruct(u.Pos(), ast.StructItem{
		Name:   u.B.Intern("Point"),
		Fields: []ast.StructField{{Name: u.B.Intern("x"), Type: u.Named("I32")}},
	}))
	init := u.B.Exprs.NewStruct(u.Pos(), u.B.Intern("Point"), []ast.ExprStructField{
		{Name: u.B.Intern("y"), Value: u.Num(1)},
	})
	u.Fn("f", nil, ast.NoTypeID, init)
	expectCode(t, u.check(false), diag.TypeUnknownField)
}
