package testkit

import (
	"tuff/internal/ast"
	"tuff/internal/source"
)

// Unit assembles a small program directly in the arena. Every node gets its
// own line so diagnostics in tests point at distinct positions.
type Unit struct {
	B    *ast.Builder
	File ast.FileID
	line uint32
}

func NewUnit() *Unit {
	b := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	return &Unit{B: b, File: b.NewFile(source.Pos{File: 1, Line: 1, Col: 1}, source.NoStringID)}
}

// Pos returns the next fresh position.
func (u *Unit) Pos() source.Pos {
	u.line++
	return source.Pos{File: 1, Line: u.line, Col: 1}
}

func (u *Unit) Num(v int64) ast.ExprID {
	return u.B.Exprs.NewNumber(u.Pos(), v, source.NoStringID)
}

func (u *Unit) USize(v int64) ast.ExprID {
	return u.B.Exprs.NewNumber(u.Pos(), v, u.B.Intern("USize"))
}

func (u *Unit) Bool(v bool) ast.ExprID {
	return u.B.Exprs.NewBool(u.Pos(), v)
}

func (u *Unit) Str(s string) ast.ExprID {
	return u.B.Exprs.NewText(u.Pos(), ast.ExprLitString, u.B.Intern(s))
}

func (u *Unit) ID(name string) ast.ExprID {
	return u.B.Exprs.NewIdent(u.Pos(), u.B.Intern(name))
}

// Bin builds a binary expression from its source operator; unknown
// operators panic.
func (u *Unit) Bin(op string, l, r ast.ExprID) ast.ExprID {
	parsed, ok := ast.ParseBinaryOp(op)
	if !ok {
		panic("testkit: bad operator " + op)
	}
	return u.B.Exprs.NewBinary(u.Pos(), parsed, l, r)
}

func (u *Unit) Unary(op ast.ExprUnaryOp, operand ast.ExprID) ast.ExprID {
	return u.B.Exprs.NewUnary(u.Pos(), op, operand)
}

func (u *Unit) Ref(operand ast.ExprID) ast.ExprID {
	return u.Unary(ast.ExprUnaryRef, operand)
}

func (u *Unit) RefMut(operand ast.ExprID) ast.ExprID {
	return u.Unary(ast.ExprUnaryRefMut, operand)
}

func (u *Unit) Call(name string, args ...ast.ExprID) ast.ExprID {
	return u.B.Exprs.NewCall(u.Pos(), u.ID(name), args)
}

func (u *Unit) Member(target ast.ExprID, field string) ast.ExprID {
	return u.B.Exprs.NewMember(u.Pos(), target, u.B.Intern(field))
}

func (u *Unit) Index(target, idx ast.ExprID) ast.ExprID {
	return u.B.Exprs.NewIndex(u.Pos(), target, idx)
}

// StructInit takes alternating field names and values.
func (u *Unit) StructInit(name string, fields ...any) ast.ExprID {
	var out []ast.ExprStructField
	for i := 0; i+1 < len(fields); i += 2 {
		out = append(out, ast.ExprStructField{Name: u.B.Intern(fields[i].(string)), Value: fields[i+1].(ast.ExprID)})
	}
	return u.B.Exprs.NewStruct(u.Pos(), u.B.Intern(name), out)
}

func (u *Unit) If(cond, then, els ast.ExprID) ast.ExprID {
	return u.B.Exprs.NewIf(u.Pos(), cond, then, els)
}

func (u *Unit) Block(stmts ...ast.StmtID) ast.ExprID {
	return u.B.Exprs.NewBlock(u.Pos(), stmts)
}

func (u *Unit) Arm(pattern ast.PatternID, body ast.ExprID) ast.ExprMatchArm {
	return ast.ExprMatchArm{Pattern: pattern, Body: body}
}

func (u *Unit) NamePat(name string) ast.PatternID {
	return u.B.Patterns.New(ast.Pattern{Kind: ast.PatternName, Pos: u.Pos(), Name: u.B.Intern(name)})
}

func (u *Unit) Wildcard() ast.PatternID {
	return u.B.Patterns.New(ast.Pattern{Kind: ast.PatternWildcard, Pos: u.Pos()})
}

func (u *Unit) Match(subject ast.ExprID, arms ...ast.ExprMatchArm) ast.ExprID {
	return u.B.Exprs.NewMatch(u.Pos(), subject, arms)
}

// Let declares a mutable binding; typ and value may be NoTypeID / NoExprID.
func (u *Unit) Let(name string, typ ast.TypeID, value ast.ExprID) ast.StmtID {
	return u.B.Stmts.NewLet(u.Pos(), ast.StmtLetData{Name: u.B.Intern(name), Type: typ, Value: value, Mutable: true})
}

func (u *Unit) Assign(name string, value ast.ExprID) ast.StmtID {
	return u.B.Stmts.NewAssign(u.Pos(), u.ID(name), value)
}

func (u *Unit) AssignTo(target, value ast.ExprID) ast.StmtID {
	return u.B.Stmts.NewAssign(u.Pos(), target, value)
}

func (u *Unit) Stmt(e ast.ExprID) ast.StmtID {
	return u.B.Stmts.NewExpr(u.Pos(), e)
}

func (u *Unit) IfStmt(cond ast.ExprID, then, els ast.StmtID) ast.StmtID {
	return u.B.Stmts.NewIf(u.Pos(), cond, then, els)
}

func (u *Unit) While(cond ast.ExprID, body ast.StmtID) ast.StmtID {
	return u.B.Stmts.NewWhile(u.Pos(), cond, body)
}

func (u *Unit) Loop(body ast.StmtID) ast.StmtID {
	return u.B.Stmts.NewLoop(u.Pos(), body)
}

func (u *Unit) For(iter string, start, end ast.ExprID, body ast.StmtID) ast.StmtID {
	return u.B.Stmts.NewFor(u.Pos(), ast.StmtForData{Iterator: u.B.Intern(iter), Start: start, End: end, Body: body})
}

func (u *Unit) Return(value ast.ExprID) ast.StmtID {
	return u.B.Stmts.NewReturn(u.Pos(), value)
}

func (u *Unit) Drop(target ast.ExprID) ast.StmtID {
	return u.B.Stmts.NewDrop(u.Pos(), target)
}

func (u *Unit) Named(name string, args ...ast.TypeID) ast.TypeID {
	return u.B.Types.NewNamed(u.Pos(), u.B.Intern(name), args)
}

func (u *Unit) Refine(base ast.TypeID, op string, value ast.ExprID) ast.TypeID {
	parsed, ok := ast.ParseBinaryOp(op)
	if !ok {
		panic("testkit: bad operator " + op)
	}
	return u.B.Types.NewRefinement(u.Pos(), base, parsed, value)
}

func (u *Unit) Union(l, r ast.TypeID) ast.TypeID {
	return u.B.Types.NewUnion(u.Pos(), l, r)
}

func (u *Unit) Pointer(elem ast.TypeID, mutable bool) ast.TypeID {
	return u.B.Types.NewPointer(u.Pos(), elem, mutable)
}

// Array builds `[elem; n; n]`.
func (u *Unit) Array(elem ast.TypeID, n int64) ast.TypeID {
	return u.B.Types.NewArray(u.Pos(), elem, u.Num(n), u.Num(n))
}

func (u *Unit) Param(name string, typ ast.TypeID) ast.FnParam {
	return ast.FnParam{Name: u.B.Intern(name), Type: typ, Pos: u.Pos()}
}

func (u *Unit) Fn(name string, params []ast.FnParam, result ast.TypeID, body ast.ExprID, generics ...string) ast.ItemID {
	item := ast.FnItem{Name: u.B.Intern(name), Params: params, Result: result, Body: body}
	for _, g := range generics {
		item.Generics = append(item.Generics, u.B.Intern(g))
	}
	return u.push(u.B.Items.NewFn(u.Pos(), item, false))
}

func (u *Unit) ExternFn(name string, params []ast.FnParam, result ast.TypeID) ast.ItemID {
	item := ast.FnItem{Name: u.B.Intern(name), Params: params, Result: result}
	return u.push(u.B.Items.NewFn(u.Pos(), item, true))
}

// Struct declares a struct; fields alternate names and types.
func (u *Unit) Struct(name string, isCopy bool, fields ...any) ast.ItemID {
	data := ast.StructItem{Name: u.B.Intern(name), Copy: isCopy}
	for i := 0; i+1 < len(fields); i += 2 {
		data.Fields = append(data.Fields, ast.StructField{Name: u.B.Intern(fields[i].(string)), Type: fields[i+1].(ast.TypeID)})
	}
	return u.push(u.B.Items.NewStruct(u.Pos(), data))
}

func (u *Unit) Enum(name string, isCopy bool, variants ...string) ast.ItemID {
	data := ast.EnumItem{Name: u.B.Intern(name), Copy: isCopy}
	for _, v := range variants {
		data.Variants = append(data.Variants, u.B.Intern(v))
	}
	return u.push(u.B.Items.NewEnum(u.Pos(), data))
}

func (u *Unit) Alias(name string, target ast.TypeID) ast.ItemID {
	return u.AliasWith(name, target, false, "")
}

// AliasWith declares an alias with a copy marker and an optional destructor.
func (u *Unit) AliasWith(name string, target ast.TypeID, isCopy bool, destructor string) ast.ItemID {
	data := ast.TypeAliasItem{Name: u.B.Intern(name), Target: target, Copy: isCopy}
	if destructor != "" {
		data.Destructor = u.B.Intern(destructor)
	}
	return u.push(u.B.Items.NewTypeAlias(u.Pos(), data))
}

func (u *Unit) ExternType(name string) ast.ItemID {
	return u.push(u.B.Items.NewExternType(u.Pos(), ast.ExternTypeItem{Name: u.B.Intern(name)}))
}

// Global declares a top-level let.
func (u *Unit) Global(name string, typ ast.TypeID, value ast.ExprID) ast.ItemID {
	stmt := u.Let(name, typ, value)
	return u.push(u.B.Items.NewLet(u.Pos(), ast.LetItem{Stmt: stmt, Name: u.B.Intern(name), Type: typ}, false))
}

func (u *Unit) push(id ast.ItemID) ast.ItemID {
	u.B.PushItem(u.File, id)
	return id
}
