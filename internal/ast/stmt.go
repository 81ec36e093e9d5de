package ast

import (
	"tuff/internal/source"
)

type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtAssign
	StmtExpr
	StmtReturn
	StmtIf
	StmtFor
	StmtWhile
	StmtLoop
	StmtBreak
	StmtContinue
	StmtDrop
)

func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "LetDecl"
	case StmtAssign:
		return "AssignStmt"
	case StmtExpr:
		return "ExprStmt"
	case StmtReturn:
		return "ReturnStmt"
	case StmtIf:
		return "IfStmt"
	case StmtFor:
		return "ForStmt"
	case StmtWhile:
		return "WhileStmt"
	case StmtLoop:
		return "LoopStmt"
	case StmtBreak:
		return "BreakStmt"
	case StmtContinue:
		return "ContinueStmt"
	case StmtDrop:
		return "DropStmt"
	}
	return "Stmt?"
}

type Stmt struct {
	Kind    StmtKind
	Pos     source.Pos
	Payload PayloadID
}

// StmtLetData: Type and Value are optional (NoTypeID / NoExprID).
type StmtLetData struct {
	Name    source.StringID
	Type    TypeID
	Value   ExprID
	Mutable bool
}

type StmtAssignData struct {
	Target ExprID
	Value  ExprID
}

type StmtExprData struct {
	Expr ExprID
}

type StmtReturnData struct {
	Value ExprID
}

type StmtIfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID
}

// StmtForData describes `for (it in start..end) body`; End is exclusive.
type StmtForData struct {
	Iterator source.StringID
	Start    ExprID
	End      ExprID
	Body     StmtID
}

type StmtWhileData struct {
	Cond ExprID
	Body StmtID
}

type StmtLoopData struct {
	Body StmtID
}

type StmtDropData struct {
	Target ExprID
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Lets    *Arena[StmtLetData]
	Assigns *Arena[StmtAssignData]
	Exprs   *Arena[StmtExprData]
	Returns *Arena[StmtReturnData]
	Ifs     *Arena[StmtIfData]
	Fors    *Arena[StmtForData]
	Whiles  *Arena[StmtWhileData]
	Loops   *Arena[StmtLoopData]
	Drops   *Arena[StmtDropData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint >> 3
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Lets:    NewArena[StmtLetData](capHint),
		Assigns: NewArena[StmtAssignData](small),
		Exprs:   NewArena[StmtExprData](capHint),
		Returns: NewArena[StmtReturnData](small),
		Ifs:     NewArena[StmtIfData](small),
		Fors:    NewArena[StmtForData](small),
		Whiles:  NewArena[StmtWhileData](small),
		Loops:   NewArena[StmtLoopData](small),
		Drops:   NewArena[StmtDropData](small),
	}
}

func (s *Stmts) new(kind StmtKind, pos source.Pos, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Pos:     pos,
		Payload: payload,
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) payload(id StmtID, kind StmtKind) (uint32, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != kind {
		return 0, false
	}
	return uint32(stmt.Payload), true
}

func (s *Stmts) NewLet(pos source.Pos, data StmtLetData) StmtID {
	return s.new(StmtLet, pos, PayloadID(s.Lets.Allocate(data)))
}

func (s *Stmts) Let(id StmtID) (*StmtLetData, bool) {
	p, ok := s.payload(id, StmtLet)
	if !ok {
		return nil, false
	}
	return s.Lets.Get(p), true
}

func (s *Stmts) NewAssign(pos source.Pos, target, value ExprID) StmtID {
	return s.new(StmtAssign, pos, PayloadID(s.Assigns.Allocate(StmtAssignData{Target: target, Value: value})))
}

func (s *Stmts) Assign(id StmtID) (*StmtAssignData, bool) {
	p, ok := s.payload(id, StmtAssign)
	if !ok {
		return nil, false
	}
	return s.Assigns.Get(p), true
}

func (s *Stmts) NewExpr(pos source.Pos, expr ExprID) StmtID {
	return s.new(StmtExpr, pos, PayloadID(s.Exprs.Allocate(StmtExprData{Expr: expr})))
}

func (s *Stmts) Expr(id StmtID) (*StmtExprData, bool) {
	p, ok := s.payload(id, StmtExpr)
	if !ok {
		return nil, false
	}
	return s.Exprs.Get(p), true
}

func (s *Stmts) NewReturn(pos source.Pos, value ExprID) StmtID {
	return s.new(StmtReturn, pos, PayloadID(s.Returns.Allocate(StmtReturnData{Value: value})))
}

func (s *Stmts) Return(id StmtID) (*StmtReturnData, bool) {
	p, ok := s.payload(id, StmtReturn)
	if !ok {
		return nil, false
	}
	return s.Returns.Get(p), true
}

func (s *Stmts) NewIf(pos source.Pos, cond ExprID, then, els StmtID) StmtID {
	return s.new(StmtIf, pos, PayloadID(s.Ifs.Allocate(StmtIfData{Cond: cond, Then: then, Else: els})))
}

func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	p, ok := s.payload(id, StmtIf)
	if !ok {
		return nil, false
	}
	return s.Ifs.Get(p), true
}

func (s *Stmts) NewFor(pos source.Pos, data StmtForData) StmtID {
	return s.new(StmtFor, pos, PayloadID(s.Fors.Allocate(data)))
}

func (s *Stmts) For(id StmtID) (*StmtForData, bool) {
	p, ok := s.payload(id, StmtFor)
	if !ok {
		return nil, false
	}
	return s.Fors.Get(p), true
}

func (s *Stmts) NewWhile(pos source.Pos, cond ExprID, body StmtID) StmtID {
	return s.new(StmtWhile, pos, PayloadID(s.Whiles.Allocate(StmtWhileData{Cond: cond, Body: body})))
}

func (s *Stmts) While(id StmtID) (*StmtWhileData, bool) {
	p, ok := s.payload(id, StmtWhile)
	if !ok {
		return nil, false
	}
	return s.Whiles.Get(p), true
}

func (s *Stmts) NewLoop(pos source.Pos, body StmtID) StmtID {
	return s.new(StmtLoop, pos, PayloadID(s.Loops.Allocate(StmtLoopData{Body: body})))
}

func (s *Stmts) Loop(id StmtID) (*StmtLoopData, bool) {
	p, ok := s.payload(id, StmtLoop)
	if !ok {
		return nil, false
	}
	return s.Loops.Get(p), true
}

// NewJump creates a break or continue statement.
func (s *Stmts) NewJump(pos source.Pos, kind StmtKind) StmtID {
	return s.new(kind, pos, NoPayloadID)
}

func (s *Stmts) NewDrop(pos source.Pos, target ExprID) StmtID {
	return s.new(StmtDrop, pos, PayloadID(s.Drops.Allocate(StmtDropData{Target: target})))
}

func (s *Stmts) Drop(id StmtID) (*StmtDropData, bool) {
	p, ok := s.payload(id, StmtDrop)
	if !ok {
		return nil, false
	}
	return s.Drops.Get(p), true
}
