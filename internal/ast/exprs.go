package ast

import (
	"tuff/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena    *Arena[Expr]
	Literals *Arena[ExprLiteralData]
	Idents   *Arena[ExprIdentData]
	Binaries *Arena[ExprBinaryData]
	Unaries  *Arena[ExprUnaryData]
	Calls    *Arena[ExprCallData]
	Members  *Arena[ExprMemberData]
	Indices  *Arena[ExprIndexData]
	Structs  *Arena[ExprStructData]
	Ifs      *Arena[ExprIfData]
	Matches  *Arena[ExprMatchData]
	Ises     *Arena[ExprIsData]
	Unwraps  *Arena[ExprUnwrapData]
	Blocks   *Arena[ExprBlockData]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint.
// If capHint is 0, a default capacity of 1<<8 is used.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint >> 3
	return &Exprs{
		Arena:    NewArena[Expr](capHint),
		Literals: NewArena[ExprLiteralData](capHint),
		Idents:   NewArena[ExprIdentData](capHint),
		Binaries: NewArena[ExprBinaryData](capHint),
		Unaries:  NewArena[ExprUnaryData](small),
		Calls:    NewArena[ExprCallData](small),
		Members:  NewArena[ExprMemberData](small),
		Indices:  NewArena[ExprIndexData](small),
		Structs:  NewArena[ExprStructData](small),
		Ifs:      NewArena[ExprIfData](small),
		Matches:  NewArena[ExprMatchData](small),
		Ises:     NewArena[ExprIsData](small),
		Unwraps:  NewArena[ExprUnwrapData](small),
		Blocks:   NewArena[ExprBlockData](small),
	}
}

func (e *Exprs) new(kind ExprKind, pos source.Pos, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Pos:     pos,
		Payload: payload,
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0, false
	}
	return uint32(expr.Payload), true
}

// NewNumber creates an integer literal; suffix is the explicit numeric type or NoStringID.
func (e *Exprs) NewNumber(pos source.Pos, value int64, suffix source.StringID) ExprID {
	payload := e.Literals.Allocate(ExprLiteralData{Kind: ExprLitNumber, Int: value, Suffix: suffix})
	return e.new(ExprLit, pos, PayloadID(payload))
}

// NewBool creates a boolean literal.
func (e *Exprs) NewBool(pos source.Pos, value bool) ExprID {
	payload := e.Literals.Allocate(ExprLiteralData{Kind: ExprLitBool, Bool: value})
	return e.new(ExprLit, pos, PayloadID(payload))
}

// NewText creates a string or char literal.
func (e *Exprs) NewText(pos source.Pos, kind ExprLitKind, value source.StringID) ExprID {
	payload := e.Literals.Allocate(ExprLiteralData{Kind: kind, Text: value})
	return e.new(ExprLit, pos, PayloadID(payload))
}

// Literal returns the literal data for the given expression ID.
func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	p, ok := e.payload(id, ExprLit)
	if !ok {
		return nil, false
	}
	return e.Literals.Get(p), true
}

// NewIdent creates a new identifier expression.
func (e *Exprs) NewIdent(pos source.Pos, name source.StringID) ExprID {
	payload := e.Idents.Allocate(ExprIdentData{Name: name})
	return e.new(ExprIdent, pos, PayloadID(payload))
}

// Ident returns the identifier data for the given expression ID.
func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	p, ok := e.payload(id, ExprIdent)
	if !ok {
		return nil, false
	}
	return e.Idents.Get(p), true
}

// NewBinary creates a new binary expression.
func (e *Exprs) NewBinary(pos source.Pos, op ExprBinaryOp, left, right ExprID) ExprID {
	payload := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	return e.new(ExprBinary, pos, PayloadID(payload))
}

// Binary returns the binary expression data for the given expression ID.
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	if !ok {
		return nil, false
	}
	return e.Binaries.Get(p), true
}

// NewUnary creates a new unary expression.
func (e *Exprs) NewUnary(pos source.Pos, op ExprUnaryOp, operand ExprID) ExprID {
	payload := e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})
	return e.new(ExprUnary, pos, PayloadID(payload))
}

// Unary returns the unary expression data for the given expression ID.
func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	p, ok := e.payload(id, ExprUnary)
	if !ok {
		return nil, false
	}
	return e.Unaries.Get(p), true
}

// NewCall creates a new call expression.
func (e *Exprs) NewCall(pos source.Pos, callee ExprID, args []ExprID) ExprID {
	payload := e.Calls.Allocate(ExprCallData{Callee: callee, Args: args})
	return e.new(ExprCall, pos, PayloadID(payload))
}

// Call returns the call expression data for the given expression ID.
func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	p, ok := e.payload(id, ExprCall)
	if !ok {
		return nil, false
	}
	return e.Calls.Get(p), true
}

// NewMember creates a new field access expression.
func (e *Exprs) NewMember(pos source.Pos, target ExprID, field source.StringID) ExprID {
	payload := e.Members.Allocate(ExprMemberData{Target: target, Field: field})
	return e.new(ExprMember, pos, PayloadID(payload))
}

// Member returns the member expression data for the given expression ID.
func (e *Exprs) Member(id ExprID) (*ExprMemberData, bool) {
	p, ok := e.payload(id, ExprMember)
	if !ok {
		return nil, false
	}
	return e.Members.Get(p), true
}

// NewIndex creates a new index expression.
func (e *Exprs) NewIndex(pos source.Pos, target, index ExprID) ExprID {
	payload := e.Indices.Allocate(ExprIndexData{Target: target, Index: index})
	return e.new(ExprIndex, pos, PayloadID(payload))
}

// Index returns the index expression data for the given expression ID.
func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	p, ok := e.payload(id, ExprIndex)
	if !ok {
		return nil, false
	}
	return e.Indices.Get(p), true
}

// NewStruct creates a new struct literal.
func (e *Exprs) NewStruct(pos source.Pos, name source.StringID, fields []ExprStructField) ExprID {
	payload := e.Structs.Allocate(ExprStructData{Name: name, Fields: fields})
	return e.new(ExprStruct, pos, PayloadID(payload))
}

// Struct returns the struct literal data for the given expression ID.
func (e *Exprs) Struct(id ExprID) (*ExprStructData, bool) {
	p, ok := e.payload(id, ExprStruct)
	if !ok {
		return nil, false
	}
	return e.Structs.Get(p), true
}

// NewIf creates a value-producing conditional.
func (e *Exprs) NewIf(pos source.Pos, cond, then, els ExprID) ExprID {
	payload := e.Ifs.Allocate(ExprIfData{Cond: cond, Then: then, Else: els})
	return e.new(ExprIf, pos, PayloadID(payload))
}

// If returns the conditional data for the given expression ID.
func (e *Exprs) If(id ExprID) (*ExprIfData, bool) {
	p, ok := e.payload(id, ExprIf)
	if !ok {
		return nil, false
	}
	return e.Ifs.Get(p), true
}

// NewMatch creates a match expression.
func (e *Exprs) NewMatch(pos source.Pos, subject ExprID, arms []ExprMatchArm) ExprID {
	payload := e.Matches.Allocate(ExprMatchData{Subject: subject, Arms: arms})
	return e.new(ExprMatch, pos, PayloadID(payload))
}

// Match returns the match data for the given expression ID.
func (e *Exprs) Match(id ExprID) (*ExprMatchData, bool) {
	p, ok := e.payload(id, ExprMatch)
	if !ok {
		return nil, false
	}
	return e.Matches.Get(p), true
}

// NewIs creates a pattern test expression.
func (e *Exprs) NewIs(pos source.Pos, value ExprID, pattern PatternID) ExprID {
	payload := e.Ises.Allocate(ExprIsData{Value: value, Pattern: pattern})
	return e.new(ExprIs, pos, PayloadID(payload))
}

// Is returns the pattern test data for the given expression ID.
func (e *Exprs) Is(id ExprID) (*ExprIsData, bool) {
	p, ok := e.payload(id, ExprIs)
	if !ok {
		return nil, false
	}
	return e.Ises.Get(p), true
}

// NewUnwrap creates an unwrap expression.
func (e *Exprs) NewUnwrap(pos source.Pos, value ExprID) ExprID {
	payload := e.Unwraps.Allocate(ExprUnwrapData{Value: value})
	return e.new(ExprUnwrap, pos, PayloadID(payload))
}

// Unwrap returns the unwrap data for the given expression ID.
func (e *Exprs) Unwrap(id ExprID) (*ExprUnwrapData, bool) {
	p, ok := e.payload(id, ExprUnwrap)
	if !ok {
		return nil, false
	}
	return e.Unwraps.Get(p), true
}

// NewBlock creates a block expression.
func (e *Exprs) NewBlock(pos source.Pos, stmts []StmtID) ExprID {
	payload := e.Blocks.Allocate(ExprBlockData{Stmts: stmts})
	return e.new(ExprBlock, pos, PayloadID(payload))
}

// Block returns the block data for the given expression ID.
func (e *Exprs) Block(id ExprID) (*ExprBlockData, bool) {
	p, ok := e.payload(id, ExprBlock)
	if !ok {
		return nil, false
	}
	return e.Blocks.Get(p), true
}
