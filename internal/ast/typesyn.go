package ast

import (
	"tuff/internal/source"
)

// TypeExprKind enumerates type-syntax forms.
type TypeExprKind uint8

const (
	TypeExprNamed TypeExprKind = iota
	TypeExprRefinement
	TypeExprUnion
	TypeExprArray
	TypeExprPointer
	TypeExprTuple
)

type TypeExpr struct {
	Kind    TypeExprKind
	Pos     source.Pos
	Payload PayloadID
}

type TypeNamedData struct {
	Name source.StringID
	Args []TypeID
}

// TypeRefinementData is `Base where <op> Value`; Value is a literal expression.
type TypeRefinementData struct {
	Base  TypeID
	Op    ExprBinaryOp
	Value ExprID
}

type TypeUnionData struct {
	Left  TypeID
	Right TypeID
}

// TypeArrayData: Init and Total are optional literal lengths.
type TypeArrayData struct {
	Elem  TypeID
	Init  ExprID
	Total ExprID
}

type TypePointerData struct {
	Elem    TypeID
	Mutable bool
}

type TypeTupleData struct {
	Members []TypeID
}

type Types struct {
	Arena       *Arena[TypeExpr]
	Named       *Arena[TypeNamedData]
	Refinements *Arena[TypeRefinementData]
	Unions      *Arena[TypeUnionData]
	Arrays      *Arena[TypeArrayData]
	Pointers    *Arena[TypePointerData]
	Tuples      *Arena[TypeTupleData]
}

func NewTypes(capHint uint) *Types {
	if capHint == 0 {
		capHint = 1 << 7
	}
	small := capHint >> 3
	return &Types{
		Arena:       NewArena[TypeExpr](capHint),
		Named:       NewArena[TypeNamedData](capHint),
		Refinements: NewArena[TypeRefinementData](small),
		Unions:      NewArena[TypeUnionData](small),
		Arrays:      NewArena[TypeArrayData](small),
		Pointers:    NewArena[TypePointerData](small),
		Tuples:      NewArena[TypeTupleData](small),
	}
}

func (t *Types) new(kind TypeExprKind, pos source.Pos, payload PayloadID) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{
		Kind:    kind,
		Pos:     pos,
		Payload: payload,
	}))
}

func (t *Types) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

func (t *Types) payload(id TypeID, kind TypeExprKind) (uint32, bool) {
	typ := t.Get(id)
	if typ == nil || typ.Kind != kind {
		return 0, false
	}
	return uint32(typ.Payload), true
}

func (t *Types) NewNamed(pos source.Pos, name source.StringID, args []TypeID) TypeID {
	return t.new(TypeExprNamed, pos, PayloadID(t.Named.Allocate(TypeNamedData{Name: name, Args: args})))
}

func (t *Types) NamedType(id TypeID) (*TypeNamedData, bool) {
	p, ok := t.payload(id, TypeExprNamed)
	if !ok {
		return nil, false
	}
	return t.Named.Get(p), true
}

func (t *Types) NewRefinement(pos source.Pos, base TypeID, op ExprBinaryOp, value ExprID) TypeID {
	return t.new(TypeExprRefinement, pos, PayloadID(t.Refinements.Allocate(TypeRefinementData{Base: base, Op: op, Value: value})))
}

func (t *Types) Refinement(id TypeID) (*TypeRefinementData, bool) {
	p, ok := t.payload(id, TypeExprRefinement)
	if !ok {
		return nil, false
	}
	return t.Refinements.Get(p), true
}

func (t *Types) NewUnion(pos source.Pos, left, right TypeID) TypeID {
	return t.new(TypeExprUnion, pos, PayloadID(t.Unions.Allocate(TypeUnionData{Left: left, Right: right})))
}

func (t *Types) Union(id TypeID) (*TypeUnionData, bool) {
	p, ok := t.payload(id, TypeExprUnion)
	if !ok {
		return nil, false
	}
	return t.Unions.Get(p), true
}

func (t *Types) NewArray(pos source.Pos, elem TypeID, init, total ExprID) TypeID {
	return t.new(TypeExprArray, pos, PayloadID(t.Arrays.Allocate(TypeArrayData{Elem: elem, Init: init, Total: total})))
}

func (t *Types) Array(id TypeID) (*TypeArrayData, bool) {
	p, ok := t.payload(id, TypeExprArray)
	if !ok {
		return nil, false
	}
	return t.Arrays.Get(p), true
}

func (t *Types) NewPointer(pos source.Pos, elem TypeID, mutable bool) TypeID {
	return t.new(TypeExprPointer, pos, PayloadID(t.Pointers.Allocate(TypePointerData{Elem: elem, Mutable: mutable})))
}

func (t *Types) Pointer(id TypeID) (*TypePointerData, bool) {
	p, ok := t.payload(id, TypeExprPointer)
	if !ok {
		return nil, false
	}
	return t.Pointers.Get(p), true
}

func (t *Types) NewTuple(pos source.Pos, members []TypeID) TypeID {
	return t.new(TypeExprTuple, pos, PayloadID(t.Tuples.Allocate(TypeTupleData{Members: members})))
}

func (t *Types) Tuple(id TypeID) (*TypeTupleData, bool) {
	p, ok := t.payload(id, TypeExprTuple)
	if !ok {
		return nil, false
	}
	return t.Tuples.Get(p), true
}
