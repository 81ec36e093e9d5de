package ast

import (
	"tuff/internal/source"
)

type PatternKind uint8

const (
	PatternWildcard PatternKind = iota
	PatternName
	PatternStruct
	PatternLiteral
)

// Pattern is small enough to live inline: Name is set for name and struct
// patterns, Fields lists struct-pattern bindings, Value is the literal.
type Pattern struct {
	Kind   PatternKind
	Pos    source.Pos
	Name   source.StringID
	Fields []source.StringID
	Value  ExprID
}

type Patterns struct {
	Arena *Arena[Pattern]
}

func NewPatterns(capHint uint) *Patterns {
	return &Patterns{
		Arena: NewArena[Pattern](capHint),
	}
}

func (p *Patterns) New(pat Pattern) PatternID {
	return PatternID(p.Arena.Allocate(pat))
}

func (p *Patterns) Get(id PatternID) *Pattern {
	return p.Arena.Get(uint32(id))
}
