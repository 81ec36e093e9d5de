package types

import (
	"fmt"
	"strings"

	"tuff/internal/ast"
)

// Kind enumerates the lowered type-expression forms.
type Kind uint8

const (
	KindNamed Kind = iota
	KindRefinement
	KindUnion
	KindArray
	KindPointer
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindRefinement:
		return "refinement"
	case KindUnion:
		return "union"
	case KindArray:
		return "array"
	case KindPointer:
		return "pointer"
	case KindTuple:
		return "tuple"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is an immutable, arena-independent copy of a type expression. Both
// checkers and generic substitution work on it so that synthesized types
// (pointer-to-literal, substituted returns) never touch the decoded tree.
type Type struct {
	Kind Kind
	// KindNamed
	Name string
	Args []*Type
	// KindRefinement base, KindArray element, KindPointer pointee
	Elem    *Type
	Mutable bool
	// KindRefinement: Elem where Op Value (Suffix is the literal's numeric type)
	Op     ast.ExprBinaryOp
	Value  Bound
	Suffix string
	// KindUnion
	Left, Right *Type
	// KindArray literal lengths
	Init, Total Bound
	// KindTuple
	Members []*Type
}

func Named(name string, args ...*Type) *Type {
	return &Type{Kind: KindNamed, Name: name, Args: args}
}

func PointerTo(elem *Type, mutable bool) *Type {
	return &Type{Kind: KindPointer, Elem: elem, Mutable: mutable}
}

func ArrayOf(elem *Type, init, total Bound) *Type {
	return &Type{Kind: KindArray, Elem: elem, Init: init, Total: total}
}

func TupleOf(members ...*Type) *Type {
	return &Type{Kind: KindTuple, Members: members}
}

func UnionOf(left, right *Type) *Type {
	return &Type{Kind: KindUnion, Left: left, Right: right}
}

func Refine(base *Type, op ast.ExprBinaryOp, value Bound, suffix string) *Type {
	return &Type{Kind: KindRefinement, Elem: base, Op: op, Value: value, Suffix: suffix}
}

// NameOf returns the canonical tag used for compatibility checks:
// refinements collapse to their base, unions become "L|R", arrays "Array",
// tuples "Tuple", pointers "*X" or "*mut X". nil yields "".
func NameOf(t *Type) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case KindNamed:
		return t.Name
	case KindRefinement:
		return NameOf(t.Elem)
	case KindUnion:
		return NameOf(t.Left) + "|" + NameOf(t.Right)
	case KindArray:
		return "Array"
	case KindPointer:
		inner := NameOf(t.Elem)
		if inner == "" {
			inner = NameUnknown
		}
		if t.Mutable {
			return "*mut " + inner
		}
		return "*" + inner
	case KindTuple:
		return "Tuple"
	}
	return ""
}

// String renders t in source-like syntax for diagnostics and dumps.
func (t *Type) String() string {
	if t == nil {
		return "<none>"
	}
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t *Type) write(sb *strings.Builder) {
	switch t.Kind {
	case KindNamed:
		sb.WriteString(t.Name)
		if len(t.Args) > 0 {
			sb.WriteByte('<')
			for i, a := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				a.write(sb)
			}
			sb.WriteByte('>')
		}
	case KindRefinement:
		t.Elem.write(sb)
		fmt.Fprintf(sb, " where %s %s%s", t.Op, t.Value, t.Suffix)
	case KindUnion:
		t.Left.write(sb)
		sb.WriteString(" | ")
		t.Right.write(sb)
	case KindArray:
		sb.WriteByte('[')
		t.Elem.write(sb)
		if t.Init.Known || t.Total.Known {
			fmt.Fprintf(sb, "; %s; %s", t.Init, t.Total)
		}
		sb.WriteByte(']')
	case KindPointer:
		sb.WriteByte('*')
		if t.Mutable {
			sb.WriteString("mut ")
		}
		t.Elem.write(sb)
	case KindTuple:
		sb.WriteByte('(')
		for i, m := range t.Members {
			if i > 0 {
				sb.WriteString(", ")
			}
			m.write(sb)
		}
		sb.WriteByte(')')
	}
}

// isUSizeZero matches the null sentinel refinement `USize where == 0USize`.
func isUSizeZero(t *Type) bool {
	if t == nil || t.Kind != KindRefinement || t.Op != ast.ExprBinaryEq {
		return false
	}
	if t.Elem == nil || t.Elem.Kind != KindNamed || t.Elem.Name != NameUSize {
		return false
	}
	return t.Value.Known && t.Value.V == 0 && t.Suffix == NameUSize
}

// NullablePointerBranch returns the pointer alternative of a
// `*T | USize where == 0USize` union, or nil.
func NullablePointerBranch(t *Type) *Type {
	if t == nil || t.Kind != KindUnion {
		return nil
	}
	if t.Left != nil && t.Left.Kind == KindPointer && isUSizeZero(t.Right) {
		return t.Left
	}
	if t.Right != nil && t.Right.Kind == KindPointer && isUSizeZero(t.Left) {
		return t.Right
	}
	return nil
}
