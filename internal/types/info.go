package types

import (
	"fmt"
	"strings"
)

// Info is the refinement/interval view of a type at one program point.
// Values are immutable: narrowing always returns a new Info.
type Info struct {
	Name    string
	Min     Bound
	Max     Bound
	NonZero bool
	// ArrayInit/ArrayTotal are the literal initialized and total lengths of a
	// fixed-size array.
	ArrayInit  Bound
	ArrayTotal Bound
	// UnionTags lists the named alternatives a match must cover.
	UnionTags []string
	// Type is the type expression the info was resolved from; generic
	// binding unifies against it.
	Type *Type
}

// Unknown is the top of the lattice.
func Unknown() Info {
	return Info{Name: NameUnknown}
}

// Void is the result of statements.
func Void() Info {
	return Info{Name: NameVoid}
}

// Simple returns a bare named info without bounds.
func Simple(name string) Info {
	return Info{Name: name, Type: Named(name)}
}

// Literal returns the exact info of an integer literal of type name.
func Literal(name string, v int64) Info {
	return Info{Name: name, Min: Exact(v), Max: Exact(v), Type: Named(name)}.Normalize()
}

// IsUnknown reports whether nothing is known about the value's type.
func (i Info) IsUnknown() bool {
	return i.Name == NameUnknown || i.Name == ""
}

// IsNullablePointer reports whether the value may still be the 0USize sentinel.
func (i Info) IsNullablePointer() bool {
	return NullablePointerBranch(i.Type) != nil
}

// IsPointer reports whether the canonical name is a pointer type.
func (i Info) IsPointer() bool {
	return strings.HasPrefix(i.Name, "*")
}

// Bounded reports whether both bounds are known.
func (i Info) Bounded() bool {
	return i.Min.Known && i.Max.Known
}

// Normalize restores the lattice invariants: contradictory bounds are dropped
// and a sign-excluding interval implies NonZero.
func (i Info) Normalize() Info {
	if i.Min.Known && i.Max.Known && i.Min.V > i.Max.V {
		i.Min, i.Max = Bound{}, Bound{}
	}
	if (i.Min.Known && i.Min.V > 0) || (i.Max.Known && i.Max.V < 0) {
		i.NonZero = true
	}
	return i
}

// WithBounds returns a copy with both bounds replaced; NonZero is re-derived
// from the new bounds only.
func (i Info) WithBounds(lo, hi Bound) Info {
	i.Min, i.Max = lo, hi
	i.NonZero = false
	return i.Normalize()
}

// Intersect narrows info by a fact: bounds are tightened, NonZero is OR-ed, a
// NonNull fact selects the pointer branch of a nullable pointer, and a
// contradictory result drops both bounds.
func Intersect(info Info, fact Fact) Info {
	out := info
	if fact.NonNull {
		if branch := NullablePointerBranch(out.Type); branch != nil {
			out.Type = branch
			out.Name = NameOf(branch)
			out.NonZero = true
		}
	}
	out.Min = tighterMin(out.Min, fact.Min)
	out.Max = tighterMax(out.Max, fact.Max)
	if fact.NonZero.Set && fact.NonZero.Value {
		out.NonZero = true
	}
	return out.Normalize()
}

// IntersectInfo narrows declared by everything known about value.
func IntersectInfo(declared, value Info) Info {
	return Intersect(declared, Fact{Min: value.Min, Max: value.Max, NonZero: OptBool{Value: value.NonZero, Set: value.NonZero}})
}

func (i Info) String() string {
	var sb strings.Builder
	sb.WriteString(i.Name)
	if i.Min.Known || i.Max.Known {
		fmt.Fprintf(&sb, "[%s, %s]", i.Min, i.Max)
	}
	if i.NonZero {
		sb.WriteString(" != 0")
	}
	if i.ArrayInit.Known {
		fmt.Fprintf(&sb, " init=%s", i.ArrayInit)
	}
	if len(i.UnionTags) > 0 {
		fmt.Fprintf(&sb, " tags=%s", strings.Join(i.UnionTags, ","))
	}
	return sb.String()
}

// Join is the common type of two control-flow arms: the bounds hull when both
// arms name the same type, Unknown otherwise.
func Join(a, b Info) Info {
	if a.Name != b.Name {
		return Unknown()
	}
	out := a
	out.Min, out.Max = Bound{}, Bound{}
	if a.Min.Known && b.Min.Known {
		out.Min = Exact(min(a.Min.V, b.Min.V))
	}
	if a.Max.Known && b.Max.Known {
		out.Max = Exact(max(a.Max.V, b.Max.V))
	}
	out.NonZero = a.NonZero && b.NonZero
	if out.ArrayInit != b.ArrayInit {
		out.ArrayInit = Bound{}
	}
	if out.ArrayTotal != b.ArrayTotal {
		out.ArrayTotal = Bound{}
	}
	return out.Normalize()
}
