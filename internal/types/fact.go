package types

import (
	"slices"
)

// Fact is a per-identifier patch learned from a branch condition. Unset
// fields leave the narrowed info untouched.
type Fact struct {
	Min     Bound
	Max     Bound
	NonZero OptBool
	// NonNull marks a nullable pointer as guarded against the 0USize sentinel.
	NonNull bool
}

// IsEmpty reports whether the patch changes nothing.
func (f Fact) IsEmpty() bool {
	return !f.Min.Known && !f.Max.Known && !f.NonZero.Set && !f.NonNull
}

// Overlay applies patch on top of f, field by field.
func (f Fact) Overlay(patch Fact) Fact {
	if patch.Min.Known {
		f.Min = patch.Min
	}
	if patch.Max.Known {
		f.Max = patch.Max
	}
	if patch.NonZero.Set {
		f.NonZero = patch.NonZero
	}
	if patch.NonNull {
		f.NonNull = true
	}
	return f
}

// FactSet is a persistent name -> Fact map. Each layer stores complete facts
// (already overlaid on its parents), so lookups stop at the first hit and a
// branch can fork a snapshot in O(1). A nil *FactSet is the empty set.
type FactSet struct {
	parent *FactSet
	local  map[string]Fact
}

// NewFactSet returns an empty root layer.
func NewFactSet() *FactSet {
	return &FactSet{local: make(map[string]Fact)}
}

// Lookup returns the visible fact for name.
func (s *FactSet) Lookup(name string) (Fact, bool) {
	for layer := s; layer != nil; layer = layer.parent {
		if f, ok := layer.local[name]; ok {
			return f, !f.IsEmpty()
		}
	}
	return Fact{}, false
}

// Add overlays patch onto the fact for name in this layer.
func (s *FactSet) Add(name string, patch Fact) {
	prev, _ := s.Lookup(name)
	s.local[name] = prev.Overlay(patch)
}

// Kill hides any fact about name from this layer downward.
func (s *FactSet) Kill(name string) {
	if _, ok := s.Lookup(name); ok {
		s.local[name] = Fact{}
	}
}

// Fork returns a child layer; writes to it never reach s.
func (s *FactSet) Fork() *FactSet {
	return &FactSet{parent: s, local: make(map[string]Fact)}
}

// Names returns the sorted names with a visible, non-empty fact.
func (s *FactSet) Names() []string {
	seen := make(map[string]bool)
	for layer := s; layer != nil; layer = layer.parent {
		for name := range layer.local {
			if _, ok := seen[name]; !ok {
				seen[name] = !layer.local[name].IsEmpty()
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name, visible := range seen {
		if visible {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Len returns the number of visible facts.
func (s *FactSet) Len() int {
	return len(s.Names())
}

// Merge overlays extra's per-name patches onto base and returns the result as
// a new layer; base is unchanged.
func Merge(base, extra *FactSet) *FactSet {
	out := base.Fork()
	for _, name := range extra.Names() {
		patch, _ := extra.Lookup(name)
		out.Add(name, patch)
	}
	return out
}

// Snapshot flattens the visible facts into a plain map (tests, tracing).
func (s *FactSet) Snapshot() map[string]Fact {
	out := make(map[string]Fact)
	for _, name := range s.Names() {
		out[name], _ = s.Lookup(name)
	}
	return out
}
