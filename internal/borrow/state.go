package borrow

import (
	"maps"
	"slices"
)

// nameSet is a copy-on-write set of variable names. A fork shares the
// backing map until either side writes.
type nameSet struct {
	m     map[string]struct{}
	owned bool
}

func (s *nameSet) has(name string) bool {
	_, ok := s.m[name]
	return ok
}

func (s *nameSet) own() {
	if s.owned {
		return
	}
	s.m = maps.Clone(s.m)
	if s.m == nil {
		s.m = make(map[string]struct{})
	}
	s.owned = true
}

func (s *nameSet) add(name string) {
	if s.has(name) {
		return
	}
	s.own()
	s.m[name] = struct{}{}
}

func (s *nameSet) remove(name string) {
	if !s.has(name) {
		return
	}
	s.own()
	delete(s.m, name)
}

// fork hands out a shared view; both sides copy on their next write.
func (s *nameSet) fork() nameSet {
	s.owned = false
	return nameSet{m: s.m}
}

func (s *nameSet) union(other nameSet) {
	for name := range other.m {
		s.add(name)
	}
}

func (s *nameSet) sorted() []string {
	out := make([]string, 0, len(s.m))
	for name := range s.m {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

type loanKind uint8

const (
	loanShared loanKind = iota
	loanMut
)

type loan struct {
	kind  loanKind
	place place
}

// frame marks what a lexical scope introduced: loans above loanMark and the
// destructor-carrying names registered inside it.
type frame struct {
	loanMark int
	drops    []string
}

// state is the per-function ownership state.
type state struct {
	moved   nameSet
	dropped nameSet
	// names holding a destructor-carrying value that was not dropped yet
	pending nameSet
	// active loans, innermost last
	loans  []loan
	frames []frame
}

func newState() *state {
	return &state{
		moved:   nameSet{m: make(map[string]struct{}), owned: true},
		dropped: nameSet{m: make(map[string]struct{}), owned: true},
		pending: nameSet{m: make(map[string]struct{}), owned: true},
	}
}

// fork gives a branch arm its own view of the state. Sets are shared
// copy-on-write; the loan slice is clipped so appends in the arm never land
// in the parent's backing array. The arm starts with no open frames.
func (s *state) fork() *state {
	return &state{
		moved:   s.moved.fork(),
		dropped: s.dropped.fork(),
		pending: s.pending.fork(),
		loans:   slices.Clip(s.loans),
	}
}

func (s *state) beginScope() {
	s.frames = append(s.frames, frame{loanMark: len(s.loans)})
}

// endScope retracts the loans and pending drops the scope introduced.
func (s *state) endScope() {
	if len(s.frames) == 0 {
		return
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	if top.loanMark <= len(s.loans) {
		s.loans = slices.Clip(s.loans[:top.loanMark])
	}
	for _, name := range top.drops {
		s.pending.remove(name)
	}
}

func (s *state) addLoan(kind loanKind, p place) {
	s.loans = append(s.loans, loan{kind: kind, place: p})
}

func (s *state) trackPending(name string) {
	s.pending.add(name)
	if n := len(s.frames); n > 0 {
		s.frames[n-1].drops = append(s.frames[n-1].drops, name)
	}
}

// conflicting returns the first active loan overlapping p; mutOnly restricts
// the search to exclusive loans.
func (s *state) conflicting(p place, mutOnly bool) (loan, bool) {
	for _, l := range s.loans {
		if mutOnly && l.kind != loanMut {
			continue
		}
		if l.place.conflicts(p) {
			return l, true
		}
	}
	return loan{}, false
}
