package sema

import (
	"slices"

	"tuff/internal/types"
)

// binding is a local variable: its current narrowed info and the info it was
// declared with (the widening target after assignments).
type binding struct {
	info     types.Info
	declared types.Info
}

// scope is one lexical layer. Children read through to parents and never
// write into them; an assignment to an outer name is recorded as an overlay
// in the child and widened in the parent when the child closes.
type scope struct {
	parent *scope
	vars   map[string]binding
	// outer names assigned in this layer but declared above it
	outer map[string]bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]binding)}
}

func (s *scope) lookup(name string) (binding, bool) {
	for layer := s; layer != nil; layer = layer.parent {
		if b, ok := layer.vars[name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

func (s *scope) define(name string, info, declared types.Info) {
	s.vars[name] = binding{info: info, declared: declared}
	delete(s.outer, name)
}

// assign replaces the current info of a visible binding. It reports false for
// names that are not local variables.
func (s *scope) assign(name string, info types.Info) bool {
	b, ok := s.lookup(name)
	if !ok {
		return false
	}
	if _, local := s.vars[name]; !local {
		if s.outer == nil {
			s.outer = make(map[string]bool)
		}
		s.outer[name] = true
	}
	s.vars[name] = binding{info: info, declared: b.declared}
	return true
}

// widen resets a binding to its declared info.
func (s *scope) widen(name string) {
	if b, ok := s.lookup(name); ok {
		s.assign(name, b.declared)
	}
}

// escaped returns the outer names this layer assigned, sorted.
func (s *scope) escaped() []string {
	out := make([]string, 0, len(s.outer))
	for name := range s.outer {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// env is the state threaded through the walk: bindings plus branch facts.
type env struct {
	scope *scope
	facts *types.FactSet
}

func rootEnv() env {
	return env{scope: newScope(nil), facts: types.NewFactSet()}
}

// nested opens a child env whose facts start from facts (usually a fork or
// merge of e.facts).
func (e env) nested(facts *types.FactSet) env {
	return env{scope: newScope(e.scope), facts: facts}
}

// close folds a finished child back: every outer binding the child assigned
// is widened here and loses its facts.
func (e env) close(child env) {
	for _, name := range child.scope.escaped() {
		e.scope.widen(name)
		e.facts.Kill(name)
	}
}
