package types

// Bindings maps generic parameter names to the concrete types inferred at one
// call site.
type Bindings map[string]*Type

// CollectTypeVariables adds to out every name in t that looks like a generic
// parameter and is not a known type.
func CollectTypeVariables(t *Type, known func(string) bool, out map[string]bool) {
	if t == nil {
		return
	}
	switch t.Kind {
	case KindNamed:
		if len(t.Args) == 0 {
			if IsTypeVariableName(t.Name) && !known(t.Name) {
				out[t.Name] = true
			}
			return
		}
		for _, a := range t.Args {
			CollectTypeVariables(a, known, out)
		}
	case KindPointer, KindArray, KindRefinement:
		CollectTypeVariables(t.Elem, known, out)
	case KindTuple:
		for _, m := range t.Members {
			CollectTypeVariables(m, known, out)
		}
	case KindUnion:
		CollectTypeVariables(t.Left, known, out)
		CollectTypeVariables(t.Right, known, out)
	}
}

// BindGenerics unifies a declared parameter type against an argument type in
// one structural pass. The first binding of a name wins; later conflicting
// occurrences neither widen nor fail.
func BindGenerics(param, arg *Type, generics map[string]bool, out Bindings) {
	if param == nil || arg == nil {
		return
	}
	switch param.Kind {
	case KindNamed:
		if len(param.Args) == 0 && generics[param.Name] {
			if _, ok := out[param.Name]; !ok {
				out[param.Name] = arg
			}
			return
		}
		if arg.Kind == KindNamed && arg.Name == param.Name {
			n := min(len(param.Args), len(arg.Args))
			for i := 0; i < n; i++ {
				BindGenerics(param.Args[i], arg.Args[i], generics, out)
			}
		}
	case KindPointer, KindArray:
		if arg.Kind == param.Kind {
			BindGenerics(param.Elem, arg.Elem, generics, out)
		}
	case KindTuple:
		if arg.Kind == KindTuple {
			n := min(len(param.Members), len(arg.Members))
			for i := 0; i < n; i++ {
				BindGenerics(param.Members[i], arg.Members[i], generics, out)
			}
		}
	case KindRefinement:
		BindGenerics(param.Elem, arg, generics, out)
	}
}

// Substitute rewrites t with bound generic names replaced. Unchanged subtrees
// are shared with the input.
func Substitute(t *Type, bindings Bindings) *Type {
	if t == nil || len(bindings) == 0 {
		return t
	}
	switch t.Kind {
	case KindNamed:
		if len(t.Args) == 0 {
			if bound, ok := bindings[t.Name]; ok {
				return bound
			}
			return t
		}
		args := make([]*Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = Substitute(a, bindings)
		}
		return Named(t.Name, args...)
	case KindPointer, KindArray, KindRefinement:
		cp := *t
		cp.Elem = Substitute(t.Elem, bindings)
		return &cp
	case KindTuple:
		members := make([]*Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = Substitute(m, bindings)
		}
		return TupleOf(members...)
	case KindUnion:
		return UnionOf(Substitute(t.Left, bindings), Substitute(t.Right, bindings))
	}
	return t
}
