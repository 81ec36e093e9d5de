package types

import (
	"math/big"
	"strconv"
)

// Bound is an optional closed integer bound; the zero value is "absent".
type Bound struct {
	V     int64
	Known bool
}

// Exact returns a known bound.
func Exact(v int64) Bound {
	return Bound{V: v, Known: true}
}

func (b Bound) String() string {
	if !b.Known {
		return "?"
	}
	return strconv.FormatInt(b.V, 10)
}

func (b Bound) big() *big.Int {
	return big.NewInt(b.V)
}

// boundFromBig narrows an exact result back to int64; results outside int64 are absent.
func boundFromBig(v *big.Int) Bound {
	if v == nil || !v.IsInt64() {
		return Bound{}
	}
	return Exact(v.Int64())
}

// tighterMin returns the larger of two lower bounds, treating absent as -inf.
func tighterMin(a, b Bound) Bound {
	switch {
	case !a.Known:
		return b
	case !b.Known:
		return a
	case b.V > a.V:
		return b
	}
	return a
}

// tighterMax returns the smaller of two upper bounds, treating absent as +inf.
func tighterMax(a, b Bound) Bound {
	switch {
	case !a.Known:
		return b
	case !b.Known:
		return a
	case b.V < a.V:
		return b
	}
	return a
}

// OptBool is a fact field that may be left unset by a patch.
type OptBool struct {
	Value bool
	Set   bool
}

func Yes() OptBool { return OptBool{Value: true, Set: true} }
func No() OptBool  { return OptBool{Value: false, Set: true} }
