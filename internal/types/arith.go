package types

import (
	"math/big"

	"tuff/internal/ast"
)

// Interval is an exact integer interval; arithmetic on it never wraps.
type Interval struct {
	Lo, Hi *big.Int
}

// IntervalOf returns the interval of a fully bounded info.
func IntervalOf(i Info) (Interval, bool) {
	if !i.Bounded() {
		return Interval{}, false
	}
	return Interval{Lo: i.Min.big(), Hi: i.Max.big()}, true
}

// Arith computes the exact result interval of l op r for + - * / %.
// ok is false when an operand is not fully bounded or the operation has no
// finite interval (division by a range containing zero).
func Arith(op ast.ExprBinaryOp, l, r Info) (Interval, bool) {
	li, lok := IntervalOf(l)
	ri, rok := IntervalOf(r)
	if !lok || !rok {
		return Interval{}, false
	}
	switch op {
	case ast.ExprBinaryAdd:
		return Interval{
			Lo: new(big.Int).Add(li.Lo, ri.Lo),
			Hi: new(big.Int).Add(li.Hi, ri.Hi),
		}, true
	case ast.ExprBinarySub:
		return Interval{
			Lo: new(big.Int).Sub(li.Lo, ri.Hi),
			Hi: new(big.Int).Sub(li.Hi, ri.Lo),
		}, true
	case ast.ExprBinaryMul:
		return corners(li, ri, func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) }), true
	case ast.ExprBinaryDiv:
		if ri.Lo.Sign() <= 0 && ri.Hi.Sign() >= 0 {
			return Interval{}, false
		}
		return corners(li, ri, func(a, b *big.Int) *big.Int { return new(big.Int).Quo(a, b) }), true
	case ast.ExprBinaryMod:
		if ri.Lo.Sign() <= 0 && ri.Hi.Sign() >= 0 {
			return Interval{}, false
		}
		// |a % b| < max|b| and |a % b| <= |a|; the sign follows the dividend
		m := new(big.Int).Abs(ri.Lo)
		if hi := new(big.Int).Abs(ri.Hi); hi.Cmp(m) > 0 {
			m = hi
		}
		m.Sub(m, big.NewInt(1))
		lo := bigMax(new(big.Int).Neg(m), bigMin(li.Lo, big.NewInt(0)))
		hi := bigMin(m, bigMax(li.Hi, big.NewInt(0)))
		return Interval{Lo: lo, Hi: hi}, true
	}
	return Interval{}, false
}

func corners(a, b Interval, f func(x, y *big.Int) *big.Int) Interval {
	cands := [4]*big.Int{f(a.Lo, b.Lo), f(a.Lo, b.Hi), f(a.Hi, b.Lo), f(a.Hi, b.Hi)}
	lo, hi := cands[0], cands[0]
	for _, c := range cands[1:] {
		if c.Cmp(lo) < 0 {
			lo = c
		}
		if c.Cmp(hi) > 0 {
			hi = c
		}
	}
	return Interval{Lo: lo, Hi: hi}
}

// Escape returns the first endpoint of iv outside [lo, hi] (the witness), or nil.
func (iv Interval) Escape(lo, hi int64) *big.Int {
	if iv.Hi.Cmp(big.NewInt(hi)) > 0 {
		return iv.Hi
	}
	if iv.Lo.Cmp(big.NewInt(lo)) < 0 {
		return iv.Lo
	}
	return nil
}

// Bounds converts the interval back to int64 bounds; endpoints beyond int64
// become absent.
func (iv Interval) Bounds() (Bound, Bound) {
	return boundFromBig(iv.Lo), boundFromBig(iv.Hi)
}

// Negate returns the info of -i: bounds swap and flip sign.
func Negate(i Info) Info {
	lo, hi := Bound{}, Bound{}
	if i.Max.Known {
		lo = boundFromBig(new(big.Int).Neg(i.Max.big()))
	}
	if i.Min.Known {
		hi = boundFromBig(new(big.Int).Neg(i.Min.big()))
	}
	nz := i.NonZero
	out := i.WithBounds(lo, hi)
	out.NonZero = out.NonZero || nz
	return out
}

func bigMin(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func bigMax(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}
