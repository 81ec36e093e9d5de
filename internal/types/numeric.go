package types

import (
	"math"
	"strings"
)

const (
	NameUnknown  = "Unknown"
	NameVoid     = "Void"
	NameBool     = "Bool"
	NameChar     = "Char"
	NameI32      = "I32"
	NameUSize    = "USize"
	NameFn       = "Fn"
	NameArray    = "Array"
	NameAnyValue = "AnyValue"
	NameStrPtr   = "*Str"

	minInt64 = math.MinInt64
)

var numericNames = map[string]bool{
	"I8": true, "I16": true, "I32": true, "I64": true, "I128": true,
	"U8": true, "U16": true, "U32": true, "U64": true, "U128": true,
	"USize": true, "ISize": true, "F32": true, "F64": true,
}

var unsignedNames = map[string]bool{
	"U8": true, "U16": true, "U32": true, "U64": true, "U128": true, "USize": true,
}

// builtinNames are never treated as type variables.
var builtinNames = map[string]bool{
	NameBool: true, NameChar: true, NameAnyValue: true, NameVoid: true, NameUnknown: true,
	"Str": true,
}

type fixedRange struct{ min, max Bound }

// Seeded ranges. Wider types only get the unsigned floor (see IsUnsigned):
// their upper limits do not fit the int64 bound representation.
var fixedRanges = map[string]fixedRange{
	"I8":  {Exact(math.MinInt8), Exact(math.MaxInt8)},
	"I16": {Exact(math.MinInt16), Exact(math.MaxInt16)},
	"I32": {Exact(math.MinInt32), Exact(math.MaxInt32)},
	"I64": {Exact(math.MinInt64), Exact(math.MaxInt64)},
	"U8":  {Exact(0), Exact(math.MaxUint8)},
	"U16": {Exact(0), Exact(math.MaxUint16)},
	"U32": {Exact(0), Exact(math.MaxUint32)},
}

// IsNumeric reports whether name is one of the built-in numeric types.
func IsNumeric(name string) bool { return numericNames[name] }

// IsUnsigned reports whether name is an unsigned integer type.
func IsUnsigned(name string) bool { return unsignedNames[name] }

// IsBuiltin reports whether name is a primitive or builtin marker type.
func IsBuiltin(name string) bool { return numericNames[name] || builtinNames[name] }

// RangeOf returns the seeded interval of a primitive; both bounds are absent
// for names without a fixed range.
func RangeOf(name string) (Bound, Bound) {
	if r, ok := fixedRanges[name]; ok {
		return r.min, r.max
	}
	if unsignedNames[name] {
		return Exact(0), Bound{}
	}
	return Bound{}, Bound{}
}

// OverflowRange is the interval every checked integer result must stay in,
// whatever the operand types: the 32-bit signed range.
func OverflowRange() (int64, int64) {
	return math.MinInt32, math.MaxInt32
}

// IsTypeVariableName reports whether name looks like a generic parameter (a
// single uppercase ASCII letter).
func IsTypeVariableName(name string) bool {
	return len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z'
}

// CompatibleNamed implements structural name compatibility: equal names, a
// member of an expected union, or `*mut T` where `*T` is expected.
func CompatibleNamed(expected, actual string) bool {
	if expected == actual {
		return true
	}
	if strings.Contains(expected, "|") {
		for _, part := range strings.Split(expected, "|") {
			if strings.TrimSpace(part) == actual {
				return true
			}
		}
	}
	if strings.HasPrefix(expected, "*") && !strings.HasPrefix(expected, "*mut ") &&
		strings.HasPrefix(actual, "*mut ") {
		return expected[1:] == actual[len("*mut "):]
	}
	return false
}

// CompatibleNumeric allows numeric widening between distinct numeric names.
// An unsigned expectation additionally needs a proven non-negative value.
func CompatibleNumeric(expected string, actual Info) bool {
	if expected == actual.Name {
		return true
	}
	if !IsNumeric(expected) || !IsNumeric(actual.Name) {
		return false
	}
	if IsUnsigned(expected) {
		return actual.Min.Known && actual.Min.V >= 0
	}
	return true
}
