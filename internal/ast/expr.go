package ast

import (
	"tuff/internal/source"
)

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	// ExprLit represents a literal expression.
	ExprLit ExprKind = iota
	// ExprIdent represents an identifier expression.
	ExprIdent
	// ExprBinary represents a binary expression.
	ExprBinary
	// ExprUnary represents a unary expression (including & and &mut borrows).
	ExprUnary
	// ExprCall represents a function call expression.
	ExprCall
	// ExprMember represents a field access.
	ExprMember
	// ExprIndex represents an element access.
	ExprIndex
	// ExprStruct represents a struct literal.
	ExprStruct
	ExprIf
	ExprMatch
	ExprIs
	ExprUnwrap
	ExprBlock
)

func (k ExprKind) String() string {
	switch k {
	case ExprLit:
		return "Literal"
	case ExprIdent:
		return "Identifier"
	case ExprBinary:
		return "BinaryExpr"
	case ExprUnary:
		return "UnaryExpr"
	case ExprCall:
		return "CallExpr"
	case ExprMember:
		return "MemberExpr"
	case ExprIndex:
		return "IndexExpr"
	case ExprStruct:
		return "StructInit"
	case ExprIf:
		return "IfExpr"
	case ExprMatch:
		return "MatchExpr"
	case ExprIs:
		return "IsExpr"
	case ExprUnwrap:
		return "UnwrapExpr"
	case ExprBlock:
		return "Block"
	}
	return "Expr?"
}

// Expr represents an expression node in the AST.
type Expr struct {
	Kind    ExprKind
	Pos     source.Pos
	Payload PayloadID
}

// ExprLitKind enumerates literal kinds.
type ExprLitKind uint8

const (
	ExprLitNumber ExprLitKind = iota
	ExprLitBool
	ExprLitString
	ExprLitChar
)

// ExprLiteralData holds a decoded literal. Numbers are kept as int64;
// Suffix is the explicit numeric type (e.g. USize in 0USize), or NoStringID.
type ExprLiteralData struct {
	Kind   ExprLitKind
	Int    int64
	Bool   bool
	Text   source.StringID
	Suffix source.StringID
}

type ExprIdentData struct {
	Name source.StringID
}

// ExprBinaryOp enumerates binary operator kinds.
type ExprBinaryOp uint8

const (
	// Арифметические
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod

	// Сравнения
	ExprBinaryEq
	ExprBinaryNotEq
	ExprBinaryLess
	ExprBinaryLessEq
	ExprBinaryGreater
	ExprBinaryGreaterEq

	// Логические
	ExprBinaryLogicalAnd
	ExprBinaryLogicalOr
)

var binaryOpText = [...]string{
	ExprBinaryAdd:        "+",
	ExprBinarySub:        "-",
	ExprBinaryMul:        "*",
	ExprBinaryDiv:        "/",
	ExprBinaryMod:        "%",
	ExprBinaryEq:         "==",
	ExprBinaryNotEq:      "!=",
	ExprBinaryLess:       "<",
	ExprBinaryLessEq:     "<=",
	ExprBinaryGreater:    ">",
	ExprBinaryGreaterEq:  ">=",
	ExprBinaryLogicalAnd: "&&",
	ExprBinaryLogicalOr:  "||",
}

func (op ExprBinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// ParseBinaryOp maps operator text to its kind.
func ParseBinaryOp(s string) (ExprBinaryOp, bool) {
	for op, text := range binaryOpText {
		if text == s {
			return ExprBinaryOp(op), true // #nosec G115 -- small table
		}
	}
	return 0, false
}

// IsComparison reports whether op yields a Bool from two values.
func (op ExprBinaryOp) IsComparison() bool {
	return op >= ExprBinaryEq && op <= ExprBinaryGreaterEq
}

// IsArithmetic reports whether op is one of + - * / %.
func (op ExprBinaryOp) IsArithmetic() bool {
	return op <= ExprBinaryMod
}

// IsLogical reports whether op is && or ||.
func (op ExprBinaryOp) IsLogical() bool {
	return op == ExprBinaryLogicalAnd || op == ExprBinaryLogicalOr
}

// Negate returns the logical negation of a comparison operator.
func (op ExprBinaryOp) Negate() ExprBinaryOp {
	switch op {
	case ExprBinaryLess:
		return ExprBinaryGreaterEq
	case ExprBinaryLessEq:
		return ExprBinaryGreater
	case ExprBinaryGreater:
		return ExprBinaryLessEq
	case ExprBinaryGreaterEq:
		return ExprBinaryLess
	case ExprBinaryEq:
		return ExprBinaryNotEq
	case ExprBinaryNotEq:
		return ExprBinaryEq
	}
	return op
}

type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

// ExprUnaryOp enumerates unary operator kinds.
type ExprUnaryOp uint8

const (
	ExprUnaryNeg ExprUnaryOp = iota
	ExprUnaryNot
	ExprUnaryRef
	ExprUnaryRefMut
	ExprUnaryDeref
)

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryNeg:
		return "-"
	case ExprUnaryNot:
		return "!"
	case ExprUnaryRef:
		return "&"
	case ExprUnaryRefMut:
		return "&mut"
	case ExprUnaryDeref:
		return "*"
	}
	return "?"
}

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprCallData struct {
	Callee ExprID
	Args   []ExprID
}

type ExprMemberData struct {
	Target ExprID
	Field  source.StringID
}

type ExprIndexData struct {
	Target ExprID
	Index  ExprID
}

type ExprStructField struct {
	Name  source.StringID
	Value ExprID
}

type ExprStructData struct {
	Name   source.StringID
	Fields []ExprStructField
}

// ExprIfData is a value-producing conditional; Else may be NoExprID.
type ExprIfData struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

type ExprMatchArm struct {
	Pattern PatternID
	Body    ExprID
}

type ExprMatchData struct {
	Subject ExprID
	Arms    []ExprMatchArm
}

type ExprIsData struct {
	Value   ExprID
	Pattern PatternID
}

type ExprUnwrapData struct {
	Value ExprID
}

// ExprBlockData is a statement list; its value is the last statement's value.
type ExprBlockData struct {
	Stmts []StmtID
}
