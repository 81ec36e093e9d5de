package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Типовые правила
	TypeMismatch       Code = 3001
	TypeArity          Code = 3002
	TypeCondition      Code = 3003
	TypeOperand        Code = 3004
	TypeUnknownField   Code = 3005
	TypeReturnMismatch Code = 3006

	// Числовая и структурная безопасность
	SafetyDivByZero            Code = 3101
	SafetyModByZero            Code = 3102
	SafetyOverflow             Code = 3103
	SafetyArrayBounds          Code = 3104
	SafetyArrayBoundsUnproven  Code = 3105
	SafetyNullablePointerGuard Code = 3106
	SafetyNonZeroRefinement    Code = 3107
	MatchNonExhaustive         Code = 3108

	// Владение и заимствования
	BorrowUseAfterMove          Code = 3501
	BorrowUseAfterDrop          Code = 3502
	BorrowDoubleDrop            Code = 3503
	BorrowMoveWhileBorrowed     Code = 3504
	BorrowImmutWhileMut         Code = 3505
	BorrowMutConflict           Code = 3506
	BorrowAssignWhileBorrowed   Code = 3507
	BorrowInvalidTarget         Code = 3508
	BorrowInvalidCopyAlias      Code = 3509
	BorrowDropMissingDestructor Code = 3510

	// Вход, IO, проект
	InputMalformed Code = 4001
	IOError        Code = 4002
	ProjectError   Code = 4003
)

type codeInfo struct {
	id     string
	title  string
	reason string
	fix    string
}

const borrowRule = "Borrowing and ownership rules require exclusive mutable access or shared immutable access, and disallow use-after-move."

var codeCatalogue = map[Code]codeInfo{
	UnknownCode: {"E0000", "Unknown error", "", ""},

	TypeMismatch: {"E_TYPE_MISMATCH", "Type mismatch",
		"The value's type is not compatible with the declared or expected type.",
		"Change the value or the annotation so that both name the same type."},
	TypeArity: {"E_TYPE_ARITY", "Wrong number of arguments",
		"A call must pass exactly as many arguments as the function declares.",
		"Add or remove arguments to match the function signature."},
	TypeCondition: {"E_TYPE_CONDITION", "Condition is not Bool",
		"Branch and loop conditions must evaluate to Bool.",
		"Compare the value explicitly, for example x != 0."},
	TypeOperand: {"E_TYPE_OPERAND", "Invalid operand type",
		"The operator is not defined for the operand's type.",
		"Use numeric operands for arithmetic and Bool operands for logical operators."},
	TypeUnknownField: {"E_TYPE_UNKNOWN_FIELD", "Unknown struct field",
		"Struct initializers may only name fields declared by the struct.",
		"Remove the field or add it to the struct declaration."},
	TypeReturnMismatch: {"E_TYPE_RETURN_MISMATCH", "Return type mismatch",
		"The returned value must be compatible with the function's declared return type.",
		"Return a value of the declared type or change the signature."},

	SafetyDivByZero: {"E_SAFETY_DIV_BY_ZERO", "Division by zero not excluded",
		"Division requires denominator to be provably non-zero.",
		"Guard the denominator with if (x != 0) or use a refined type such as I32 where != 0."},
	SafetyModByZero: {"E_SAFETY_MOD_BY_ZERO", "Modulo by zero not excluded",
		"Modulo requires denominator to be provably non-zero.",
		"Guard the denominator with if (x != 0) or use a refined type such as I32 where != 0."},
	SafetyOverflow: {"E_SAFETY_OVERFLOW", "Integer overflow",
		"Arithmetic results must provably stay inside the I32 range.",
		"Constrain operand ranges with guards or refinements, or use a wider type."},
	SafetyArrayBounds: {"E_SAFETY_ARRAY_BOUNDS", "Array index out of bounds",
		"Array accesses must stay within 0 <= index < initialized length.",
		"Ensure 0 <= index < initialized length."},
	SafetyArrayBoundsUnproven: {"E_SAFETY_ARRAY_BOUNDS_UNPROVEN", "Array index bound unproven",
		"The index has no proven upper bound, so the access may run past the initialized elements.",
		"Guard index with 'if (i < N)' before indexing."},
	SafetyNullablePointerGuard: {"E_SAFETY_NULLABLE_POINTER_GUARD", "Nullable pointer used without guard",
		"A pointer that may hold the 0USize sentinel must be checked before it is dereferenced or passed on.",
		"Guard pointer use with if (p != 0USize) (or 0USize != p) before dereference/consumption."},
	SafetyNonZeroRefinement: {"E_SAFETY_NONZERO_REFINEMENT", "Non-zero refinement unproven",
		"The target is declared non-zero but the value is not proven non-zero.",
		"Guard the value with if (x != 0) or pass a non-zero literal."},
	MatchNonExhaustive: {"E_MATCH_NON_EXHAUSTIVE", "Non-exhaustive match",
		"A match over a union must cover every alternative.",
		"Add missing case arms or a wildcard case '_'."},

	BorrowUseAfterMove: {"E_BORROW_USE_AFTER_MOVE", "Use after move", borrowRule,
		"Use the value before moving it, or copy/clone it before the move."},
	BorrowUseAfterDrop: {"E_BORROW_USE_AFTER_DROP", "Use after drop", borrowRule,
		"Do not use a value after explicit or implicit drop; move/copy before dropping if needed."},
	BorrowDoubleDrop: {"E_BORROW_DOUBLE_DROP", "Double drop", borrowRule,
		"Ensure each owned value is dropped exactly once."},
	BorrowMoveWhileBorrowed: {"E_BORROW_MOVE_WHILE_BORROWED", "Move while borrowed", borrowRule,
		"Move the value only after all outstanding borrows have ended."},
	BorrowImmutWhileMut: {"E_BORROW_IMMUT_WHILE_MUT", "Shared borrow while mutably borrowed", borrowRule,
		"End the mutable borrow before taking a shared borrow."},
	BorrowMutConflict: {"E_BORROW_MUT_CONFLICT", "Conflicting mutable borrow", borrowRule,
		"Ensure no other borrows are active before taking &mut."},
	BorrowAssignWhileBorrowed: {"E_BORROW_ASSIGN_WHILE_BORROWED", "Assignment while borrowed", borrowRule,
		"Assign only after all borrows of the place have ended."},
	BorrowInvalidTarget: {"E_BORROW_INVALID_TARGET", "Invalid borrow or drop target", borrowRule,
		"Borrow or drop a place such as x, x.field or x[i]."},
	BorrowInvalidCopyAlias: {"E_BORROW_INVALID_COPY_ALIAS", "Invalid copy alias", borrowRule,
		"Remove 'copy' from the alias or make the aliased type copyable."},
	BorrowDropMissingDestructor: {"E_BORROW_DROP_MISSING_DESTRUCTOR", "Drop of type without destructor", borrowRule,
		"Declare a destructor alias such as type Owned = T then destroy; or do not drop the value."},

	InputMalformed: {"E_INPUT_MALFORMED", "Malformed input tree",
		"The resolver output does not match the expected node shapes.",
		"Regenerate the tree with a matching resolver version."},
	IOError: {"E_IO", "IO error",
		"The input could not be read.",
		"Check the path and permissions."},
	ProjectError: {"E_PROJECT", "Project configuration error",
		"tuff.toml could not be loaded or contains invalid values.",
		"Fix the reported manifest key."},
}

// ID returns the stable machine-readable identifier.
func (c Code) ID() string {
	if info, ok := codeCatalogue[c]; ok {
		return info.id
	}
	return fmt.Sprintf("E%04d", uint16(c))
}

func (c Code) Title() string {
	info, ok := codeCatalogue[c]
	if !ok {
		return codeCatalogue[UnknownCode].title
	}
	return info.title
}

// DefaultReason is used when a producer did not supply a specific reason.
func (c Code) DefaultReason() string {
	return codeCatalogue[c].reason
}

// DefaultFix is used when a producer did not supply a specific fix.
func (c Code) DefaultFix() string {
	return codeCatalogue[c].fix
}

// Family names the code range: "type", "safety", "borrow", "input" or "unknown".
func (c Code) Family() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 3100:
		return "type"
	case ic >= 3100 && ic < 3200:
		return "safety"
	case ic >= 3500 && ic < 3600:
		return "borrow"
	case ic >= 4000 && ic < 4100:
		return "input"
	}
	return "unknown"
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode maps a stable ID back to its Code.
func ParseCode(id string) (Code, bool) {
	for code, info := range codeCatalogue {
		if info.id == id {
			return code, true
		}
	}
	return UnknownCode, false
}
