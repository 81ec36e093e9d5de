package diag

import (
	"fmt"

	"tuff/internal/source"
)

type Note struct {
	Pos source.Pos
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Reason   string
	Fix      string
	Primary  source.Pos
	Notes    []Note
}

// NewError creates an error diagnostic with catalogue defaults for Reason and Fix.
func NewError(code Code, primary source.Pos, msg string) *Diagnostic {
	return &Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  msg,
		Reason:   code.DefaultReason(),
		Fix:      code.DefaultFix(),
		Primary:  primary,
	}
}

// Errorf is NewError with a formatted message.
func Errorf(code Code, primary source.Pos, format string, args ...any) *Diagnostic {
	return NewError(code, primary, fmt.Sprintf(format, args...))
}

// WithReason replaces the reason; an empty string keeps the default.
func (d *Diagnostic) WithReason(reason string) *Diagnostic {
	if reason != "" {
		d.Reason = reason
	}
	return d
}

// WithFix replaces the fix; an empty string keeps the default.
func (d *Diagnostic) WithFix(fix string) *Diagnostic {
	if fix != "" {
		d.Fix = fix
	}
	return d
}

func (d *Diagnostic) WithNote(pos source.Pos, msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Pos: pos, Msg: msg})
	return d
}

// Error implements error so infrastructure callers can wrap diagnostics.
func (d *Diagnostic) Error() string {
	if d == nil {
		return "<nil diagnostic>"
	}
	return fmt.Sprintf("%s at %d:%d: %s", d.Code.ID(), d.Primary.Line, d.Primary.Col, d.Message)
}
