package ui

import (
	"errors"

	"tuff/internal/diag"
)

func codeOf(err error) string {
	var d *diag.Diagnostic
	if errors.As(err, &d) && d != nil {
		return d.Code.ID()
	}
	return ""
}
