package diag

import (
	"fmt"
	"sort"
	"strings"

	"tuff/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShortDiagnostics renders diagnostics one per line as
// "<severity> <code> <path>:<line>:<col> <message>", sorted deterministically.
// Golden tests and the short CLI format both use it.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	rendered := make([]shortDiagnostic, 0, len(diags))
	for _, d := range diags {
		if d == nil {
			continue
		}
		rendered = append(rendered, shortEntry(d.Severity.String(), d.Code, d.Primary, d.Message, fs))
		if includeNotes {
			for _, n := range d.Notes {
				rendered = append(rendered, shortEntry("note", d.Code, n.Pos, n.Msg, fs))
			}
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		return di.Code < dj.Code
	})

	lines := make([]string, 0, len(rendered))
	for _, r := range rendered {
		lines = append(lines, fmt.Sprintf("%s %s %s:%d:%d %s", r.Severity, r.Code, r.Path, r.Line, r.Column, r.Message))
	}
	return strings.Join(lines, "\n")
}

func shortEntry(sev string, code Code, pos source.Pos, msg string, fs *source.FileSet) shortDiagnostic {
	return shortDiagnostic{
		Severity: sev,
		Code:     code.ID(),
		Path:     fs.DisplayPath(pos.File, "relative"),
		Line:     pos.Line,
		Column:   pos.Col,
		Message:  strings.Join(strings.Fields(msg), " "),
	}
}
