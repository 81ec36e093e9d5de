package diagfmt

import (
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"tuff/internal/source"
)

const unavailable = "<unavailable>"

// sourceFor returns the file whose lines pos refers to. Decoded trees carry
// program coordinates, so the program recorded as origin is loaded on demand;
// a unit without an origin is its own source.
func sourceFor(fs *source.FileSet, pos source.Pos) *source.File {
	unit := fs.Get(pos.File)
	if unit == nil {
		return nil
	}
	if unit.Origin == "" {
		return unit
	}
	candidates := []string{unit.Origin}
	if !filepath.IsAbs(unit.Origin) {
		candidates = append(candidates, filepath.Join(filepath.Dir(unit.Path), unit.Origin))
	}
	for _, path := range candidates {
		if id, ok := fs.GetLatest(path); ok {
			return fs.Get(id)
		}
		if id, err := fs.Load(path); err == nil {
			return fs.Get(id)
		}
	}
	return nil
}

// excerpt renders the source line at pos and a caret under its column.
// Tabs in the prefix are kept so the caret lines up in a terminal; wide runes
// take their display width.
func excerpt(fs *source.FileSet, pos source.Pos, width int) []string {
	if fs == nil || !pos.IsValid() {
		return []string{unavailable}
	}
	f := sourceFor(fs, pos)
	if f == nil {
		return []string{unavailable}
	}
	line := strings.TrimRight(f.GetLine(pos.Line), "\r")
	if line == "" {
		return []string{unavailable}
	}

	var pad strings.Builder
	col := uint32(1)
	for _, r := range line {
		if col >= pos.Col {
			break
		}
		if r == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
		col++
	}
	if width > 0 && runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width, "…")
	}
	return []string{line, pad.String() + "^"}
}
