package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tuff/internal/diag"
	"tuff/internal/source"
)

type palette struct {
	code, where, label, caret, note func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		code:  mk(color.FgRed, color.Bold),
		where: mk(color.FgCyan),
		label: mk(color.Bold),
		caret: mk(color.FgRed),
		note:  mk(color.FgBlue),
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
//
//	<CODE> <path>:<line>:<col>
//	  source: строка исходника и ^ под колонкой
//	  cause / reason / fix
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writePretty(w, d, fs, opts, p)
	}
}

func writePretty(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	fmt.Fprintf(w, "%s %s\n", p.code(d.Code.ID()), p.where(where(fs, d.Primary, opts.PathMode)))

	fmt.Fprintf(w, "  %s\n", p.label("source:"))
	lines := excerpt(fs, d.Primary, int(opts.Width))
	for i, line := range lines {
		if i == 1 {
			line = p.caret(line)
		}
		fmt.Fprintf(w, "    %s\n", line)
	}
	section(w, p, "cause:", d.Message)
	section(w, p, "reason:", d.Reason)
	section(w, p, "fix:", d.Fix)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note("note"), where(fs, n.Pos, opts.PathMode), n.Msg)
		}
	}
}

func section(w io.Writer, p palette, label, body string) {
	fmt.Fprintf(w, "  %s\n", p.label(label))
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

// where renders "<path>:<line>:<col>", or "<unknown>" for a position the
// resolver did not record.
func where(fs *source.FileSet, pos source.Pos, mode PathMode) string {
	if !pos.IsValid() {
		return "<unknown>"
	}
	path := "<memory>"
	if fs != nil {
		path = fs.DisplayPath(pos.File, mode.String())
	}
	return fmt.Sprintf("%s:%d:%d", path, pos.Line, pos.Col)
}

// Short prints one line per diagnostic, the format golden files use.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) {
	if out := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes); out != "" {
		fmt.Fprintln(w, out)
	}
}
