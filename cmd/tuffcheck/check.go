package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tuff/internal/diag"
	"tuff/internal/diagfmt"
	"tuff/internal/driver"
	"tuff/internal/observ"
	"tuff/internal/source"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check resolver trees for safety and ownership errors",
		Long: `Check every unit (a resolver tree, *.json) found under the given paths, or
under [units].include of tuff.toml when no path is given. Units are checked in
parallel; each failing unit reports its first diagnostic.`,
		RunE: runCheck,
	}
	f := cmd.Flags()
	f.Bool("strict", false, "demand overflow, division, bounds, null-guard and exhaustiveness proofs")
	f.Int("jobs", 0, "max parallel units (0=auto)")
	f.String("format", "pretty", "output format (pretty|short|json)")
	f.Int("max-diagnostics", 0, "maximum number of diagnostics to show (0=all)")
	f.Bool("no-cache", false, "bypass the verdict cache")
	f.String("ui", "auto", "progress view (auto|on|off)")
	f.Bool("with-notes", false, "include diagnostic notes in output")
	f.Bool("fullpath", false, "emit absolute file paths in output")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := resolveCheckSettings(cmd, args)
	if err != nil {
		return err
	}

	opts := driver.Options{
		StrictSafety: s.cfg.Check.StrictSafety,
		Jobs:         s.cfg.Check.Jobs,
		BaseDir:      s.baseDir,
	}
	if s.cacheDir != "" {
		cache, err := driver.OpenDiskCache(s.cacheDir)
		if err != nil {
			// a broken cache only costs speed
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; continuing without cache\n", err)
		} else {
			opts.Cache = cache
		}
	}
	var timer *observ.Timer
	if s.timings {
		timer = observ.NewTimer()
		opts.Timer = timer
	}

	var (
		fileSet *source.FileSet
		results []driver.UnitResult
	)
	check := func(sink driver.ProgressSink) error {
		opts.Progress = sink
		var err error
		fileSet, results, err = driver.CheckUnits(cmd.Context(), s.units, opts)
		return err
	}
	if s.ui {
		title := fmt.Sprintf("checking %d units", len(s.units))
		err = runCheckWithUI(cmd.ErrOrStderr(), title, s.units, check)
	} else {
		err = check(nil)
	}
	if err != nil {
		dumpTrace(cmd, "interrupted")
		return fmt.Errorf("check interrupted: %w", err)
	}

	bag := driver.Collect(results, s.cfg.Output.MaxDiagnostics)
	if err := render(cmd.OutOrStdout(), bag, fileSet, s); err != nil {
		return err
	}
	if timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	failed, cached := 0, 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
		if results[i].Cached {
			cached++
		}
	}
	if s.cfg.Output.Format != "json" {
		printStatus(cmd.ErrOrStderr(), s.color, len(results), failed, cached)
	}
	if failed > 0 {
		dumpTrace(cmd, "failed units")
		return errUnitsFailed
	}
	return nil
}

func render(w io.Writer, bag *diag.Bag, fileSet *source.FileSet, s *checkSettings) error {
	switch s.cfg.Output.Format {
	case "pretty":
		diagfmt.Pretty(w, bag, fileSet, diagfmt.PrettyOpts{
			Color:     s.color,
			PathMode:  s.pathMode,
			ShowNotes: s.withNotes,
		})
	case "short":
		diagfmt.Short(w, bag, fileSet, s.withNotes)
	case "json":
		if err := diagfmt.JSON(w, bag, fileSet, diagfmt.JSONOpts{
			PathMode:     s.pathMode,
			IncludeNotes: s.withNotes,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", s.cfg.Output.Format)
	}
	return nil
}

func printStatus(w io.Writer, useColor bool, total, failed, cached int) {
	paint := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	suffix := ""
	if cached > 0 {
		suffix = fmt.Sprintf(" (%d cached)", cached)
	}
	if failed == 0 {
		fmt.Fprintf(w, "%s %d %s checked%s\n", paint(color.FgGreen, color.Bold).Sprint("ok:"), total, plural(total, "unit"), suffix)
		return
	}
	fmt.Fprintf(w, "%s %d of %d %s rejected%s\n", paint(color.FgRed, color.Bold).Sprint("FAIL:"), failed, total, plural(total, "unit"), suffix)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
