package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tuff/internal/diagfmt"
	"tuff/internal/driver"
	"tuff/internal/project"
)

const appName = "tuffcheck"

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// checkSettings is the manifest merged with the command line.
type checkSettings struct {
	cfg       project.Config
	manifest  *project.Manifest // nil outside a project
	baseDir   string
	units     []string
	cacheDir  string // empty when caching is off
	color     bool
	ui        bool
	timings   bool
	withNotes bool
	pathMode  diagfmt.PathMode
}

// loadProject finds tuff.toml above the working directory.
func loadProject() (project.Config, *project.Manifest, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return project.Config{}, nil, "", err
	}
	m, ok, err := project.Load(wd)
	if err != nil {
		return project.Config{}, nil, "", err
	}
	if !ok {
		return project.DefaultConfig(), nil, wd, nil
	}
	return m.Config, m, m.Root, nil
}

// cacheDirFor picks the manifest's cache dir, or the per-user one outside a
// project.
func cacheDirFor(m *project.Manifest) (string, error) {
	if m != nil {
		return m.CacheDir(), nil
	}
	return driver.DefaultCacheDir(appName)
}

func resolveCheckSettings(cmd *cobra.Command, args []string) (*checkSettings, error) {
	cfg, m, baseDir, err := loadProject()
	if err != nil {
		return nil, err
	}
	s := &checkSettings{manifest: m, baseDir: baseDir}

	flags := cmd.Flags()
	if flags.Changed("strict") {
		if cfg.Check.StrictSafety, err = flags.GetBool("strict"); err != nil {
			return nil, fmt.Errorf("failed to get strict flag: %w", err)
		}
	}
	if flags.Changed("jobs") {
		if cfg.Check.Jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("format") {
		if cfg.Output.Format, err = flags.GetString("format"); err != nil {
			return nil, fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	if flags.Changed("max-diagnostics") {
		if cfg.Output.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	pf := cmd.Root().PersistentFlags()
	if pf.Changed("color") {
		if cfg.Output.Color, err = pf.GetString("color"); err != nil {
			return nil, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s.cfg = cfg

	if s.timings, err = pf.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return nil, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return nil, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	s.pathMode = diagfmt.PathModeRelative
	if fullPath {
		s.pathMode = diagfmt.PathModeAbsolute
	}

	stdout := cmd.OutOrStdout()
	s.color = cfg.Output.Color == "on" || (cfg.Output.Color == "auto" && isTerminal(stdout))

	uiStr, err := flags.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiStr)
	if err != nil {
		return nil, err
	}

	if s.units, err = resolveUnits(args, m); err != nil {
		return nil, err
	}
	s.ui = useUI(mode, cfg.Output.Format, len(s.units), isTerminal(cmd.ErrOrStderr()))

	if cfg.Cache.Enabled {
		if s.cacheDir, err = cacheDirFor(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// useUI: the progress view only makes sense next to human-readable output
// and for more than one unit.
func useUI(mode uiMode, format string, units int, tty bool) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return tty && format != "json" && units > 1
	}
}

func resolveUnits(args []string, m *project.Manifest) ([]string, error) {
	paths := args
	if len(paths) == 0 {
		if m == nil {
			paths = []string{"."}
		} else {
			var err error
			if paths, err = m.Includes(); err != nil {
				return nil, err
			}
		}
	}
	units, err := driver.ListUnits(paths)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("no %s units found in %s", driver.UnitExt, strings.Join(paths, ", "))
	}
	return units, nil
}

// displayPath shortens p against base for status lines.
func displayPath(base, p string) string {
	if rel, err := filepath.Rel(base, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}
