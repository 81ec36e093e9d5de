package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultCacheDir is the cache location relative to the project root.
const DefaultCacheDir = ".tuff/cache"

// Manifest is a loaded tuff.toml together with the directory it governs.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the tables of tuff.toml.
type Config struct {
	Check  CheckConfig  `toml:"check"`
	Output OutputConfig `toml:"output"`
	Cache  CacheConfig  `toml:"cache"`
	Units  UnitsConfig  `toml:"units"`
}

type CheckConfig struct {
	StrictSafety bool `toml:"strict_safety"`
	Jobs         int  `toml:"jobs"` // 0 = GOMAXPROCS
}

type OutputConfig struct {
	Format         string `toml:"format"` // pretty|short|json
	Color          string `toml:"color"`  // auto|on|off
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type UnitsConfig struct {
	// Include lists directories or glob patterns relative to the root.
	Include []string `toml:"include"`
}

// DefaultConfig is what an absent or empty manifest means.
func DefaultConfig() Config {
	return Config{
		Output: OutputConfig{Format: "pretty", Color: "auto"},
		Cache:  CacheConfig{Enabled: true, Dir: DefaultCacheDir},
		Units:  UnitsConfig{Include: []string{"."}},
	}
}

var (
	outputFormats = []string{"pretty", "short", "json"}
	colorModes    = []string{"auto", "on", "off"}
)

// Load finds tuff.toml above startDir and decodes it. ok is false when no
// manifest exists; the caller then runs with DefaultConfig.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes path on top of DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("units", "include") && len(cfg.Units.Include) == 0 {
		return Config{}, fmt.Errorf("%s: [units].include must not be empty", path)
	}
	if meta.IsDefined("cache", "dir") && strings.TrimSpace(cfg.Cache.Dir) == "" {
		return Config{}, fmt.Errorf("%s: [cache].dir must not be empty", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that can also come from flags.
func (c Config) Validate() error {
	if c.Check.Jobs < 0 {
		return fmt.Errorf("[check].jobs must be >= 0, got %d", c.Check.Jobs)
	}
	if !slices.Contains(outputFormats, c.Output.Format) {
		return fmt.Errorf("[output].format must be one of %s, got %q", strings.Join(outputFormats, "|"), c.Output.Format)
	}
	if !slices.Contains(colorModes, c.Output.Color) {
		return fmt.Errorf("[output].color must be one of %s, got %q", strings.Join(colorModes, "|"), c.Output.Color)
	}
	if c.Output.MaxDiagnostics < 0 {
		return fmt.Errorf("[output].max_diagnostics must be >= 0, got %d", c.Output.MaxDiagnostics)
	}
	return nil
}

// CacheDir resolves the cache directory against the root.
func (m *Manifest) CacheDir() string {
	dir := m.Config.Cache.Dir
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(m.Root, filepath.FromSlash(dir))
}

// Includes expands [units].include into existing paths: directories are
// returned as is, patterns through filepath.Glob. The result is sorted and
// has no duplicates.
func (m *Manifest) Includes() ([]string, error) {
	var out []string
	for _, pattern := range m.Config.Units.Include {
		full := filepath.Join(m.Root, filepath.FromSlash(pattern))
		if info, err := os.Stat(full); err == nil && info.IsDir() {
			out = append(out, full)
			continue
		}
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("%s: bad [units].include pattern %q: %w", m.Path, pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: [units].include pattern %q matches nothing", m.Path, pattern)
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// WriteDefault creates dir/tuff.toml with DefaultConfig. It refuses to
// overwrite an existing manifest.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("project already initialized: %s exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(DefaultConfig()); err != nil {
		return "", fmt.Errorf("%s: failed to encode TOML: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
