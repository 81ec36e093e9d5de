package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[check]\nstrict_safety = true\njobs = 2\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Load(nested)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if m.Root != root {
		t.Fatalf("root = %q, want %q", m.Root, root)
	}
	if !m.Config.Check.StrictSafety || m.Config.Check.Jobs != 2 {
		t.Fatalf("check = %+v", m.Config.Check)
	}
	// undefined keys keep their defaults
	if !m.Config.Cache.Enabled || m.Config.Output.Format != "pretty" {
		t.Fatalf("defaults lost: %+v", m.Config)
	}
	if got := m.CacheDir(); got != filepath.Join(root, ".tuff", "cache") {
		t.Fatalf("cache dir = %q", got)
	}
}

func TestLoadWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	if _, found, _ := FindManifest(filepath.Dir(dir)); found {
		t.Skip("a tuff.toml above the temp dir")
	}
	m, ok, err := Load(dir)
	if err != nil || ok || m != nil {
		t.Fatalf("expected no manifest, got ok=%v err=%v", ok, err)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[check\n", "failed to parse TOML"},
		{"unknown key", "[check]\nstrict = true\n", "unknown key check.strict"},
		{"format", "[output]\nformat = \"xml\"\n", "[output].format"},
		{"color", "[output]\ncolor = \"always\"\n", "[output].color"},
		{"jobs", "[check]\njobs = -1\n", "[check].jobs"},
		{"empty include", "[units]\ninclude = []\n", "[units].include"},
		{"empty cache dir", "[cache]\ndir = \" \"\n", "[cache].dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.body)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestIncludes(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"units/a.json", "units/b.json", "extra/c.json"} {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	m := &Manifest{Root: root, Path: filepath.Join(root, ManifestName), Config: DefaultConfig()}
	m.Config.Units.Include = []string{"units", "extra/*.json", "units"}

	got, err := m.Includes()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(root, "extra", "c.json"), filepath.Join(root, "units")}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("includes = %v, want %v", got, want)
	}

	m.Config.Units.Include = []string{"missing/*.json"}
	if _, err := m.Includes(); err == nil {
		t.Fatal("expected an error for a pattern without matches")
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteDefault(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("written manifest does not load: %v", err)
	}
	if cfg.Cache.Dir != DefaultCacheDir || cfg.Units.Include[0] != "." {
		t.Fatalf("cfg = %+v", cfg)
	}
	if _, err := WriteDefault(dir); err == nil {
		t.Fatal("expected a refusal to overwrite")
	}
}

func TestCombineIsOrderSensitive(t *testing.T) {
	a, b := Sum([]byte("a")), Sum([]byte("b"))
	if Combine(a, b) == Combine(b, a) {
		t.Fatal("combine should depend on order")
	}
	if Combine(a).IsZero() || len(Combine(a).String()) != 64 {
		t.Fatal("unexpected digest")
	}
}
