package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const divUnit = `{"kind":"Program","file":"div.tuff","body":[
	{"kind":"FnDecl","name":"f","loc":{"line":1,"column":1},
	 "params":[{"name":"x","type":{"kind":"NamedType","name":"I32"}}],
	 "returnType":{"kind":"NamedType","name":"I32"},
	 "body":{"kind":"BinaryExpr","op":"/","loc":{"line":2,"column":3},
		"left":{"kind":"NumberLiteral","value":100,"loc":{"line":2,"column":3}},
		"right":{"kind":"Identifier","name":"x","loc":{"line":2,"column":9}}}}]}`

func invoke(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// newProject creates a project with one accepted and one rejected-in-strict
// unit and makes it the working directory.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ok, err := os.ReadFile("testdata/ok.json")
	if err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	if _, _, err := invoke(t, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	for name, body := range map[string][]byte{"ok.json": ok, "div.json": []byte(divUnit)} {
		if err := os.WriteFile(filepath.Join(dir, name), body, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestCheckStrictJSON(t *testing.T) {
	newProject(t)
	stdout, _, err := invoke(t, "check", "--strict", "--format", "json", "--ui", "off")
	if !errors.Is(err, errUnitsFailed) {
		t.Fatalf("err = %v", err)
	}
	var out struct {
		Count       int `json:"count"`
		Diagnostics []struct {
			Code     string `json:"code"`
			Location struct {
				Line uint32 `json:"line"`
			} `json:"location"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if out.Count != 1 || out.Diagnostics[0].Code != "E_SAFETY_DIV_BY_ZERO" || out.Diagnostics[0].Location.Line != 2 {
		t.Fatalf("output = %+v", out)
	}
}

func TestCheckUsesCache(t *testing.T) {
	newProject(t)
	if _, _, err := invoke(t, "check", "--strict", "--ui", "off"); !errors.Is(err, errUnitsFailed) {
		t.Fatalf("first run: %v", err)
	}
	stdout, stderr, err := invoke(t, "check", "--strict", "--format", "short", "--ui", "off")
	if !errors.Is(err, errUnitsFailed) {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(stdout, "E_SAFETY_DIV_BY_ZERO") {
		t.Fatalf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "FAIL: 1 of 2 units rejected (2 cached)") {
		t.Fatalf("stderr = %q", stderr)
	}

	stdout, _, err = invoke(t, "cache", "clean")
	if err != nil {
		t.Fatal(err)
	}
	if want := "removed " + filepath.FromSlash(".tuff/cache"); !strings.Contains(stdout, want) {
		t.Fatalf("cache clean = %q", stdout)
	}
	_, stderr, _ = invoke(t, "check", "--strict", "--ui", "off")
	if strings.Contains(stderr, "cached") {
		t.Fatalf("verdicts survived cache clean: %q", stderr)
	}
}

func TestCheckRelaxedPasses(t *testing.T) {
	newProject(t)
	_, stderr, err := invoke(t, "check", "--no-cache", "--ui", "off")
	if err != nil {
		t.Fatalf("err = %v (%s)", err, stderr)
	}
	if !strings.Contains(stderr, "ok: 2 units checked") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestCheckNoUnits(t *testing.T) {
	chdir(t, t.TempDir())
	_, stderr, err := invoke(t, "check", "--no-cache")
	if err == nil || errors.Is(err, errUnitsFailed) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(stderr, "no .json units found") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	dir := newProject(t)
	if _, err := os.Stat(filepath.Join(dir, "tuff.toml")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := invoke(t, "init"); err == nil {
		t.Fatal("second init succeeded")
	}
	stdout, _, err := invoke(t, "init", "nested")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, filepath.Join("nested", "tuff.toml")) {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestDump(t *testing.T) {
	newProject(t)
	stdout, _, err := invoke(t, "dump", "ok.json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "Program examples/safe_div.tuff\n") {
		t.Fatalf("dump = %q", stdout)
	}

	if err := os.WriteFile("bad.json", []byte(`{"kind":`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, stderr, err := invoke(t, "dump", "bad.json")
	if !errors.Is(err, errUnitsFailed) || !strings.Contains(stderr, "E_INPUT_MALFORMED") {
		t.Fatalf("err = %v, stderr = %q", err, stderr)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := invoke(t, "version", "--format", "json", "--full")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != appName || payload.Version == "" || payload.GitCommit == "" {
		t.Fatalf("payload = %+v", payload)
	}

	stdout, _, err = invoke(t, "version", "--color", "off")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "tuffcheck ") {
		t.Fatalf("pretty = %q", stdout)
	}
	if _, _, err := invoke(t, "version", "--format", "xml"); err == nil {
		t.Fatal("unsupported format accepted")
	}
}

func TestUseUI(t *testing.T) {
	tests := []struct {
		mode   uiMode
		format string
		units  int
		tty    bool
		want   bool
	}{
		{uiModeAuto, "pretty", 3, true, true},
		{uiModeAuto, "json", 3, true, false},
		{uiModeAuto, "pretty", 1, true, false},
		{uiModeAuto, "pretty", 3, false, false},
		{uiModeOn, "json", 1, false, true},
		{uiModeOff, "pretty", 3, true, false},
	}
	for _, tt := range tests {
		if got := useUI(tt.mode, tt.format, tt.units, tt.tty); got != tt.want {
			t.Errorf("useUI(%s, %s, %d, %v) = %v", tt.mode, tt.format, tt.units, tt.tty, got)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("invalid ui mode accepted")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
