package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("unit.json", []byte("{}"), 0)
	id2 := fs.Add("unit.json", []byte("{\"kind\":\"Program\"}"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}

	latest, ok := fs.GetLatest("unit.json")
	if !ok || latest != id2 {
		t.Fatalf("expected latest id %d, got %d (ok=%v)", id2, latest, ok)
	}
	// старая версия остаётся доступной
	if got := string(fs.Get(id1).Content); got != "{}" {
		t.Fatalf("unexpected first content %q", got)
	}
	if fs.Get(FileID(42)) != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("virtual.json", []byte("first\nsecond\n\nfourth"))
	f := fs.Get(id)

	cases := map[uint32]string{0: "", 1: "first", 2: "second", 3: "", 4: "fourth", 5: ""}
	for line, want := range cases {
		if got := f.GetLine(line); got != want {
			t.Errorf("line %d: want %q, got %q", line, want, got)
		}
	}
	if f.Flags&FileVirtual == 0 {
		t.Errorf("expected FileVirtual flag")
	}
}

func TestLoadNormalizesBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.json")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\r\n")...)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
}

func TestDisplayPathPrefersOrigin(t *testing.T) {
	fs := NewFileSet()
	fs.SetBaseDir("/work")
	id := fs.Add("/work/out/main.json", nil, 0)
	if got := fs.DisplayPath(id, "relative"); got != "out/main.json" {
		t.Fatalf("expected relative unit path, got %q", got)
	}
	fs.SetOrigin(id, "src/main.tuff")
	if got := fs.DisplayPath(id, "relative"); got != "src/main.tuff" {
		t.Fatalf("expected origin path, got %q", got)
	}
}

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "other", "file.json")

	got, err := RelativePath(target, filepath.Join(tmp, "base"))
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := normalizePath(target); got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}
