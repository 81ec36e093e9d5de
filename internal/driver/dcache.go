package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"tuff/internal/diag"
	"tuff/internal/project"
	"tuff/internal/source"
)

// Current schema version - increment when Verdict format or checker
// semantics change.
const cacheSchemaVersion uint16 = 1

// DiskCache хранит вердикты юнитов на диске по дайджесту содержимого.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Verdict is the cached outcome of checking one unit.
type Verdict struct {
	Schema uint16
	Strict bool
	// Origin is the program path recorded in the tree, restored into the
	// FileSet on a hit so rendering does not need to decode the unit.
	Origin string

	Failed  bool
	Code    string // diag.Code ID, stable across catalogue renumbering
	Message string
	Reason  string
	Fix     string
	Line    uint32
	Col     uint32
	Notes   []CachedNote
}

type CachedNote struct {
	Line uint32
	Col  uint32
	Msg  string
}

// DefaultCacheDir returns the per-user cache location for app, used when no
// project manifest names one.
func DefaultCacheDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// OpenDiskCache initializes a disk cache rooted at dir.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// CacheKey derives the cache key of a unit: its content digest combined with
// the options that change the verdict.
func CacheKey(content project.Digest, strict bool) project.Digest {
	flags := fmt.Sprintf("schema=%d strict=%t", cacheSchemaVersion, strict)
	return project.Combine(content, project.Sum([]byte(flags)))
}

func (c *DiskCache) pathFor(key project.Digest) string {
	// Вердикты лежат в подкаталоге "units".
	return filepath.Join(c.dir, "units", key.String()+".mp")
}

// Put serializes and writes a verdict to the disk cache.
func (c *DiskCache) Put(key project.Digest, v *Verdict) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // already renamed on success

	if err := msgpack.NewEncoder(f).Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads and deserializes a verdict. A missing entry or one written by
// another schema is a miss, not an error.
func (c *DiskCache) Get(key project.Digest, out *Verdict) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	return out.Schema == cacheSchemaVersion, nil
}

// DropAll removes every cached verdict.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	// переименуем каталог, чтобы параллельный запуск не увидел полуудалённый кэш
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// newVerdict captures d (nil for an accepted unit).
func newVerdict(d *diag.Diagnostic, origin string, strict bool) *Verdict {
	v := &Verdict{Schema: cacheSchemaVersion, Strict: strict, Origin: origin}
	if d == nil {
		return v
	}
	v.Failed = true
	v.Code = d.Code.ID()
	v.Message = d.Message
	v.Reason = d.Reason
	v.Fix = d.Fix
	v.Line = d.Primary.Line
	v.Col = d.Primary.Col
	for _, n := range d.Notes {
		v.Notes = append(v.Notes, CachedNote{Line: n.Pos.Line, Col: n.Pos.Col, Msg: n.Msg})
	}
	return v
}

// Diagnostic rebuilds the cached diagnostic against unit. ok is false when
// the verdict names a code this build does not know.
func (v *Verdict) Diagnostic(unit source.FileID) (*diag.Diagnostic, bool) {
	if !v.Failed {
		return nil, true
	}
	code, ok := diag.ParseCode(v.Code)
	if !ok {
		return nil, false
	}
	d := &diag.Diagnostic{
		Severity: diag.SevError,
		Code:     code,
		Message:  v.Message,
		Reason:   v.Reason,
		Fix:      v.Fix,
		Primary:  source.Pos{File: unit, Line: v.Line, Col: v.Col},
	}
	for _, n := range v.Notes {
		d.Notes = append(d.Notes, diag.Note{Pos: source.Pos{File: unit, Line: n.Line, Col: n.Col}, Msg: n.Msg})
	}
	return d, true
}
