package source

import (
	"sync"
	"testing"
)

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID must map to empty string, got %q ok=%v", s, ok)
	}
	id1 := interner.Intern("value")
	if id1 == NoStringID {
		t.Fatalf("Intern returned NoStringID for non-empty string")
	}
	if id2 := interner.Intern("value"); id1 != id2 {
		t.Fatalf("expected same id, got %d and %d", id1, id2)
	}
	if interner.Len() != 2 {
		t.Fatalf("expected len 2, got %d", interner.Len())
	}
	if _, ok := interner.Lookup(StringID(99)); ok {
		t.Fatalf("expected lookup of unknown id to fail")
	}
}

func TestInternerNormalizesNFC(t *testing.T) {
	interner := NewInterner()
	composed := interner.Intern("caf\u00e9")
	decomposed := interner.Intern("cafe\u0301")
	if composed != decomposed {
		t.Fatalf("expected NFC-equal names to share an id: %d vs %d", composed, decomposed)
	}
	if got := interner.MustLookup(decomposed); got != "caf\u00e9" {
		t.Fatalf("expected composed form, got %q", got)
	}
}

func TestInternerConcurrentIntern(t *testing.T) {
	interner := NewInterner()
	names := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	ids := make([][]StringID, 8)
	for g := range ids {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for _, n := range names {
				ids[g] = append(ids[g], interner.Intern(n))
			}
		}(g)
	}
	wg.Wait()

	for g := 1; g < len(ids); g++ {
		for i := range names {
			if ids[g][i] != ids[0][i] {
				t.Fatalf("goroutine %d got id %d for %q, want %d", g, ids[g][i], names[i], ids[0][i])
			}
		}
	}
}
