package eviction

import (
	"testing"
	"time"
)

func TestPolicyValid(t *testing.T) {
	for _, p := range []Policy{LRU, LFU, FIFO} {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if Policy("mru").Valid() {
		t.Error("unknown policy must not validate")
	}
}

func TestSelectEmpty(t *testing.T) {
	if _, ok := LRU.Select(nil); ok {
		t.Fatal("empty snapshot must not yield a candidate")
	}
}

func TestLRUSelectsOldestAccess(t *testing.T) {
	base := time.Now()
	idx := map[string]Meta{
		"a": {CreatedAt: base, LastAccessedAt: base.Add(3 * time.Second), AccessCount: 1},
		"b": {CreatedAt: base, LastAccessedAt: base.Add(1 * time.Second), AccessCount: 9},
		"c": {CreatedAt: base, LastAccessedAt: base.Add(2 * time.Second), AccessCount: 1},
	}
	if k, _ := LRU.Select(idx); k != "b" {
		t.Fatalf("LRU should pick least recently accessed, got %q", k)
	}
}

func TestLFUSelectsSmallestCount(t *testing.T) {
	base := time.Now()
	idx := map[string]Meta{
		"hot":  {CreatedAt: base, LastAccessedAt: base, AccessCount: 50},
		"warm": {CreatedAt: base, LastAccessedAt: base.Add(time.Hour), AccessCount: 5},
		"cold": {CreatedAt: base, LastAccessedAt: base.Add(2 * time.Hour), AccessCount: 1},
	}
	if k, _ := LFU.Select(idx); k != "cold" {
		t.Fatalf("LFU should pick smallest access count, got %q", k)
	}
	// LFU must never pick an entry with strictly higher count while a
	// lower-count entry exists.
	delete(idx, "cold")
	if k, _ := LFU.Select(idx); k != "warm" {
		t.Fatalf("LFU picked %q over lower-count entry", k)
	}
}

func TestFIFOSelectsOldestCreation(t *testing.T) {
	base := time.Now()
	idx := map[string]Meta{
		"third":  {CreatedAt: base.Add(2 * time.Second), LastAccessedAt: base, AccessCount: 1},
		"first":  {CreatedAt: base, LastAccessedAt: base.Add(time.Hour), AccessCount: 99},
		"second": {CreatedAt: base.Add(time.Second), LastAccessedAt: base, AccessCount: 1},
	}
	order := []string{"first", "second", "third"}
	for _, want := range order {
		k, ok := FIFO.Select(idx)
		if !ok || k != want {
			t.Fatalf("FIFO order: got %q want %q", k, want)
		}
		delete(idx, k)
	}
}

func TestTieBreakIsDeterministic(t *testing.T) {
	base := time.Now()
	idx := map[string]Meta{
		"z": {CreatedAt: base, LastAccessedAt: base, AccessCount: 1},
		"a": {CreatedAt: base, LastAccessedAt: base, AccessCount: 1},
		"m": {CreatedAt: base, LastAccessedAt: base, AccessCount: 1},
	}
	for _, p := range []Policy{LRU, LFU, FIFO} {
		for i := 0; i < 10; i++ {
			if k, _ := p.Select(idx); k != "a" {
				t.Fatalf("%s tie-break must be lexicographic, got %q", p, k)
			}
		}
	}
}
