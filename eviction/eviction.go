// Package eviction implements the cache's eviction policies.
//
// A policy is a pure selection function over a snapshot of entry metadata: it
// never mutates state and never consults entry sizes. Selection re-scans the
// snapshot on every call; callers needing sublinear selection can layer an
// ordered structure on top, the outcome contract is ordering only.
package eviction

import "time"

// Policy selects which entry to remove when the storage budget is exceeded.
type Policy string

const (
	// LRU evicts the entry with the oldest last access time.
	LRU Policy = "lru"

	// LFU evicts the entry with the smallest access count.
	LFU Policy = "lfu"

	// FIFO evicts the entry with the oldest creation time.
	FIFO Policy = "fifo"
)

// Valid reports whether p is one of the supported policies.
func (p Policy) Valid() bool {
	switch p {
	case LRU, LFU, FIFO:
		return true
	}
	return false
}

func (p Policy) String() string { return string(p) }

// Meta is the per-entry metadata a policy selects on.
type Meta struct {
	CreatedAt      time.Time
	LastAccessedAt time.Time
	AccessCount    int64
}

// Select returns the eviction candidate for the given metadata snapshot.
// Ties break toward the lexicographically smallest key, which keeps selection
// deterministic across map iteration orders. ok is false for an empty
// snapshot.
func (p Policy) Select(index map[string]Meta) (key string, ok bool) {
	var best string
	var bestMeta Meta
	for k, m := range index {
		if !ok {
			best, bestMeta, ok = k, m, true
			continue
		}
		if p.less(m, bestMeta) || (!p.less(bestMeta, m) && k < best) {
			best, bestMeta = k, m
		}
	}
	return best, ok
}

// less reports whether a is a strictly better eviction candidate than b.
func (p Policy) less(a, b Meta) bool {
	switch p {
	case LFU:
		return a.AccessCount < b.AccessCount
	case FIFO:
		return a.CreatedAt.Before(b.CreatedAt)
	default: // LRU
		return a.LastAccessedAt.Before(b.LastAccessedAt)
	}
}
