package polycache

import "github.com/polycache/polycache/eviction"

// Stats is a point-in-time snapshot of cache state and counters.
//
// TotalSize sums the tracked payload sizes and is not guaranteed to equal the
// backend's TotalSize, which measures serialized envelopes.
type Stats struct {
	TotalEntries   int64
	TotalSize      int64
	MaxSize        int64
	EvictionPolicy eviction.Policy

	Hits          int64
	Misses        int64
	Evictions     int64
	Invalidations int64
}

// HitRate returns the hit percentage over all reads, 0 when no reads happened.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Accessors below satisfy metrics.Stats.

func (s Stats) KeyCount() int64          { return s.TotalEntries }
func (s Stats) SizeBytes() int64         { return s.TotalSize }
func (s Stats) MaxSizeBytes() int64      { return s.MaxSize }
func (s Stats) HitCount() int64          { return s.Hits }
func (s Stats) MissCount() int64         { return s.Misses }
func (s Stats) EvictionCount() int64     { return s.Evictions }
func (s Stats) InvalidationCount() int64 { return s.Invalidations }
func (s Stats) Policy() string           { return string(s.EvictionPolicy) }
