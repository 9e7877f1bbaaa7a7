package polycache

import (
	"context"
	"time"

	cc "github.com/polycache/polycache/codec"
	ev "github.com/polycache/polycache/eviction"
	"github.com/polycache/polycache/metrics"
	st "github.com/polycache/polycache/store"
)

// FetchFunc loads a value on a cache miss. It runs exactly once per missed
// Get call; a failure propagates to the caller and nothing is written.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Item is one element of a SetMany batch.
type Item[V any] struct {
	Key   any           // raw key: string or string-keyed mapping
	Value V
	TTL   time.Duration // 0 means "use the cache default"
}

// Cache is the public cache API. V is the caller's value type; serialization
// is handled by a pluggable Codec[V].
//
// Raw keys are either plain strings or string-keyed mappings (see keygen);
// anything else fails with ErrInvalidKey. Bulk results are keyed by canonical
// key.
//
// The cache assumes a single coordinating caller at a time: no internal
// locking protects the metadata index, and concurrent Gets racing on the same
// key may fetch twice or lose an update. Backends handle their own
// concurrency.
type Cache[V any] interface {
	// Set writes a value, evicting unrelated entries first if the backend's
	// size budget would be exceeded. ttl=0 uses the default.
	Set(ctx context.Context, key any, value V, ttl time.Duration) error

	// GetIfPresent returns the value when present and unexpired. Expired
	// entries read as absent but are not purged.
	GetIfPresent(ctx context.Context, key any) (v V, ok bool, err error)

	// Get is GetIfPresent with fetch-through: on absent-or-expired it invokes
	// fetch once, stores the result under ttl, and returns it.
	Get(ctx context.Context, key any, fetch FetchFunc[V], ttl time.Duration) (V, error)

	// Has reports bare existence in the metadata index. It ignores expiry and
	// mutates nothing - intentionally weaker than GetIfPresent.
	Has(key any) (bool, error)

	// GetMany applies GetIfPresent per key, sequentially and independently;
	// absent-or-expired keys are omitted from the result.
	GetMany(ctx context.Context, keys []any) (map[string]V, error)

	// SetMany applies Set per item, sequentially and independently. No
	// cross-batch atomicity.
	SetMany(ctx context.Context, items []Item[V]) error

	// Invalidate removes one entry. Idempotent.
	Invalidate(ctx context.Context, key any) error

	// InvalidatePattern removes every entry whose canonical key has the given
	// prefix. An empty prefix is a guarded no-op.
	InvalidatePattern(ctx context.Context, prefix string) error

	// Clear removes everything.
	Clear(ctx context.Context) error

	// Stats returns a snapshot of entry counts, tracked sizes, and counters.
	Stats() Stats

	// ReportStats pushes the current snapshot to the configured metrics
	// exporter, if any.
	ReportStats()

	// Close exports final stats and releases the backend.
	Close(ctx context.Context) error
}

// Options tune the cache. Only MaxSize is required; others have sensible
// defaults.
type Options[V any] struct {
	// Required
	MaxSize int64 // storage byte budget, must be positive

	DefaultTTL time.Duration    // 0 => 5m
	Policy     ev.Policy        // "" => eviction.LRU
	Store      st.Backend       // nil => in-memory map store
	Codec      cc.Codec[V]      // nil => codec.JSON[V]
	Logger     Logger           // nil => NopLogger
	Hooks      *Hooks           // nil => no hooks
	Metrics    metrics.Exporter // nil => no metrics
}

// New builds a cache and reconciles its metadata index from the backend:
// persisted entries that are expired or malformed as of construction time are
// deleted; the rest are admitted with their persisted access metadata, so
// LRU/LFU ordering survives a restart.
func New[V any](ctx context.Context, opts Options[V]) (Cache[V], error) {
	return newCache[V](ctx, opts)
}
