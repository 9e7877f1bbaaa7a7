// Package polycache implements an in-process caching layer that separates
// what to cache (opaque caller values), how to persist it (a pluggable
// storage backend), and when to evict (a configurable policy).
//
// Components:
//   - keygen: derives one canonical string from a raw key, which may be a
//     plain string or an arbitrarily nested string-keyed mapping. Mapping
//     order never changes the key; sequence order does.
//   - store.Backend: byte store for serialized entries (in-memory map by
//     default; Redis and BigCache backends included).
//   - codec.Codec[V]: (de)serializes payloads (JSON by default; msgpack,
//     CBOR, protobuf included).
//   - eviction.Policy: lru, lfu, or fifo, selecting over the in-memory
//     metadata index.
//
// The manager owns the metadata index, runs the size-budgeted eviction loop
// before each write, and rebuilds the index from the backend at construction
// so access ordering survives restarts. Entries expire a fixed TTL after
// creation (per-entry TTL overrides the default); reads of expired entries
// return absent without purging them.
//
// Usage:
//
//	c, err := polycache.New[Profile](ctx, polycache.Options[Profile]{
//		MaxSize:    64 << 20,
//		DefaultTTL: 5 * time.Minute,
//		Policy:     eviction.LRU,
//	})
//	v, err := c.Get(ctx, map[string]any{"user": 42, "fields": []any{"name"}},
//		func(ctx context.Context) (Profile, error) { return loadProfile(ctx, 42) }, 0)
//
// Operations assume one coordinating caller at a time; see Cache for the
// concurrency contract.
package polycache
