// Package store defines the storage backend abstraction the cache persists to.
//
// Implementations MUST be byte-for-byte transparent: Read must return exactly
// the same []byte previously passed to Write for a key. Backends never inspect
// or track entry expiry; TTL semantics live entirely in the cache manager and
// its persisted envelopes.
//
// Backends are responsible for their own internal concurrency; the manager
// treats every call as atomic and serialized from its perspective.
package store

import "context"

// Backend is a minimal byte store keyed by canonical cache keys.
type Backend interface {
	// Write stores a serialized entry, overwriting any prior value.
	Write(ctx context.Context, key string, value []byte) error

	// Read returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Read(ctx context.Context, key string) ([]byte, bool, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Keys returns all stored keys.
	Keys(ctx context.Context) ([]string, error)

	// KeySize returns the stored byte length for a key, 0 if absent.
	KeySize(ctx context.Context, key string) (int64, error)

	// TotalSize returns the sum of stored byte lengths over all entries.
	TotalSize(ctx context.Context) (int64, error)

	// Entries returns every stored key with its serialized value. Used only
	// for startup reconciliation; implementations may make it expensive.
	Entries(ctx context.Context) (map[string][]byte, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
