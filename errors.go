package polycache

import (
	"fmt"

	"github.com/polycache/polycache/keygen"
)

// ErrInvalidKey is returned when a raw key is neither a string nor a
// string-keyed mapping. It aliases keygen.ErrInvalidKey so callers can match
// it without importing the keygen package.
var ErrInvalidKey = keygen.ErrInvalidKey

// StorageError wraps a storage backend failure with the operation and key
// that triggered it. Backend failures always propagate to the caller of the
// cache operation that caused them.
type StorageError struct {
	Op  string // backend operation: "write", "delete", "clear", ...
	Key string // canonical key, empty for whole-store operations
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("polycache: storage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("polycache: storage %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
