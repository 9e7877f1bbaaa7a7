// Package memory provides the default in-memory storage backend: a trivial
// key/value map guarded by a mutex.
package memory

import (
	"context"
	"sync"

	"github.com/polycache/polycache/store"
)

type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
	total int64
}

var _ store.Backend = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

func (s *Store) Write(_ context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	s.mu.Lock()
	if old, ok := s.items[key]; ok {
		s.total -= int64(len(old))
	}
	s.items[key] = cp
	s.total += int64(len(cp))
	s.mu.Unlock()
	return nil
}

func (s *Store) Read(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	if old, ok := s.items[key]; ok {
		s.total -= int64(len(old))
		delete(s.items, key)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	s.items = make(map[string][]byte)
	s.total = 0
	s.mu.Unlock()
	return nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *Store) KeySize(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	n := int64(len(s.items[key]))
	s.mu.RUnlock()
	return n, nil
}

func (s *Store) TotalSize(_ context.Context) (int64, error) {
	s.mu.RLock()
	n := s.total
	s.mu.RUnlock()
	return n, nil
}

func (s *Store) Entries(_ context.Context) (map[string][]byte, error) {
	s.mu.RLock()
	out := make(map[string][]byte, len(s.items))
	for k, v := range s.items {
		cp := make([]byte, len(v))
		copy(cp, v)
		out[k] = cp
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *Store) Close(_ context.Context) error { return nil }
