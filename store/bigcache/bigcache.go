// Package bigcache implements the storage backend on top of allegro/bigcache.
//
// BigCache only supports a global life window, so the store is configured with
// a long window and the cache manager keeps full ownership of expiry. Key
// enumeration goes through bigcache's iterator.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/polycache/polycache/store"
)

// retention keeps entries alive far beyond any sane cache TTL; the manager
// deletes entries itself.
const retention = 30 * 24 * time.Hour

type Store struct {
	c *bc.BigCache
}

var _ store.Backend = (*Store)(nil)

type Config struct {
	Shards             int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // memory ceiling; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	conf := bc.DefaultConfig(retention)
	conf.CleanWindow = 0 // manager owns deletion
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Write(_ context.Context, key string, value []byte) error {
	return s.c.Set(key, value)
}

func (s *Store) Read(_ context.Context, key string) ([]byte, bool, error) {
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (s *Store) Delete(_ context.Context, key string) error {
	err := s.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (s *Store) Clear(_ context.Context) error {
	return s.c.Reset()
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	it := s.c.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			continue // entry removed mid-iteration
		}
		keys = append(keys, info.Key())
	}
	return keys, nil
}

func (s *Store) KeySize(_ context.Context, key string) (int64, error) {
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

func (s *Store) TotalSize(_ context.Context) (int64, error) {
	var total int64
	it := s.c.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			continue
		}
		total += int64(len(info.Value()))
	}
	return total, nil
}

func (s *Store) Entries(_ context.Context) (map[string][]byte, error) {
	out := make(map[string][]byte)
	it := s.c.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			continue
		}
		v := info.Value()
		cp := make([]byte, len(v))
		copy(cp, v)
		out[info.Key()] = cp
	}
	return out, nil
}

func (s *Store) Close(_ context.Context) error {
	return s.c.Close()
}
