package polycache

import (
	"context"
	"fmt"
	"strings"
	"time"

	cc "github.com/polycache/polycache/codec"
	"github.com/polycache/polycache/entry"
	ev "github.com/polycache/polycache/eviction"
	"github.com/polycache/polycache/keygen"
	"github.com/polycache/polycache/metrics"
	st "github.com/polycache/polycache/store"
	"github.com/polycache/polycache/store/memory"
)

const defaultTTL = 5 * time.Minute

type cache[V any] struct {
	store  st.Backend
	codec  cc.Codec[V]
	log    Logger
	hooks  *Hooks
	policy ev.Policy

	maxSize    int64
	defaultTTL time.Duration

	// index is the authoritative in-memory metadata index. The single-owner
	// model applies: no internal locking, one coordinating caller at a time.
	index map[string]*entry.Entry[V]

	hits          int64
	misses        int64
	evictions     int64
	invalidations int64

	exporter metrics.Exporter

	now func() time.Time
}

func newCache[V any](ctx context.Context, opts Options[V]) (*cache[V], error) {
	if opts.MaxSize <= 0 {
		return nil, fmt.Errorf("polycache: MaxSize must be positive, got %d", opts.MaxSize)
	}
	policy := coalesce[ev.Policy](opts.Policy, ev.LRU)
	if !policy.Valid() {
		return nil, fmt.Errorf("polycache: unknown eviction policy %q", policy)
	}

	c := &cache[V]{
		maxSize:    opts.MaxSize,
		defaultTTL: coalesce[time.Duration](opts.DefaultTTL, defaultTTL),
		policy:     policy,
		hooks:      opts.Hooks,
		exporter:   opts.Metrics,
		index:      make(map[string]*entry.Entry[V]),
		now:        time.Now,
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})

	if opts.Codec != nil {
		c.codec = opts.Codec
	} else {
		c.codec = cc.JSON[V]{}
	}
	if opts.Store != nil {
		c.store = opts.Store
	} else {
		c.store = memory.New()
	}

	if err := c.reconcile(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// reconcile rebuilds the metadata index from the backend. Expired and
// malformed entries are deleted and skipped; everything else is admitted with
// its persisted access metadata.
func (c *cache[V]) reconcile(ctx context.Context) error {
	all, err := c.store.Entries(ctx)
	if err != nil {
		return &StorageError{Op: "entries", Err: err}
	}
	now := c.now()
	admitted := 0
	for key, raw := range all {
		e, err := entry.Decode[V](raw, c.codec.Decode)
		if err != nil {
			c.log.Warn("discarding malformed persisted entry", Fields{"key": key})
			if derr := c.store.Delete(ctx, key); derr != nil {
				return &StorageError{Op: "delete", Key: key, Err: derr}
			}
			if c.hooks != nil {
				c.hooks.invokeOnEvict(ctx, key, nil, EvictReasonMalformed)
			}
			continue
		}
		if e.ExpiredAt(c.defaultTTL, now) {
			if derr := c.store.Delete(ctx, key); derr != nil {
				return &StorageError{Op: "delete", Key: key, Err: derr}
			}
			if c.hooks != nil {
				c.hooks.invokeOnEvict(ctx, key, e.Value, EvictReasonExpired)
			}
			continue
		}
		c.index[key] = e
		admitted++
	}
	if len(all) > 0 {
		c.log.Debug("reconciled persisted entries", Fields{
			"persisted": len(all), "admitted": admitted,
		})
	}
	return nil
}

func (c *cache[V]) Set(ctx context.Context, key any, value V, ttl time.Duration) error {
	ck, err := keygen.Canonicalize(key)
	if err != nil {
		return err
	}
	return c.set(ctx, ck, value, ttl)
}

func (c *cache[V]) set(ctx context.Context, ck string, value V, ttl time.Duration) error {
	data, err := c.codec.Encode(value)
	if err != nil {
		// Sizing must never fail the call: fall back to the value's string
		// form. Such an entry cannot round-trip through the codec; a later
		// read self-heals it as malformed.
		data = []byte(fmt.Sprint(value))
		c.log.Warn("payload not serializable, using string-form size estimate", Fields{
			"key": ck, "err": err.Error(),
		})
	}
	size := int64(len(data))

	if err := c.evictForAdmission(ctx, size); err != nil {
		return err
	}

	e := entry.New(value, data, size, ttl, c.now())
	c.index[ck] = e

	raw, err := entry.Encode(e)
	if err != nil {
		return fmt.Errorf("polycache: encode entry %q: %w", ck, err)
	}
	if err := c.store.Write(ctx, ck, raw); err != nil {
		return &StorageError{Op: "write", Key: ck, Err: err}
	}
	return nil
}

// evictForAdmission runs the pre-insert eviction loop: while the backend's
// aggregate size plus the incoming payload exceeds the budget, remove the
// policy's candidate. Once the index is empty the entry is admitted even if
// it alone exceeds the budget.
func (c *cache[V]) evictForAdmission(ctx context.Context, incoming int64) error {
	for len(c.index) > 0 {
		total, err := c.store.TotalSize(ctx)
		if err != nil {
			return &StorageError{Op: "totalSize", Err: err}
		}
		if total+incoming <= c.maxSize {
			return nil
		}
		victim, ok := c.policy.Select(c.metaSnapshot())
		if !ok {
			return nil
		}
		value := c.index[victim].Value
		if err := c.remove(ctx, victim); err != nil {
			return err
		}
		c.evictions++
		if c.hooks != nil {
			c.hooks.invokeOnEvict(ctx, victim, value, EvictReasonCapacity)
		}
		c.log.Debug("evicted entry under size pressure", Fields{
			"key": victim, "policy": c.policy.String(),
		})
	}
	return nil
}

func (c *cache[V]) metaSnapshot() map[string]ev.Meta {
	out := make(map[string]ev.Meta, len(c.index))
	for k, e := range c.index {
		out[k] = ev.Meta{
			CreatedAt:      e.CreatedAt,
			LastAccessedAt: e.LastAccessedAt,
			AccessCount:    e.AccessCount,
		}
	}
	return out
}

// remove applies full invalidate semantics: drop from the index, then from
// the backend.
func (c *cache[V]) remove(ctx context.Context, ck string) error {
	delete(c.index, ck)
	if err := c.store.Delete(ctx, ck); err != nil {
		return &StorageError{Op: "delete", Key: ck, Err: err}
	}
	return nil
}

func (c *cache[V]) GetIfPresent(ctx context.Context, key any) (V, bool, error) {
	var zero V
	ck, err := keygen.Canonicalize(key)
	if err != nil {
		return zero, false, err
	}
	return c.getByCanonical(ctx, ck)
}

func (c *cache[V]) getByCanonical(ctx context.Context, ck string) (V, bool, error) {
	var zero V
	now := c.now()
	e, ok := c.index[ck]
	if !ok || e.ExpiredAt(c.defaultTTL, now) {
		// Expired entries read as absent but stay put until overwritten,
		// evicted, or invalidated.
		c.misses++
		if c.hooks != nil {
			c.hooks.invokeOnMiss(ctx, ck)
		}
		return zero, false, nil
	}

	e.Touch(now)
	raw, err := entry.Encode(e)
	if err != nil {
		return zero, false, fmt.Errorf("polycache: encode entry %q: %w", ck, err)
	}
	if err := c.store.Write(ctx, ck, raw); err != nil {
		return zero, false, &StorageError{Op: "write", Key: ck, Err: err}
	}

	c.hits++
	if c.hooks != nil {
		c.hooks.invokeOnHit(ctx, ck, e.Value)
	}
	return e.Value, true, nil
}

func (c *cache[V]) Get(ctx context.Context, key any, fetch FetchFunc[V], ttl time.Duration) (V, error) {
	var zero V
	ck, err := keygen.Canonicalize(key)
	if err != nil {
		return zero, err
	}
	v, ok, err := c.getByCanonical(ctx, ck)
	if err != nil || ok {
		return v, err
	}

	v, err = fetch(ctx)
	if err != nil {
		// fetch failures propagate untouched; nothing is written
		return zero, err
	}
	if err := c.set(ctx, ck, v, ttl); err != nil {
		return v, err
	}
	return v, nil
}

func (c *cache[V]) Has(key any) (bool, error) {
	ck, err := keygen.Canonicalize(key)
	if err != nil {
		return false, err
	}
	_, ok := c.index[ck]
	return ok, nil
}

func (c *cache[V]) GetMany(ctx context.Context, keys []any) (map[string]V, error) {
	out := make(map[string]V, len(keys))
	for _, key := range keys {
		ck, err := keygen.Canonicalize(key)
		if err != nil {
			return nil, err
		}
		v, ok, err := c.getByCanonical(ctx, ck)
		if err != nil {
			return nil, err
		}
		if ok {
			out[ck] = v
		}
	}
	return out, nil
}

func (c *cache[V]) SetMany(ctx context.Context, items []Item[V]) error {
	for _, it := range items {
		if err := c.Set(ctx, it.Key, it.Value, it.TTL); err != nil {
			return err
		}
	}
	return nil
}

func (c *cache[V]) Invalidate(ctx context.Context, key any) error {
	ck, err := keygen.Canonicalize(key)
	if err != nil {
		return err
	}
	if _, ok := c.index[ck]; ok {
		c.invalidations++
	}
	if err := c.remove(ctx, ck); err != nil {
		return err
	}
	if c.hooks != nil {
		c.hooks.invokeOnInvalidate(ctx, ck)
	}
	return nil
}

func (c *cache[V]) InvalidatePattern(ctx context.Context, prefix string) error {
	if prefix == "" {
		// guard against wiping the whole cache through an empty prefix
		c.log.Warn("ignoring invalidatePattern with empty prefix", nil)
		return nil
	}

	// snapshot first so the index is not mutated mid-iteration
	var matched []string
	for k := range c.index {
		if strings.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	for _, k := range matched {
		if err := c.remove(ctx, k); err != nil {
			return err
		}
		c.invalidations++
		if c.hooks != nil {
			c.hooks.invokeOnInvalidate(ctx, k)
		}
	}
	if len(matched) > 0 {
		c.log.Debug("invalidated entries by prefix", Fields{
			"prefix": prefix, "removed": len(matched),
		})
	}
	return nil
}

func (c *cache[V]) Clear(ctx context.Context) error {
	n := int64(len(c.index))
	c.index = make(map[string]*entry.Entry[V])
	if err := c.store.Clear(ctx); err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	c.invalidations += n
	return nil
}

func (c *cache[V]) Stats() Stats {
	var total int64
	for _, e := range c.index {
		total += e.Size
	}
	return Stats{
		TotalEntries:   int64(len(c.index)),
		TotalSize:      total,
		MaxSize:        c.maxSize,
		EvictionPolicy: c.policy,
		Hits:           c.hits,
		Misses:         c.misses,
		Evictions:      c.evictions,
		Invalidations:  c.invalidations,
	}
}

func (c *cache[V]) ReportStats() {
	if c.exporter == nil {
		return
	}
	if err := c.exporter.ExportStats(c.Stats()); err != nil {
		c.log.Warn("stats export failed", Fields{"err": err.Error()})
	}
}

func (c *cache[V]) Close(ctx context.Context) error {
	c.ReportStats()
	if c.exporter != nil {
		_ = c.exporter.Close()
	}
	if err := c.store.Close(ctx); err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	return nil
}
