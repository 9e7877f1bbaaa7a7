package polycache

import (
	"context"
	"sort"
)

// Hook defines a cache event hook with optional priority and condition.
type Hook struct {
	// Priority determines execution order (higher values execute first).
	Priority int

	// Condition optionally filters hook execution. If nil, the hook always
	// executes; if it returns false, the hook is skipped.
	Condition func(ctx context.Context, key string) bool

	// Set exactly one of the following handlers.
	OnHit        func(ctx context.Context, key string, value any)
	OnMiss       func(ctx context.Context, key string)
	OnEvict      func(ctx context.Context, key string, value any, reason EvictReason)
	OnInvalidate func(ctx context.Context, key string)
}

// Hooks contains all registered cache event hooks. Hooks run synchronously on
// the calling goroutine and must be cheap.
type Hooks struct {
	onHit        []Hook
	onMiss       []Hook
	onEvict      []Hook
	onInvalidate []Hook
}

func NewHooks() *Hooks { return &Hooks{} }

// EvictReason indicates why an entry was removed without an explicit
// invalidation.
type EvictReason int

const (
	// EvictReasonCapacity: removed by the eviction policy under size pressure.
	EvictReasonCapacity EvictReason = iota

	// EvictReasonExpired: discarded during startup reconciliation.
	EvictReasonExpired

	// EvictReasonMalformed: persisted form could not be decoded at startup.
	EvictReasonMalformed
)

func (r EvictReason) String() string {
	switch r {
	case EvictReasonCapacity:
		return "capacity"
	case EvictReasonExpired:
		return "expired"
	case EvictReasonMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// HookOption configures a hook.
type HookOption func(*Hook)

// WithPriority sets the hook execution priority (higher values execute first).
func WithPriority(priority int) HookOption {
	return func(h *Hook) { h.Priority = priority }
}

// WithCondition sets a condition that must be true for the hook to execute.
func WithCondition(condition func(ctx context.Context, key string) bool) HookOption {
	return func(h *Hook) { h.Condition = condition }
}

// AddOnHit registers a hook that executes on cache hits.
func (h *Hooks) AddOnHit(fn func(ctx context.Context, key string, value any), opts ...HookOption) {
	hook := Hook{OnHit: fn}
	for _, opt := range opts {
		opt(&hook)
	}
	h.onHit = append(h.onHit, hook)
}

// AddOnMiss registers a hook that executes on cache misses.
func (h *Hooks) AddOnMiss(fn func(ctx context.Context, key string), opts ...HookOption) {
	hook := Hook{OnMiss: fn}
	for _, opt := range opts {
		opt(&hook)
	}
	h.onMiss = append(h.onMiss, hook)
}

// AddOnEvict registers a hook that executes when entries are evicted or
// discarded.
func (h *Hooks) AddOnEvict(fn func(ctx context.Context, key string, value any, reason EvictReason), opts ...HookOption) {
	hook := Hook{OnEvict: fn}
	for _, opt := range opts {
		opt(&hook)
	}
	h.onEvict = append(h.onEvict, hook)
}

// AddOnInvalidate registers a hook that executes when entries are explicitly
// invalidated.
func (h *Hooks) AddOnInvalidate(fn func(ctx context.Context, key string), opts ...HookOption) {
	hook := Hook{OnInvalidate: fn}
	for _, opt := range opts {
		opt(&hook)
	}
	h.onInvalidate = append(h.onInvalidate, hook)
}

func (h *Hooks) invokeOnHit(ctx context.Context, key string, value any) {
	h.invoke(h.onHit, ctx, key, func(hook Hook) { hook.OnHit(ctx, key, value) })
}

func (h *Hooks) invokeOnMiss(ctx context.Context, key string) {
	h.invoke(h.onMiss, ctx, key, func(hook Hook) { hook.OnMiss(ctx, key) })
}

func (h *Hooks) invokeOnEvict(ctx context.Context, key string, value any, reason EvictReason) {
	h.invoke(h.onEvict, ctx, key, func(hook Hook) { hook.OnEvict(ctx, key, value, reason) })
}

func (h *Hooks) invokeOnInvalidate(ctx context.Context, key string) {
	h.invoke(h.onInvalidate, ctx, key, func(hook Hook) { hook.OnInvalidate(ctx, key) })
}

// invoke executes hooks in priority order (highest first), honoring
// conditions.
func (h *Hooks) invoke(hooks []Hook, ctx context.Context, key string, execute func(Hook)) {
	if len(hooks) == 0 {
		return
	}
	if len(hooks) > 1 {
		sorted := make([]Hook, len(hooks))
		copy(sorted, hooks)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Priority > sorted[j].Priority
		})
		hooks = sorted
	}
	for _, hook := range hooks {
		if hook.Condition == nil || hook.Condition(ctx, key) {
			execute(hook)
		}
	}
}
