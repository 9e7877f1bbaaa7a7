package polycache

import (
	"context"
	"strings"
	"testing"
)

func TestHookPriorityOrder(t *testing.T) {
	var order []string
	hooks := NewHooks()
	hooks.AddOnHit(func(ctx context.Context, key string, value any) {
		order = append(order, "low")
	}, WithPriority(1))
	hooks.AddOnHit(func(ctx context.Context, key string, value any) {
		order = append(order, "high")
	}, WithPriority(10))
	hooks.AddOnHit(func(ctx context.Context, key string, value any) {
		order = append(order, "default")
	})

	hooks.invokeOnHit(context.Background(), "k", "v")

	want := []string{"high", "low", "default"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestHookCondition(t *testing.T) {
	var seen []string
	hooks := NewHooks()
	hooks.AddOnInvalidate(func(ctx context.Context, key string) {
		seen = append(seen, key)
	}, WithCondition(func(ctx context.Context, key string) bool {
		return strings.HasPrefix(key, "user:")
	}))

	ctx := context.Background()
	hooks.invokeOnInvalidate(ctx, "user:1")
	hooks.invokeOnInvalidate(ctx, "post:1")
	hooks.invokeOnInvalidate(ctx, "user:2")

	if len(seen) != 2 || seen[0] != "user:1" || seen[1] != "user:2" {
		t.Fatalf("seen = %v, want only user-prefixed keys", seen)
	}
}

func TestEvictReasonString(t *testing.T) {
	cases := map[EvictReason]string{
		EvictReasonCapacity:  "capacity",
		EvictReasonExpired:   "expired",
		EvictReasonMalformed: "malformed",
		EvictReason(99):      "unknown",
	}
	for reason, want := range cases {
		if got := reason.String(); got != want {
			t.Errorf("EvictReason(%d).String() = %q, want %q", reason, got, want)
		}
	}
}
