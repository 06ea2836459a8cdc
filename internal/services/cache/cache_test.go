package cache

import (
	"context"
	"testing"
	"time"

	"github.com/buildwise-ai/buildwise/internal/models"
)

func testResult() models.MethodResult {
	return models.MethodResult{
		Description:        "generic fence method",
		Steps:              []string{"dig", "set", "nail"},
		RequiredSkillLevel: 3,
		EstimatedTime:      12,
	}
}

func newTestCache(t *testing.T, ttlSeconds int64) (*TieredCache, *time.Time) {
	t.Helper()
	store, err := NewMemoryStore(16)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	tc := New(store, nil, ttlSeconds)

	now := time.Now()
	tc.now = func() time.Time { return now }
	return tc, &now
}

func TestTieredCacheSetGet(t *testing.T) {
	tc, _ := newTestCache(t, 3600)
	ctx := context.Background()

	if _, ok := tc.Get(ctx, "method:k", "", "test"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	want := testResult()
	if err := tc.Set(ctx, "method:k", "", want, "test"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := tc.Get(ctx, "method:k", "", "test")
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.Description != want.Description || len(got.Steps) != 3 || got.EstimatedTime != 12 {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTieredCacheTTLExpiry(t *testing.T) {
	tc, now := newTestCache(t, 60)
	ctx := context.Background()

	if err := tc.Set(ctx, "method:k", "", testResult(), "test"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Just inside the TTL
	*now = now.Add(60 * time.Second)
	if _, ok := tc.Get(ctx, "method:k", "", "test"); !ok {
		t.Fatal("entry at exactly the TTL boundary should still be valid")
	}

	// Past the TTL: the read misses and lazily purges
	*now = now.Add(time.Second)
	if _, ok := tc.Get(ctx, "method:k", "", "test"); ok {
		t.Fatal("expired entry should miss")
	}

	// The stale entry is gone from the backend, not just masked
	if _, found, err := tc.store.Get(ctx, "method:k"); err != nil || found {
		t.Errorf("expired entry should have been purged (found=%v, err=%v)", found, err)
	}
}

func TestTieredCacheInvalidate(t *testing.T) {
	tc, _ := newTestCache(t, 3600)
	ctx := context.Background()

	if err := tc.Set(ctx, "method:k", "", testResult(), "test"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tc.Invalidate(ctx, "method:k"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := tc.Get(ctx, "method:k", "", "test"); ok {
		t.Fatal("invalidated entry should miss")
	}

	// Deleting an absent key is not an error
	if err := tc.Invalidate(ctx, "method:absent"); err != nil {
		t.Errorf("Invalidate absent key: %v", err)
	}
}

func TestTieredCacheInvalidateOlderThan(t *testing.T) {
	store, err := NewMemoryStore(16)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	tc := New(store, nil, 0) // no TTL pressure for this test
	ctx := context.Background()

	now := time.Now()
	old := models.CacheEntry{Key: "method:old", Payload: []byte(`{}`), CreatedAt: now.Add(-40 * 24 * time.Hour)}
	older := models.CacheEntry{Key: "method:older", Payload: []byte(`{}`), CreatedAt: now.Add(-90 * 24 * time.Hour)}
	fresh := models.CacheEntry{Key: "method:fresh", Payload: []byte(`{}`), CreatedAt: now.Add(-time.Hour)}
	for _, e := range []models.CacheEntry{old, older, fresh} {
		if err := store.Set(ctx, e); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	count, err := tc.InvalidateOlderThan(ctx, 30)
	if err != nil {
		t.Fatalf("InvalidateOlderThan: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	if _, found, _ := store.Get(ctx, "method:fresh"); !found {
		t.Error("entry younger than the cutoff must survive")
	}

	// Idempotent: nothing left to remove, count never double-reports
	count, err = tc.InvalidateOlderThan(ctx, 30)
	if err != nil {
		t.Fatalf("InvalidateOlderThan: %v", err)
	}
	if count != 0 {
		t.Errorf("second sweep count = %d, want 0", count)
	}
}

func TestTieredCacheCorruptPayloadPurged(t *testing.T) {
	tc, _ := newTestCache(t, 3600)
	ctx := context.Background()

	bad := models.CacheEntry{Key: "method:bad", Payload: []byte("not json"), CreatedAt: tc.now(), TTLSeconds: 3600}
	if err := tc.store.Set(ctx, bad); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, ok := tc.Get(ctx, "method:bad", "", "test"); ok {
		t.Fatal("corrupt entry should miss")
	}
	if _, found, _ := tc.store.Get(ctx, "method:bad"); found {
		t.Error("corrupt entry should have been purged")
	}
}

func TestCacheEntryValid(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		entry models.CacheEntry
		want  bool
	}{
		{"fresh", models.CacheEntry{CreatedAt: now.Add(-time.Minute), TTLSeconds: 3600}, true},
		{"at boundary", models.CacheEntry{CreatedAt: now.Add(-3600 * time.Second), TTLSeconds: 3600}, true},
		{"expired", models.CacheEntry{CreatedAt: now.Add(-3601 * time.Second), TTLSeconds: 3600}, false},
		{"zero ttl only valid at creation", models.CacheEntry{CreatedAt: now, TTLSeconds: 0}, true},
		{"zero ttl expired a second later", models.CacheEntry{CreatedAt: now.Add(-time.Second), TTLSeconds: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Valid(now); got != tt.want {
				t.Errorf("Valid = %v, want %v", got, tt.want)
			}
		})
	}
}
