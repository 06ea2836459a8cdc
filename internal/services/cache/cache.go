// Package cache implements the tiered result cache: an exact-match
// TTL store (memory, redis or SQL) with an optional semantic similarity
// tier layered on top.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/buildwise-ai/buildwise/internal/models"
	"github.com/buildwise-ai/buildwise/internal/services/database"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Store is the exact-match backend contract. Implementations must be
// safe for concurrent use and byte-transparent: Get returns exactly the
// payload previously passed to Set. Expiry policy lives above the Store;
// backends may additionally expire entries on their own (redis TTL).
type Store interface {
	// Get returns the stored entry. A miss is (zero, false, nil); errors
	// are backend failures, which callers treat as misses.
	Get(ctx context.Context, key string) (models.CacheEntry, bool, error)

	// Set stores the entry, replacing any previous value for its key.
	Set(ctx context.Context, entry models.CacheEntry) error

	// Delete removes a key. Idempotent.
	Delete(ctx context.Context, key string) error

	// DeleteOlderThan removes entries created before the cutoff age and
	// returns how many were removed. Younger entries must survive.
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)

	// Close releases backend resources.
	Close() error
}

// TieredCache is the typed cache the decision engine talks to. It owns
// entry validity: an entry is live iff now - createdAt <= ttl, and stale
// entries are lazily purged on access.
type TieredCache struct {
	store      Store
	semantic   *SemanticTier
	ttlSeconds int64
	now        func() time.Time
}

// New creates a TieredCache over a backend store.
func New(store Store, semantic *SemanticTier, ttlSeconds int64) *TieredCache {
	return &TieredCache{
		store:      store,
		semantic:   semantic,
		ttlSeconds: ttlSeconds,
		now:        time.Now,
	}
}

// NewFromConfig builds the backend named by the configuration and wraps
// it in a TieredCache.
func NewFromConfig(cfg models.CacheConfig) (*TieredCache, error) {
	var store Store
	var err error

	switch cfg.Backend {
	case models.CacheBackendMemory, "":
		store, err = NewMemoryStore(cfg.Capacity)
	case models.CacheBackendRedis:
		store, err = NewRedisStore(cfg.RedisURL)
	case models.CacheBackendSQL:
		store, err = database.NewStore(*cfg.Database)
	default:
		return nil, models.NewValidationError("unsupported cache backend: "+string(cfg.Backend), nil)
	}
	if err != nil {
		return nil, err
	}

	var semantic *SemanticTier
	if cfg.Semantic != nil && cfg.Semantic.Enabled {
		semantic, err = NewSemanticTier(*cfg.Semantic)
		if err != nil {
			// The semantic tier is an accelerator, not a requirement
			fiberlog.Warnf("TieredCache: semantic tier disabled: %v", err)
			semantic = nil
		}
	}

	return New(store, semantic, cfg.TTLSeconds), nil
}

// Get returns the cached result for key, or absent. prompt feeds the
// optional semantic tier; pass "" to restrict the lookup to exact
// matching. Backend failures are logged and treated as misses.
func (tc *TieredCache) Get(ctx context.Context, key, prompt, requestID string) (*models.MethodResult, bool) {
	entry, found, err := tc.store.Get(ctx, key)
	if err != nil {
		fiberlog.Errorf("[%s] TieredCache: backend get failed, treating as miss: %v", requestID, err)
	} else if found {
		if entry.Valid(tc.now()) {
			var result models.MethodResult
			if err := json.Unmarshal(entry.Payload, &result); err != nil {
				fiberlog.Errorf("[%s] TieredCache: corrupt payload for %s, purging: %v", requestID, key, err)
				_ = tc.store.Delete(ctx, key)
			} else {
				fiberlog.Infof("[%s] TieredCache: exact hit for %s", requestID, key)
				return &result, true
			}
		} else {
			fiberlog.Debugf("[%s] TieredCache: entry for %s expired (age %v), purging", requestID, key, entry.Age(tc.now()))
			if err := tc.store.Delete(ctx, key); err != nil {
				fiberlog.Errorf("[%s] TieredCache: stale purge failed: %v", requestID, err)
			}
		}
	}

	if tc.semantic != nil && prompt != "" {
		if result, ok := tc.semantic.Lookup(ctx, prompt, requestID); ok {
			return result, true
		}
	}

	fiberlog.Debugf("[%s] TieredCache: miss for %s", requestID, key)
	return nil, false
}

// Set stores the result under key with the configured TTL.
func (tc *TieredCache) Set(ctx context.Context, key, prompt string, result models.MethodResult, requestID string) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return models.NewCacheError("failed to serialize result", err)
	}

	entry := models.CacheEntry{
		Key:        key,
		Payload:    payload,
		CreatedAt:  tc.now(),
		TTLSeconds: tc.ttlSeconds,
	}

	if err := tc.store.Set(ctx, entry); err != nil {
		return models.NewCacheError("backend set failed", err)
	}
	fiberlog.Debugf("[%s] TieredCache: stored %s (ttl %ds)", requestID, key, tc.ttlSeconds)

	if tc.semantic != nil && prompt != "" {
		tc.semantic.StoreAsync(ctx, prompt, result, requestID)
	}

	return nil
}

// Invalidate removes a single key from the exact tier.
func (tc *TieredCache) Invalidate(ctx context.Context, key string) error {
	if err := tc.store.Delete(ctx, key); err != nil {
		return models.NewCacheError("backend delete failed", err)
	}
	return nil
}

// InvalidateOlderThan bulk-removes entries older than the given number
// of days and returns how many were removed. Entries younger than the
// threshold are never touched.
func (tc *TieredCache) InvalidateOlderThan(ctx context.Context, days int) (int64, error) {
	age := time.Duration(days) * 24 * time.Hour
	count, err := tc.store.DeleteOlderThan(ctx, age)
	if err != nil {
		return 0, models.NewCacheError("bulk eviction failed", err)
	}
	fiberlog.Infof("TieredCache: evicted %d entries older than %dd", count, days)
	return count, nil
}

// Close releases cache resources.
func (tc *TieredCache) Close() error {
	if tc.semantic != nil {
		if err := tc.semantic.Close(); err != nil {
			_ = tc.store.Close()
			return err
		}
	}
	return tc.store.Close()
}
