package cache

import (
	"context"
	"time"

	"github.com/buildwise-ai/buildwise/internal/models"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemoryCapacity = 1000

// MemoryStore is an in-process LRU backend. Capacity bounds memory use;
// TTL-based validity is enforced by the TieredCache above it.
type MemoryStore struct {
	entries *lru.Cache[string, models.CacheEntry]
}

// NewMemoryStore creates an LRU-backed store with the given capacity.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	entries, err := lru.New[string, models.CacheEntry](capacity)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{entries: entries}, nil
}

// Get returns the stored entry, expired or not.
func (s *MemoryStore) Get(ctx context.Context, key string) (models.CacheEntry, bool, error) {
	entry, ok := s.entries.Get(key)
	return entry, ok, nil
}

// Set stores the entry.
func (s *MemoryStore) Set(ctx context.Context, entry models.CacheEntry) error {
	s.entries.Add(entry.Key, entry)
	return nil
}

// Delete removes a key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.entries.Remove(key)
	return nil
}

// DeleteOlderThan sweeps entries created before the cutoff.
func (s *MemoryStore) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	var removed int64
	for _, key := range s.entries.Keys() {
		entry, ok := s.entries.Peek(key)
		if !ok {
			continue
		}
		if entry.CreatedAt.Before(cutoff) {
			s.entries.Remove(key)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error {
	return nil
}
