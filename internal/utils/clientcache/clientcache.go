package clientcache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is a type-safe cache for expensive-to-build clients. Singleflight
// guarantees the factory runs at most once per key even under concurrent
// load.
type Cache[T any] struct {
	entries sync.Map
	group   singleflight.Group
}

// NewCache creates an empty client cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{}
}

// GetOrCreate returns the cached client for key, building it with factory
// on first use.
func (c *Cache[T]) GetOrCreate(key string, factory func() (T, error)) (T, error) {
	if cached, ok := c.entries.Load(key); ok {
		return cached.(T), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have
		// populated the entry between Load and Do.
		if cached, ok := c.entries.Load(key); ok {
			return cached.(T), nil
		}

		client, err := factory()
		if err != nil {
			var zero T
			return zero, err
		}

		c.entries.Store(key, client)
		return client, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// Delete removes a client from the cache.
func (c *Cache[T]) Delete(key string) {
	c.entries.Delete(key)
}

// Clear removes all clients from the cache.
func (c *Cache[T]) Clear() {
	c.entries.Range(func(key, value any) bool {
		c.entries.Delete(key)
		return true
	})
}
