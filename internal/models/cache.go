package models

import "time"

// CacheBackendType represents the type of cache backend to use
type CacheBackendType string

const (
	CacheBackendMemory CacheBackendType = "memory"
	CacheBackendRedis  CacheBackendType = "redis"
	CacheBackendSQL    CacheBackendType = "sql"
)

// CacheEntry is the unit stored by every cache backend. Payload is an
// opaque serialized result; backends must return it byte-for-byte.
type CacheEntry struct {
	Key        string    `json:"key"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
	TTLSeconds int64     `json:"ttl_seconds"`
}

// Valid reports whether the entry is still live at the given instant.
// An entry is valid iff now - createdAt <= ttl.
func (e CacheEntry) Valid(now time.Time) bool {
	ttl := time.Duration(e.TTLSeconds) * time.Second
	return now.Sub(e.CreatedAt) <= ttl
}

// Age returns how long ago the entry was created.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// SemanticCacheConfig holds configuration for the optional semantic
// lookup tier layered over the exact-match cache.
type SemanticCacheConfig struct {
	Enabled           bool             `json:"enabled,omitzero" yaml:"enabled"`
	Backend           CacheBackendType `json:"backend,omitzero" yaml:"backend"` // "redis" or "memory"
	RedisURL          string           `json:"redis_url,omitzero" yaml:"redis_url"`
	Capacity          int              `json:"capacity,omitzero" yaml:"capacity"`
	SemanticThreshold float64          `json:"semantic_threshold,omitzero" yaml:"semantic_threshold"`
	OpenAIAPIKey      string           `json:"openai_api_key,omitzero" yaml:"openai_api_key"`
	EmbeddingModel    string           `json:"embedding_model,omitzero" yaml:"embedding_model"`
}

// CacheConfig holds configuration for the tiered result cache
type CacheConfig struct {
	Backend    CacheBackendType     `json:"backend,omitzero" yaml:"backend"`
	RedisURL   string               `json:"redis_url,omitzero" yaml:"redis_url"` // required if backend is "redis"
	Capacity   int                  `json:"capacity,omitzero" yaml:"capacity"`   // required if backend is "memory"
	TTLSeconds int64                `json:"ttl_seconds,omitzero" yaml:"ttl_seconds"`
	Database   *DatabaseConfig      `json:"database,omitzero" yaml:"database,omitempty"` // required if backend is "sql"
	Semantic   *SemanticCacheConfig `json:"semantic,omitzero" yaml:"semantic,omitempty"`
}
