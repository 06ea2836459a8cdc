package decision

import (
	"github.com/buildwise-ai/buildwise/internal/config"
	"github.com/buildwise-ai/buildwise/internal/models"
)

// Builder provides a fluent interface for assembling a pipeline
// configuration in code, as an alternative to config.LoadFromFile.
type Builder struct {
	cfg *config.Config
}

// NewBuilder creates a configuration builder with minimal defaults.
func NewBuilder() *Builder {
	return &Builder{
		cfg: &config.Config{
			Providers: make(map[string]models.ProviderConfig),
			Fallback: models.FallbackConfig{
				AttemptTimeoutMs: 30000,
				CooldownMs:       15000,
				MaxConcurrency:   8,
			},
			Cache: models.CacheConfig{
				Backend:    models.CacheBackendMemory,
				Capacity:   1000,
				TTLSeconds: 24 * 60 * 60,
			},
			LogLevel: "info",
		},
	}
}

// WithProvider registers a provider under the given name. Capabilities
// default to text completion when left empty.
func (b *Builder) WithProvider(name string, pc models.ProviderConfig) *Builder {
	if len(pc.Capabilities) == 0 {
		pc.Capabilities = []models.Capability{models.CapabilityTextCompletion}
	}
	if pc.Type == "" {
		pc.Type = name
	}
	b.cfg.Providers[name] = pc
	return b
}

// WithFallback sets the fallback chain behavior.
func (b *Builder) WithFallback(fc models.FallbackConfig) *Builder {
	b.cfg.Fallback = fc
	return b
}

// WithMemoryCache selects the in-process LRU backend.
func (b *Builder) WithMemoryCache(capacity int, ttlSeconds int64) *Builder {
	b.cfg.Cache = models.CacheConfig{
		Backend:    models.CacheBackendMemory,
		Capacity:   capacity,
		TTLSeconds: ttlSeconds,
	}
	return b
}

// WithRedisCache selects the redis backend.
func (b *Builder) WithRedisCache(redisURL string, ttlSeconds int64) *Builder {
	b.cfg.Cache = models.CacheConfig{
		Backend:    models.CacheBackendRedis,
		RedisURL:   redisURL,
		TTLSeconds: ttlSeconds,
	}
	return b
}

// WithSQLCache selects the SQL backend.
func (b *Builder) WithSQLCache(db models.DatabaseConfig, ttlSeconds int64) *Builder {
	b.cfg.Cache = models.CacheConfig{
		Backend:    models.CacheBackendSQL,
		Database:   &db,
		TTLSeconds: ttlSeconds,
	}
	return b
}

// WithSemanticCache layers the similarity tier over the exact backend.
func (b *Builder) WithSemanticCache(sc models.SemanticCacheConfig) *Builder {
	sc.Enabled = true
	b.cfg.Cache.Semantic = &sc
	return b
}

// WithLogLevel sets the log verbosity (trace, debug, info, warn, error,
// fatal).
func (b *Builder) WithLogLevel(level string) *Builder {
	b.cfg.LogLevel = level
	return b
}

// Build returns the assembled configuration.
func (b *Builder) Build() *config.Config {
	return b.cfg
}

// BuildPipeline assembles the configuration and wires the pipeline.
func (b *Builder) BuildPipeline() (*Pipeline, error) {
	return NewPipeline(b.cfg)
}
