package cache

import (
	"context"
	"fmt"

	"github.com/buildwise-ai/buildwise/internal/models"

	"github.com/botirk38/semanticcache"
	"github.com/botirk38/semanticcache/options"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const defaultSemanticThreshold = 0.92

// SemanticTier answers lookups for prompts that are phrased differently
// but mean the same thing. It sits above the exact tier and is purely
// best-effort: it has no TTL guarantee and is never consulted by bulk
// eviction.
type SemanticTier struct {
	cache     *semanticcache.SemanticCache[string, models.MethodResult]
	threshold float32
}

// NewSemanticTier creates the similarity tier from configuration.
func NewSemanticTier(cfg models.SemanticCacheConfig) (*SemanticTier, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("semantic tier requires an OpenAI API key for embeddings")
	}

	threshold := cfg.SemanticThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = defaultSemanticThreshold
		fiberlog.Warnf("SemanticTier: invalid threshold %.2f, using default %.2f", cfg.SemanticThreshold, defaultSemanticThreshold)
	}

	embedModel := cfg.EmbeddingModel
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}

	backend := cfg.Backend
	if backend == "" {
		backend = models.CacheBackendMemory
	}

	var sc *semanticcache.SemanticCache[string, models.MethodResult]
	var err error

	switch backend {
	case models.CacheBackendMemory:
		capacity := cfg.Capacity
		if capacity <= 0 {
			capacity = defaultMemoryCapacity
		}
		sc, err = semanticcache.New(
			options.WithOpenAIProvider[string, models.MethodResult](cfg.OpenAIAPIKey, embedModel),
			options.WithLRUBackend[string, models.MethodResult](capacity),
		)

	case models.CacheBackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("semantic tier redis backend requires redis_url")
		}
		sc, err = semanticcache.New(
			options.WithOpenAIProvider[string, models.MethodResult](cfg.OpenAIAPIKey, embedModel),
			options.WithRedisBackend[string, models.MethodResult](cfg.RedisURL, 0),
		)

	default:
		return nil, fmt.Errorf("unsupported semantic tier backend: %s (supported: memory, redis)", backend)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create semantic cache: %w", err)
	}

	fiberlog.Infof("SemanticTier: initialized (backend=%s, threshold=%.2f)", backend, threshold)
	return &SemanticTier{cache: sc, threshold: float32(threshold)}, nil
}

// Lookup tries exact key matching first, then similarity search.
func (st *SemanticTier) Lookup(ctx context.Context, prompt, requestID string) (*models.MethodResult, bool) {
	if hit, found, err := st.cache.Get(ctx, prompt); found && err == nil {
		fiberlog.Infof("[%s] SemanticTier: exact hit", requestID)
		return &hit, true
	} else if err != nil {
		fiberlog.Errorf("[%s] SemanticTier: exact lookup error: %v", requestID, err)
	}

	if match, err := st.cache.Lookup(ctx, prompt, st.threshold); err == nil && match != nil {
		fiberlog.Infof("[%s] SemanticTier: similarity hit (score %.2f)", requestID, match.Score)
		return &match.Value, true
	} else if err != nil {
		fiberlog.Errorf("[%s] SemanticTier: similarity lookup error: %v", requestID, err)
	}

	return nil, false
}

// StoreAsync saves a result fire-and-forget.
func (st *SemanticTier) StoreAsync(ctx context.Context, prompt string, result models.MethodResult, requestID string) {
	fiberlog.Debugf("[%s] SemanticTier: storing result (fire-and-forget)", requestID)
	st.cache.SetAsync(ctx, prompt, prompt, result)
}

// Close releases tier resources.
func (st *SemanticTier) Close() error {
	return st.cache.Close()
}
