// Package engine implements the decision pipeline: cache check, provider
// resolution with parsing, cache store and parameter adaptation, with a
// static fallback as the terminal state.
package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/buildwise-ai/buildwise/internal/models"
	"github.com/buildwise-ai/buildwise/internal/services/adapter"
	"github.com/buildwise-ai/buildwise/internal/services/parser"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
)

// Resolver produces raw provider text for a capability. Implemented by
// the orchestrator.
type Resolver interface {
	Resolve(ctx context.Context, capability models.Capability, spec models.PromptSpec, requestID string, priorityOverride map[string]int) (string, error)
}

// ResultCache is the cache surface the engine needs.
type ResultCache interface {
	Get(ctx context.Context, key, prompt, requestID string) (*models.MethodResult, bool)
	Set(ctx context.Context, key, prompt string, result models.MethodResult, requestID string) error
}

// Engine runs method requests through the decision pipeline. Safe for
// concurrent use; concurrent misses on the same key share one provider
// resolution.
type Engine struct {
	resolver Resolver
	cache    ResultCache
	parser   *parser.Parser
	flights  singleflight.Group
}

// New creates a decision engine over a resolver and a cache.
func New(resolver Resolver, cache ResultCache) *Engine {
	return &Engine{
		resolver: resolver,
		cache:    cache,
		parser:   parser.New(),
	}
}

// Process answers one method request. The generic answer comes from the
// cache or a provider; the returned result is rescaled to the request's
// own dimensions, so two callers sharing a cached answer still receive
// different numbers. The only error surfaced is a missing capability;
// every other failure degrades to the static fallback.
func (e *Engine) Process(ctx context.Context, req models.MethodRequest) (*models.MethodResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	requestID := generateRequestID()
	fiberlog.Infof("[%s] Engine: %s/%s request (region %q, size %.1f)",
		requestID, req.DomainType, req.DomainSubtype, req.Location.Region, req.Dimensions.SizeMeasure)

	generic, err := e.genericResult(ctx, req, requestID)
	if err != nil {
		return nil, err
	}

	adapted := adapter.AdaptToParameters(*generic, req.Dimensions.SizeMeasure, req.Complexity)
	fiberlog.Debugf("[%s] Engine: adapted result (skill %d, %.0fh)",
		requestID, adapted.RequiredSkillLevel, adapted.EstimatedTime)
	return &adapted, nil
}

// genericResult obtains the size-independent answer for the request key.
func (e *Engine) genericResult(ctx context.Context, req models.MethodRequest, requestID string) (*models.MethodResult, error) {
	key := req.Key()
	prompt := BuildPrompt(req)

	if cached, ok := e.cache.Get(ctx, key, prompt, requestID); ok {
		return cached, nil
	}

	result, err, shared := e.flights.Do(key, func() (any, error) {
		return e.resolveAndStore(ctx, req, key, prompt, requestID)
	})
	if err != nil && shared {
		// This caller rode a flight it did not lead. Spend its own
		// attempt before degrading: the retry may hit the cache or a
		// recovered provider.
		fiberlog.Debugf("[%s] Engine: shared resolution failed, retrying once", requestID)
		result, err, _ = e.flights.Do(key, func() (any, error) {
			return e.resolveAndStore(ctx, req, key, prompt, requestID)
		})
	}

	if err != nil {
		if models.IsErrorType(err, models.ErrorTypeNoCapableProvider) {
			return nil, err
		}
		fiberlog.Warnf("[%s] Engine: resolution failed, using static fallback: %v", requestID, err)
		fallback := StaticFallback(req)
		return &fallback, nil
	}
	return result.(*models.MethodResult), nil
}

// resolveAndStore is the miss path: provider chain, parse, cache store.
// A failed cache store is logged and otherwise ignored; the freshly
// parsed result is still good for this request.
func (e *Engine) resolveAndStore(ctx context.Context, req models.MethodRequest, key, prompt, requestID string) (*models.MethodResult, error) {
	// Re-check under the flight: a retrying waiter may find the answer a
	// concurrent flight stored moments ago.
	if cached, ok := e.cache.Get(ctx, key, "", requestID); ok {
		return cached, nil
	}

	spec := models.PromptSpec{
		Prompt:      prompt,
		MaxTokens:   promptMaxTokens,
		Temperature: promptTemperature,
	}
	raw, err := e.resolver.Resolve(ctx, models.CapabilityTextCompletion, spec, requestID, nil)
	if err != nil {
		return nil, err
	}

	parsed, err := e.parser.ParseMethodResponse(raw, requestID)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Set(ctx, key, prompt, *parsed, requestID); err != nil {
		fiberlog.Errorf("[%s] Engine: cache store failed for %s: %v", requestID, key, err)
	}
	return parsed, nil
}

// generateRequestID creates a random correlation ID for one request's
// log lines.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "req_unknown"
	}
	return "req_" + hex.EncodeToString(bytes)
}
