// Package decision is the embeddable entry point: it wires configuration,
// providers, cache and engine into a pipeline that answers construction
// method requests.
package decision

import (
	"context"
	"strings"

	"github.com/buildwise-ai/buildwise/internal/config"
	"github.com/buildwise-ai/buildwise/internal/models"
	"github.com/buildwise-ai/buildwise/internal/services/cache"
	"github.com/buildwise-ai/buildwise/internal/services/engine"
	"github.com/buildwise-ai/buildwise/internal/services/orchestrator"
	"github.com/buildwise-ai/buildwise/internal/services/providers"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Pipeline owns the assembled decision stack. Create one per process
// with NewPipeline and share it across goroutines.
type Pipeline struct {
	cfg    *config.Config
	cache  *cache.TieredCache
	health *providers.HealthTracker
	engine *engine.Engine
}

// NewPipeline validates the configuration and wires up the full stack:
// provider registry, health tracking, fallback orchestrator, tiered
// cache and decision engine.
func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	if cfg == nil {
		return nil, models.NewValidationError("config cannot be nil - use config.LoadFromFile() or the decision builder", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setupLogLevel(cfg.LogLevel)

	registry, err := providers.BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	tiered, err := cache.NewFromConfig(cfg.Cache)
	if err != nil {
		return nil, err
	}

	health := providers.NewHealthTracker()
	orch := orchestrator.New(registry, health, cfg.Fallback)

	fiberlog.Infof("Pipeline: ready with %d providers, %s cache backend",
		registry.Len(), cfg.Cache.Backend)

	return &Pipeline{
		cfg:    cfg,
		cache:  tiered,
		health: health,
		engine: engine.New(orch, tiered),
	}, nil
}

// Decide answers one method request. It never fails on provider or
// parse trouble; the only returned errors are request validation and a
// capability no configured provider supports.
func (p *Pipeline) Decide(ctx context.Context, req models.MethodRequest) (*models.MethodResult, error) {
	return p.engine.Process(ctx, req)
}

// Invalidate removes one cached answer by request key.
func (p *Pipeline) Invalidate(ctx context.Context, req models.MethodRequest) error {
	return p.cache.Invalidate(ctx, req.Key())
}

// InvalidateOlderThan bulk-removes cached answers older than the given
// number of days, for use after pricing or regulation updates. Returns
// how many entries were removed.
func (p *Pipeline) InvalidateOlderThan(ctx context.Context, days int) (int64, error) {
	return p.cache.InvalidateOlderThan(ctx, days)
}

// Close releases cache backend resources.
func (p *Pipeline) Close() error {
	return p.cache.Close()
}

func setupLogLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "", "info":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	case "fatal":
		fiberlog.SetLevel(fiberlog.LevelFatal)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
	}
}
