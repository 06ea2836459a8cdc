// Package orchestrator drives the provider fallback chain: candidates
// supporting a capability are tried in priority order until one returns
// raw text or the chain is exhausted.
package orchestrator

import (
	"context"
	"time"

	"github.com/buildwise-ai/buildwise/internal/models"
	"github.com/buildwise-ai/buildwise/internal/services/providers"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/semaphore"
)

// Orchestrator resolves a capability against the provider registry with
// sequential fallback. It mutates provider health state; it never
// touches the cache.
type Orchestrator struct {
	registry *providers.Registry
	health   *providers.HealthTracker
	cfg      models.FallbackConfig
	outbound *semaphore.Weighted
}

// New creates an orchestrator over the given registry.
func New(registry *providers.Registry, health *providers.HealthTracker, cfg models.FallbackConfig) *Orchestrator {
	maxConcurrency := int64(cfg.MaxConcurrency)
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	return &Orchestrator{
		registry: registry,
		health:   health,
		cfg:      cfg,
		outbound: semaphore.NewWeighted(maxConcurrency),
	}
}

// Resolve tries each capable, healthy provider in priority order and
// returns the first successful raw response. priorityOverride, when
// non-nil, replaces registered ranks for the named providers.
func (o *Orchestrator) Resolve(
	ctx context.Context,
	capability models.Capability,
	spec models.PromptSpec,
	requestID string,
	priorityOverride map[string]int,
) (string, error) {
	candidates := o.registry.CandidatesFor(capability, priorityOverride)
	if len(candidates) == 0 {
		fiberlog.Errorf("[%s] Orchestrator: no provider supports capability %q", requestID, capability)
		return "", models.NewNoCapableProviderError(capability)
	}

	// Candidates in a cooldown window are skipped for now; they become
	// eligible again once the window elapses.
	var skipped []models.AttemptFailure
	ordered := make([]providers.Registration, 0, len(candidates))
	for _, c := range candidates {
		if o.health.Healthy(c.Descriptor.Name) {
			ordered = append(ordered, c)
		} else {
			fiberlog.Debugf("[%s] Orchestrator: skipping degraded provider %s", requestID, c.Descriptor.Name)
			skipped = append(skipped, models.AttemptFailure{
				Provider: c.Descriptor.Name,
				Cause:    models.NewProviderError(c.Descriptor.Name, "skipped: in cooldown window", nil),
			})
		}
	}

	if len(ordered) == 0 {
		fiberlog.Errorf("[%s] Orchestrator: every capable provider for %q is in cooldown", requestID, capability)
		return "", models.NewAllProvidersExhaustedError(capability, skipped)
	}

	fiberlog.Infof("[%s] Orchestrator: resolving %q across %d healthy candidates (%d degraded skipped)",
		requestID, capability, len(ordered), len(skipped))
	for i, c := range ordered {
		role := "fallback"
		if i == 0 {
			role = "primary"
		}
		fiberlog.Debugf("[%s]    %d. %s: %s (priority %d)", requestID, i+1, role, c.Descriptor.Name, c.Descriptor.Priority)
	}

	var failures []models.AttemptFailure
	for i, candidate := range ordered {
		name := candidate.Descriptor.Name
		fiberlog.Infof("[%s] Orchestrator: trying provider [%d/%d]: %s", requestID, i+1, len(ordered), name)

		text, err := o.attempt(ctx, candidate, spec, requestID)
		if err == nil {
			fiberlog.Infof("[%s] Orchestrator: provider %s succeeded", requestID, name)
			o.health.Reset(name)
			return text, nil
		}

		if ctx.Err() != nil {
			// Caller gone; no point trying further candidates.
			failures = append(failures, models.AttemptFailure{Provider: name, Cause: err})
			break
		}

		fiberlog.Warnf("[%s] Orchestrator: provider %s failed: %v", requestID, name, err)
		o.health.MarkDegraded(name, o.cfg.Cooldown())
		failures = append(failures, models.AttemptFailure{Provider: name, Cause: err})
	}

	fiberlog.Errorf("[%s] Orchestrator: all %d candidates failed for capability %q", requestID, len(ordered), capability)
	return "", models.NewAllProvidersExhaustedError(capability, failures)
}

// attempt runs one bounded provider call under the outbound concurrency
// limit.
func (o *Orchestrator) attempt(
	ctx context.Context,
	candidate providers.Registration,
	spec models.PromptSpec,
	requestID string,
) (string, error) {
	if err := o.outbound.Acquire(ctx, 1); err != nil {
		return "", models.NewTimeoutError(candidate.Descriptor.Name, err)
	}
	defer o.outbound.Release(1)

	attemptCtx := ctx
	if timeout := o.cfg.AttemptTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := candidate.Provider.Complete(attemptCtx, spec, requestID)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded {
			return "", models.NewTimeoutError(candidate.Descriptor.Name, attemptCtx.Err())
		}
		return "", err
	}

	fiberlog.Debugf("[%s] Orchestrator: %s answered in %v (%d bytes)",
		requestID, candidate.Descriptor.Name, time.Since(start), len(text))
	return text, nil
}
