// Package providers holds the inference provider registry, the advisory
// health tracker, and the SDK adapters the orchestrator drives.
package providers

import (
	"context"
	"strings"

	"github.com/buildwise-ai/buildwise/internal/models"
)

// CompletionProvider is one inference backend. Implementations wrap a
// vendor SDK and must honor ctx cancellation; the orchestrator bounds
// every call with a per-attempt timeout.
type CompletionProvider interface {
	Name() string
	Complete(ctx context.Context, spec models.PromptSpec, requestID string) (string, error)
}

// classifyProviderError maps a raw SDK failure onto the error taxonomy.
// Rate limits and timeouts are recognized so the orchestrator can log the
// cause precisely; everything else is a transport error. All three are
// recovered locally by advancing the fallback chain.
func classifyProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return models.NewTimeoutError(provider, err)
	}
	if isRateLimited(err) {
		return models.NewRateLimitError(provider, err)
	}
	return models.NewProviderError(provider, "completion request failed", err)
}

func isTimeout(err error) bool {
	if err == context.DeadlineExceeded {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "context deadline exceeded") || strings.Contains(msg, "timeout")
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "rate limit")
}
