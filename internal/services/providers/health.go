package providers

import (
	"strings"
	"sync"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// HealthTracker records advisory degradation windows per provider. A
// provider that failed an attempt is skipped until its cooldown elapses,
// then becomes eligible again. Writes tolerate races: retrying a
// provider slightly early or late is not a correctness problem.
type HealthTracker struct {
	mu            sync.Mutex
	degradedUntil map[string]time.Time
	now           func() time.Time
}

// NewHealthTracker creates a tracker with all providers healthy.
func NewHealthTracker() *HealthTracker {
	return &HealthTracker{
		degradedUntil: make(map[string]time.Time),
		now:           time.Now,
	}
}

// MarkDegraded starts a cooldown window for the provider.
func (h *HealthTracker) MarkDegraded(name string, cooldown time.Duration) {
	name = strings.ToLower(name)

	h.mu.Lock()
	h.degradedUntil[name] = h.now().Add(cooldown)
	h.mu.Unlock()

	fiberlog.Warnf("HealthTracker: provider %s degraded for %v", name, cooldown)
}

// Healthy reports whether the provider is currently eligible. An expired
// window is removed on read.
func (h *HealthTracker) Healthy(name string) bool {
	name = strings.ToLower(name)

	h.mu.Lock()
	defer h.mu.Unlock()

	until, ok := h.degradedUntil[name]
	if !ok {
		return true
	}
	if h.now().After(until) {
		delete(h.degradedUntil, name)
		return true
	}
	return false
}

// Reset clears the degradation window for the provider.
func (h *HealthTracker) Reset(name string) {
	name = strings.ToLower(name)

	h.mu.Lock()
	delete(h.degradedUntil, name)
	h.mu.Unlock()
}
