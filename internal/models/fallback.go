package models

import "time"

// FallbackConfig controls the provider fallback chain. Candidates are
// always attempted sequentially in priority order; the first success
// wins.
type FallbackConfig struct {
	AttemptTimeoutMs int `json:"attempt_timeout_ms,omitzero" yaml:"attempt_timeout_ms,omitempty"` // bounded timeout per provider attempt
	CooldownMs       int `json:"cooldown_ms,omitzero" yaml:"cooldown_ms,omitempty"`               // degraded window after a failed attempt
	MaxConcurrency   int `json:"max_concurrency,omitzero" yaml:"max_concurrency,omitempty"`       // cap on simultaneous outbound provider calls
}

// AttemptTimeout returns the per-attempt timeout as a duration.
func (f FallbackConfig) AttemptTimeout() time.Duration {
	return time.Duration(f.AttemptTimeoutMs) * time.Millisecond
}

// Cooldown returns the degraded window as a duration.
func (f FallbackConfig) Cooldown() time.Duration {
	return time.Duration(f.CooldownMs) * time.Millisecond
}
