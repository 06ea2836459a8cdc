package models

// Capability names a function an inference provider can perform
type Capability string

const (
	CapabilityTextCompletion Capability = "text-completion"
	CapabilityEmbeddings     Capability = "embeddings"
	CapabilityVision         Capability = "vision"
)

// ProviderDescriptor identifies one inference backend. Descriptors are
// immutable once registered; health is tracked separately and is only
// advisory.
type ProviderDescriptor struct {
	Name         string       `json:"name" yaml:"name"`
	Capabilities []Capability `json:"capabilities" yaml:"capabilities"`
	Priority     int          `json:"priority" yaml:"priority"` // lower rank is tried first
	DefaultModel string       `json:"default_model,omitzero" yaml:"default_model,omitempty"`
}

// Supports reports whether the descriptor advertises the capability.
func (d ProviderDescriptor) Supports(capability Capability) bool {
	for _, c := range d.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// PromptSpec carries the text and generation parameters for one
// provider attempt.
type PromptSpec struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int64   `json:"max_tokens,omitzero"`
	Temperature float64 `json:"temperature,omitzero"`
	ModelHint   string  `json:"model_hint,omitzero"`
}

// AttemptFailure records why one candidate in the fallback chain failed.
type AttemptFailure struct {
	Provider string `json:"provider"`
	Cause    error  `json:"-"`
}
