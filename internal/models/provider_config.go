package models

// ProviderConfig holds configuration for one inference provider (unified
// for YAML config and programmatic setup)
type ProviderConfig struct {
	Type         string            `yaml:"type" json:"type,omitzero"` // "openai", "anthropic", "gemini"; defaults to the map key
	APIKey       string            `yaml:"api_key" json:"api_key,omitzero"`
	BaseURL      string            `yaml:"base_url" json:"base_url,omitzero"` // optional custom base URL
	DefaultModel string            `yaml:"default_model" json:"default_model,omitzero"`
	Priority     int               `yaml:"priority" json:"priority,omitzero"` // lower rank is tried first
	Capabilities []Capability      `yaml:"capabilities" json:"capabilities,omitzero"`
	TimeoutMs    int               `yaml:"timeout_ms" json:"timeout_ms,omitzero"`
	Headers      map[string]string `yaml:"headers" json:"headers,omitzero"`
}
