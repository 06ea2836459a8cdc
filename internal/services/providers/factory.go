package providers

import (
	"fmt"
	"strings"

	"github.com/buildwise-ai/buildwise/internal/config"
	"github.com/buildwise-ai/buildwise/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// New builds the adapter for one provider config.
func New(name string, cfg models.ProviderConfig) (CompletionProvider, error) {
	switch strings.ToLower(cfg.Type) {
	case "openai":
		return NewOpenAIProvider(name, cfg)
	case "anthropic":
		return NewAnthropicProvider(name, cfg)
	case "gemini":
		return NewGeminiProvider(name, cfg)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s (supported: openai, anthropic, gemini)", cfg.Type)
	}
}

// BuildRegistry constructs the process-lifetime registry from
// configuration. Priority ranks default to the map iteration-independent
// order of the configured priority field.
func BuildRegistry(cfg *config.Config) (*Registry, error) {
	registry := NewRegistry()

	for name, pc := range cfg.Providers {
		adapter, err := New(name, pc)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", name, err)
		}

		desc := models.ProviderDescriptor{
			Name:         name,
			Capabilities: pc.Capabilities,
			Priority:     pc.Priority,
			DefaultModel: pc.DefaultModel,
		}
		if err := registry.Register(desc, adapter); err != nil {
			return nil, err
		}

		fiberlog.Infof("Registry: registered provider %s (type=%s, priority=%d, capabilities=%v)",
			name, pc.Type, pc.Priority, pc.Capabilities)
	}

	return registry, nil
}
