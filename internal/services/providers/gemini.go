package providers

import (
	"context"
	"time"

	"github.com/buildwise-ai/buildwise/internal/models"
	"github.com/buildwise-ai/buildwise/internal/utils/clientcache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"google.golang.org/genai"
)

// GeminiProvider adapts the Gemini GenerateContent API.
type GeminiProvider struct {
	name    string
	cfg     models.ProviderConfig
	clients *clientcache.Cache[*genai.Client]
}

// NewGeminiProvider creates an adapter for the given provider config.
func NewGeminiProvider(name string, cfg models.ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, models.NewProviderError(name, "API key not configured", nil)
	}
	return &GeminiProvider{
		name:    name,
		cfg:     cfg,
		clients: clientcache.NewCache[*genai.Client](),
	}, nil
}

// Name returns the registered provider name.
func (p *GeminiProvider) Name() string { return p.name }

// Complete sends a single-turn generate request and returns the response
// text.
func (p *GeminiProvider) Complete(ctx context.Context, spec models.PromptSpec, requestID string) (string, error) {
	client, err := p.clients.GetOrCreate(p.name, func() (*genai.Client, error) {
		return genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  p.cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	if err != nil {
		return "", models.NewProviderError(p.name, "client creation failed", err)
	}

	model := spec.ModelHint
	if model == "" {
		model = p.cfg.DefaultModel
	}

	genConfig := &genai.GenerateContentConfig{}
	if spec.Temperature > 0 {
		genConfig.Temperature = genai.Ptr(float32(spec.Temperature))
	}
	if spec.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(spec.MaxTokens)
	}

	fiberlog.Debugf("[%s] GeminiProvider(%s): generate request - model: %s", requestID, p.name, model)

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(spec.Prompt), genConfig)
	duration := time.Since(start)

	if err != nil {
		fiberlog.Warnf("[%s] GeminiProvider(%s): request failed after %v: %v", requestID, p.name, duration, err)
		return "", classifyProviderError(p.name, err)
	}

	text := resp.Text()
	if text == "" {
		return "", models.NewProviderError(p.name, "empty generate response", nil)
	}

	fiberlog.Infof("[%s] GeminiProvider(%s): generate succeeded in %v", requestID, p.name, duration)
	return text, nil
}
