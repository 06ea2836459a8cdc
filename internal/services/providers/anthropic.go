package providers

import (
	"context"
	"strings"
	"time"

	"github.com/buildwise-ai/buildwise/internal/models"
	"github.com/buildwise-ai/buildwise/internal/utils/clientcache"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicOption "github.com/anthropics/anthropic-sdk-go/option"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const defaultAnthropicMaxTokens = 2048

// AnthropicProvider adapts the Anthropic Messages API.
type AnthropicProvider struct {
	name    string
	cfg     models.ProviderConfig
	clients *clientcache.Cache[*anthropic.Client]
}

// NewAnthropicProvider creates an adapter for the given provider config.
func NewAnthropicProvider(name string, cfg models.ProviderConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, models.NewProviderError(name, "API key not configured", nil)
	}
	return &AnthropicProvider{
		name:    name,
		cfg:     cfg,
		clients: clientcache.NewCache[*anthropic.Client](),
	}, nil
}

// Name returns the registered provider name.
func (p *AnthropicProvider) Name() string { return p.name }

// Complete sends a single-turn message request and returns the
// concatenated text blocks of the response.
func (p *AnthropicProvider) Complete(ctx context.Context, spec models.PromptSpec, requestID string) (string, error) {
	client, err := p.clients.GetOrCreate(p.name, p.buildClient)
	if err != nil {
		return "", models.NewProviderError(p.name, "client creation failed", err)
	}

	model := spec.ModelHint
	if model == "" {
		model = p.cfg.DefaultModel
	}

	maxTokens := spec.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(spec.Prompt)),
		},
	}
	if spec.Temperature > 0 {
		params.Temperature = anthropic.Float(spec.Temperature)
	}

	fiberlog.Debugf("[%s] AnthropicProvider(%s): message request - model: %s, max_tokens: %d", requestID, p.name, model, maxTokens)

	start := time.Now()
	message, err := client.Messages.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		fiberlog.Warnf("[%s] AnthropicProvider(%s): request failed after %v: %v", requestID, p.name, duration, err)
		return "", classifyProviderError(p.name, err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", models.NewProviderError(p.name, "response contained no text blocks", nil)
	}

	fiberlog.Infof("[%s] AnthropicProvider(%s): message succeeded in %v - usage: input:%d, output:%d",
		requestID, p.name, duration, message.Usage.InputTokens, message.Usage.OutputTokens)
	return sb.String(), nil
}

func (p *AnthropicProvider) buildClient() (*anthropic.Client, error) {
	opts := []anthropicOption.RequestOption{
		anthropicOption.WithAPIKey(p.cfg.APIKey),
	}

	if p.cfg.BaseURL != "" {
		opts = append(opts, anthropicOption.WithBaseURL(p.cfg.BaseURL))
	}

	for key, value := range p.cfg.Headers {
		opts = append(opts, anthropicOption.WithHeader(key, value))
	}

	client := anthropic.NewClient(opts...)
	return &client, nil
}
