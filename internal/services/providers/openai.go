package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/buildwise-ai/buildwise/internal/models"
	"github.com/buildwise-ai/buildwise/internal/utils/clientcache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/openai/openai-go/v2"
	openaiOption "github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// OpenAIProvider adapts any OpenAI-compatible chat-completions backend.
// A custom BaseURL points it at compatible third-party endpoints.
type OpenAIProvider struct {
	name    string
	cfg     models.ProviderConfig
	clients *clientcache.Cache[*openai.Client]
}

// NewOpenAIProvider creates an adapter for the given provider config.
func NewOpenAIProvider(name string, cfg models.ProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, models.NewProviderError(name, "API key not configured", nil)
	}
	return &OpenAIProvider{
		name:    name,
		cfg:     cfg,
		clients: clientcache.NewCache[*openai.Client](),
	}, nil
}

// Name returns the registered provider name.
func (p *OpenAIProvider) Name() string { return p.name }

// Complete sends a single-turn completion request and returns the raw
// response text.
func (p *OpenAIProvider) Complete(ctx context.Context, spec models.PromptSpec, requestID string) (string, error) {
	client, err := p.clients.GetOrCreate(p.name, p.buildClient)
	if err != nil {
		return "", models.NewProviderError(p.name, "client creation failed", err)
	}

	model := spec.ModelHint
	if model == "" {
		model = p.cfg.DefaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(spec.Prompt),
		},
	}
	if spec.MaxTokens > 0 {
		params.MaxTokens = openai.Int(spec.MaxTokens)
	}
	if spec.Temperature > 0 {
		params.Temperature = openai.Float(spec.Temperature)
	}

	fiberlog.Debugf("[%s] OpenAIProvider(%s): completion request - model: %s", requestID, p.name, model)

	start := time.Now()
	resp, err := client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		fiberlog.Warnf("[%s] OpenAIProvider(%s): request failed after %v: %v", requestID, p.name, duration, err)
		return "", classifyProviderError(p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", models.NewProviderError(p.name, "empty completion response", nil)
	}

	fiberlog.Infof("[%s] OpenAIProvider(%s): completion succeeded in %v", requestID, p.name, duration)
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) buildClient() (*openai.Client, error) {
	opts := []openaiOption.RequestOption{
		openaiOption.WithAPIKey(p.cfg.APIKey),
	}

	if p.cfg.BaseURL != "" {
		opts = append(opts, openaiOption.WithBaseURL(p.cfg.BaseURL))
	}

	for key, value := range p.cfg.Headers {
		opts = append(opts, openaiOption.WithHeader(key, value))
	}

	if p.cfg.TimeoutMs > 0 {
		timeout := time.Duration(p.cfg.TimeoutMs) * time.Millisecond
		opts = append(opts, openaiOption.WithHTTPClient(&http.Client{Timeout: timeout}))
	}

	client := openai.NewClient(opts...)
	return &client, nil
}
