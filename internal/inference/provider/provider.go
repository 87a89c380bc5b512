// Package provider builds the configured chat-completion client.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/at-ishikawa/neuronest/internal/config"
	"github.com/at-ishikawa/neuronest/internal/inference"
	"github.com/at-ishikawa/neuronest/internal/inference/cohere"
	"github.com/at-ishikawa/neuronest/internal/inference/gemini"
	"github.com/at-ishikawa/neuronest/internal/inference/openai"
)

// NewClient returns a client for cfg.Provider. A provider without an API key yields
// an error wrapping inference.ErrConfigurationMissing.
func NewClient(ctx context.Context, cfg config.LLMConfig) (inference.Client, error) {
	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &samplingClient{
		inner:       client,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}, nil
}

func newClient(ctx context.Context, cfg config.LLMConfig) (inference.Client, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is not set: %w", cfg.Provider, inference.ErrConfigurationMissing)
	}
	model := cfg.ResolvedModel()
	retries := uint(cfg.MaxRetryAttempts)

	switch cfg.Provider {
	case "openai":
		return openai.NewClient(baseURL(cfg.OpenAI.BaseURL, openai.OpenAIBaseURL), apiKey, model, retries), nil
	case "mistral":
		return openai.NewClient(baseURL(cfg.Mistral.BaseURL, openai.MistralBaseURL), apiKey, model, retries), nil
	case "openrouter":
		return openai.NewClient(baseURL(cfg.OpenRouter.BaseURL, openai.OpenRouterBaseURL), apiKey, model, retries,
			openai.WithHeader("HTTP-Referer", cfg.OpenRouter.Referer),
			openai.WithHeader("X-Title", cfg.OpenRouter.Title),
		), nil
	case "cohere":
		return cohere.NewClient(baseURL(cfg.Cohere.BaseURL, cohere.BaseURL), apiKey, model, retries), nil
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.Gemini.BaseURL, apiKey, model, retries)
		if err != nil {
			return nil, fmt.Errorf("gemini.NewClient() > %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// samplingClient fills in the configured temperature and token limit on requests that leave them unset,
// and bounds each call by the configured timeout.
type samplingClient struct {
	inner       inference.Client
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

func (c *samplingClient) Generate(ctx context.Context, req inference.GenerateRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if req.Temperature == 0 {
		req.Temperature = c.temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.maxTokens
	}
	return c.inner.Generate(ctx, req)
}

func baseURL(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return fallback
}
