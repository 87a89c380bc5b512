// Package gemini implements inference.Client with the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/at-ishikawa/neuronest/internal/inference"
)

type Client struct {
	client           *genai.Client
	model            string
	maxRetryAttempts uint
}

// NewClient creates a Gemini API client. An empty baseURL uses the SDK default endpoint.
func NewClient(ctx context.Context, baseURL, apiKey, model string, retryAttempts uint) (*Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient() > %w", err)
	}
	return &Client{
		client:           client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}, nil
}

// Generate implements the inference.Client interface
func (c *Client) Generate(ctx context.Context, params inference.GenerateRequest) (string, error) {
	return inference.Retry(ctx, c.maxRetryAttempts, func() (string, error) {
		return c.generate(ctx, params)
	})
}

func (c *Client) generate(ctx context.Context, params inference.GenerateRequest) (string, error) {
	config := &genai.GenerateContentConfig{}
	if params.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(params.SystemPrompt, genai.RoleUser)
	}
	if params.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(params.Temperature))
	}
	if params.MaxTokens > 0 {
		config.MaxOutputTokens = int32(params.MaxTokens)
	}

	result, err := c.client.Models.GenerateContent(ctx,
		c.model,
		[]*genai.Content{genai.NewContentFromText(params.UserPrompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		return "", classify(err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", &inference.ParseError{Message: "no text in candidates"}
	}
	return text, nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &inference.HTTPError{StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &inference.HTTPError{StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return &inference.NetworkError{Err: fmt.Errorf("Models.GenerateContent() > %w", err)}
}
