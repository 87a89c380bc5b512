// Package openai implements inference.Client for OpenAI-compatible chat completion APIs
// (OpenAI, Mistral and OpenRouter).
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/neuronest/internal/inference"
	"resty.dev/v3"
)

const (
	OpenAIBaseURL     = "https://api.openai.com/v1"
	MistralBaseURL    = "https://api.mistral.ai/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

type Option func(*resty.Client)

// WithHeader sets an extra header on every request, such as OpenRouter's X-Title.
func WithHeader(key, value string) Option {
	return func(c *resty.Client) {
		if value != "" {
			c.SetHeader(key, value)
		}
	}
}

func NewClient(baseURL, apiKey, model string, retryAttempts uint, opts ...Option) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")
	for _, opt := range opts {
		opt(client)
	}

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

func (client Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Generate implements the inference.Client interface
func (client *Client) Generate(ctx context.Context, params inference.GenerateRequest) (string, error) {
	return inference.Retry(ctx, client.maxRetryAttempts, func() (string, error) {
		return client.generate(ctx, params)
	})
}

func (client *Client) getRequestBody(params inference.GenerateRequest) ChatCompletionRequest {
	var messages []Message
	if params.SystemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: params.SystemPrompt})
	}
	messages = append(messages, Message{Role: RoleUser, Content: params.UserPrompt})

	return ChatCompletionRequest{
		Model:       client.model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}
}

func (client *Client) generate(ctx context.Context, params inference.GenerateRequest) (string, error) {
	requestBody := client.getRequestBody(params)

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		Post("/chat/completions")
	if err != nil {
		return "", &inference.NetworkError{Err: fmt.Errorf("httpClient.Post > %w", err)}
	}
	if response.IsError() {
		return "", &inference.HTTPError{StatusCode: response.StatusCode(), Body: response.String()}
	}

	var responseBody ChatCompletionResponse
	if err := json.Unmarshal([]byte(response.String()), &responseBody); err != nil {
		return "", &inference.ParseError{Message: fmt.Sprintf("json.Unmarshal() > %v", err)}
	}
	if len(responseBody.Choices) == 0 {
		return "", &inference.ParseError{Message: "empty response choices: " + response.String()}
	}

	content := strings.TrimSpace(responseBody.Choices[0].Message.Content)
	if content == "" {
		return "", &inference.ParseError{Message: "empty response content: " + response.String()}
	}
	slog.Default().Debug("chat completion response",
		"model", client.model,
		"usage", responseBody.Usage,
	)
	return content, nil
}
