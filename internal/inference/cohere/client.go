// Package cohere implements inference.Client on the Cohere v2 chat API.
package cohere

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/at-ishikawa/neuronest/internal/inference"
)

const BaseURL = "https://api.cohere.com"

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func NewClient(baseURL, apiKey, model string, retryAttempts uint) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID           string `json:"id"`
	FinishReason string `json:"finish_reason"`
	Message      struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// Generate implements the inference.Client interface
func (client *Client) Generate(ctx context.Context, params inference.GenerateRequest) (string, error) {
	return inference.Retry(ctx, client.maxRetryAttempts, func() (string, error) {
		return client.generate(ctx, params)
	})
}

func (client *Client) generate(ctx context.Context, params inference.GenerateRequest) (string, error) {
	body := chatRequest{
		Model:       client.model,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}
	if params.SystemPrompt != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: params.SystemPrompt})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: params.UserPrompt})

	res, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		Post("/v2/chat")
	if err != nil {
		return "", &inference.NetworkError{Err: fmt.Errorf("client.R.Post > %w", err)}
	}
	if res.IsError() {
		return "", &inference.HTTPError{StatusCode: res.StatusCode(), Body: string(res.Body())}
	}

	var decoded chatResponse
	if err := json.Unmarshal(res.Body(), &decoded); err != nil {
		return "", &inference.ParseError{Message: fmt.Sprintf("json.Unmarshal() > %v", err)}
	}

	var parts []string
	for _, c := range decoded.Message.Content {
		if c.Type == "" || c.Type == "text" {
			parts = append(parts, c.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return "", &inference.ParseError{Message: "empty message content: " + string(res.Body())}
	}
	return text, nil
}
