package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client interface defines a single chat completion: a system and a user prompt in, text out.
type Client interface {
	Generate(ctx context.Context, params GenerateRequest) (string, error)
}

// GenerateRequest holds the prompts and sampling parameters of a chat completion.
// Zero Temperature or MaxTokens means the provider default.
type GenerateRequest struct {
	SystemPrompt string  `json:"system_prompt,omitempty"`
	UserPrompt   string  `json:"user_prompt"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
}

const (
	DefaultMaxRetryAttempts = 0
)

// Unavailable returns a Client whose every call fails with err.
// It stands in for a provider whose configuration is missing.
func Unavailable(err error) Client {
	return unavailableClient{err: err}
}

type unavailableClient struct {
	err error
}

func (c unavailableClient) Generate(_ context.Context, _ GenerateRequest) (string, error) {
	return "", c.err
}
