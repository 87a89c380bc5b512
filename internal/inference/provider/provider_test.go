package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/neuronest/internal/config"
	"github.com/at-ishikawa/neuronest/internal/inference"
	"github.com/at-ishikawa/neuronest/internal/inference/openai"
)

func TestNewClient_ConfigurationMissing(t *testing.T) {
	for _, name := range []string{"openai", "mistral", "openrouter", "cohere", "gemini"} {
		t.Run(name, func(t *testing.T) {
			_, err := NewClient(context.Background(), config.LLMConfig{Provider: name})
			assert.ErrorIs(t, err, inference.ErrConfigurationMissing)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestNewClient_Providers(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LLMConfig
	}{
		{name: "openai", cfg: config.LLMConfig{Provider: "openai", OpenAI: config.ProviderConfig{APIKey: "k"}}},
		{name: "mistral", cfg: config.LLMConfig{Provider: "mistral", Mistral: config.ProviderConfig{APIKey: "k"}}},
		{name: "openrouter", cfg: config.LLMConfig{Provider: "openrouter", OpenRouter: config.OpenRouterConfig{ProviderConfig: config.ProviderConfig{APIKey: "k"}}}},
		{name: "cohere", cfg: config.LLMConfig{Provider: "cohere", Cohere: config.ProviderConfig{APIKey: "k"}}},
		{name: "gemini", cfg: config.LLMConfig{Provider: "gemini", Gemini: config.ProviderConfig{APIKey: "k"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}

	_, err := NewClient(context.Background(), config.LLMConfig{Provider: "unknown", OpenAI: config.ProviderConfig{APIKey: "k"}})
	assert.Error(t, err)
}

func TestNewClient_AppliesSamplingDefaults(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), config.LLMConfig{
		Provider:    "mistral",
		Temperature: 0.4,
		MaxTokens:   600,
		Mistral:     config.ProviderConfig{APIKey: "k", BaseURL: server.URL},
	})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), inference.GenerateRequest{UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "mistral-small-latest", got.Model)
	assert.Equal(t, 0.4, got.Temperature)
	assert.Equal(t, 600, got.MaxTokens)

	_, err = client.Generate(context.Background(), inference.GenerateRequest{UserPrompt: "hi", Temperature: 0.9, MaxTokens: 50})
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.Temperature)
	assert.Equal(t, 50, got.MaxTokens)
}

func TestNewClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "openai",
		Timeout:  50 * time.Millisecond,
		OpenAI:   config.ProviderConfig{APIKey: "k", BaseURL: server.URL},
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Generate(context.Background(), inference.GenerateRequest{UserPrompt: "hi"})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
