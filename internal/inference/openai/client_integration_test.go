//go:build integration

package openai_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/at-ishikawa/neuronest/internal/inference"
	"github.com/at-ishikawa/neuronest/internal/inference/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClient_Generate_Integration calls the real API.
// Run with: OPENAI_API_KEY=your-key go test -tags integration -v ./internal/inference/openai
func TestClient_Generate_Integration(t *testing.T) {
	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})),
	)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY environment variable not set, skipping integration test")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	client := openai.NewClient(openai.OpenAIBaseURL, apiKey, model, 1)
	defer func() {
		require.NoError(t, client.Close())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	got, err := client.Generate(ctx, inference.GenerateRequest{
		SystemPrompt: "Answer with a single word.",
		UserPrompt:   "What color is the sky on a clear day?",
		Temperature:  0,
		MaxTokens:    10,
	})
	require.NoError(t, err)
	assert.Contains(t, got, "lue")
}
