package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/at-ishikawa/neuronest/internal/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name              string
		request           inference.GenerateRequest
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		want           string
		wantHTTPStatus int
		wantParseError bool
	}{
		{
			name: "returns candidate text",
			request: inference.GenerateRequest{
				SystemPrompt: "You are a coach.",
				UserPrompt:   "Summarize my week",
				Temperature:  0.4,
				MaxTokens:    200,
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)

				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), "Summarize my week")
				assert.Contains(t, string(body), "You are a coach.")

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Steady week."}]},"finishReason":"STOP"}]}`))
			},
			want: "Steady week.",
		},
		{
			name:    "api error maps to http error",
			request: inference.GenerateRequest{UserPrompt: "hi"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
			},
			wantHTTPStatus: http.StatusBadRequest,
		},
		{
			name:    "no candidates",
			request: inference.GenerateRequest{UserPrompt: "hi"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[]}`))
			},
			wantParseError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client, err := NewClient(context.Background(), server.URL+"/", "test-key", "gemini-2.5-flash", 0)
			require.NoError(t, err)

			got, err := client.Generate(context.Background(), tt.request)
			switch {
			case tt.wantHTTPStatus != 0:
				var httpErr *inference.HTTPError
				require.True(t, errors.As(err, &httpErr), "got %v", err)
				assert.Equal(t, tt.wantHTTPStatus, httpErr.StatusCode)
				return
			case tt.wantParseError:
				var parseErr *inference.ParseError
				require.True(t, errors.As(err, &parseErr), "got %v", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
