package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrConfigurationMissing is returned when the selected provider has no API key.
var ErrConfigurationMissing = errors.New("configuration missing")

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response from the provider.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth retrying: rate limits and server errors.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// ParseError means a 2xx response did not contain the expected text.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "response parsing failed: " + e.Message
}

// IsRetryable determines if an error should trigger a retry
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var networkErr *NetworkError
	if errors.As(err, &networkErr) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	// Truncated bodies surface as parse errors
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return strings.Contains(parseErr.Message, "unexpected end of JSON input")
	}
	return false
}

// UserMessage turns a chat-completion failure into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrConfigurationMissing) {
		return "AI feature unavailable: " + err.Error()
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return "AI response parsing failed."
	}
	return err.Error()
}
