package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// maxBodyInError caps how much of a response body is copied into an error message.
const maxBodyInError = 512

// ContextWindowError represents an error when the LLM's context window is exceeded
type ContextWindowError struct {
	StatusCode int
	Message    string
	Provider   string
}

func (e *ContextWindowError) Error() string {
	return fmt.Sprintf("context window exceeded for %s (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// APIError is a non-success response from a model provider
type APIError struct {
	StatusCode int
	Message    string
	Provider   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Temporary reports whether the status usually clears on its own (rate limits, overload).
// Callers do not retry; the flag only shapes the message shown to the user.
func (e *APIError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return e.StatusCode >= 500 && e.StatusCode != http.StatusNotImplemented
}

// FromResponse classifies a non-200 provider response.
func FromResponse(provider string, statusCode int, body []byte) error {
	message := truncateBody(body)
	if IsContextWindowError(statusCode, body) {
		return &ContextWindowError{
			StatusCode: statusCode,
			Message:    message,
			Provider:   provider,
		}
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Provider:   provider,
	}
}

// IsContextWindowError checks if an HTTP response indicates a context window error
func IsContextWindowError(statusCode int, body []byte) bool {
	// Check status codes that typically indicate payload/context issues
	if statusCode != http.StatusBadRequest && statusCode != http.StatusRequestEntityTooLarge && statusCode != http.StatusTooManyRequests {
		return false
	}

	bodyStr := strings.ToLower(string(body))

	contextWindowIndicators := []string{
		"context length",
		"context window",
		"token limit",
		"maximum context",
		"input too large",
		"prompt is too long",
		"prompt too long",
		"maximum tokens",
		"exceeds maximum",
		"too many tokens",
	}

	for _, indicator := range contextWindowIndicators {
		if strings.Contains(bodyStr, indicator) {
			return true
		}
	}

	return false
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxBodyInError {
		return s
	}
	return s[:maxBodyInError] + "..."
}
