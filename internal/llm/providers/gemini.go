package providers

import (
	"net/http"
	"strings"

	"github.com/medopaw/ai-cli/internal/config"
)

const (
	DefaultGeminiAPI   = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// NewGemini uses Gemini's OpenAI-compatible chat completions endpoint.
func NewGemini(model config.ModelConfig, httpClient *http.Client) LLMClient {
	if model.API == "" {
		model.API = DefaultGeminiAPI
	}
	if model.ID == "" {
		model.ID = DefaultGeminiModel
	}
	return &ChatCompletionsClient{
		name:       "Gemini",
		endpoint:   strings.TrimRight(model.API, "/") + "/v1beta/openai/chat/completions",
		model:      model,
		httpClient: httpClient,
	}
}
