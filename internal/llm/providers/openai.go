package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/medopaw/ai-cli/internal/config"
)

const (
	DefaultOpenAIAPI   = "https://api.openai.com/v1"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// ChatCompletionsClient speaks the OpenAI chat completions protocol. It serves
// OpenAI itself, DeepSeek and any other compatible endpoint, and backs the
// Gemini provider through Google's compatibility layer.
type ChatCompletionsClient struct {
	name       string
	endpoint   string
	model      config.ModelConfig
	httpClient *http.Client
}

type ChatRequest struct {
	MaxTokens   int           `json:"max_tokens"`
	Messages    []ChatMessage `json:"messages"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
}

type ChatMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type ChatResponse struct {
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

type ChatChoice struct {
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type ChatUsage struct {
	CompletionTokens int `json:"completion_tokens"`
	PromptTokens     int `json:"prompt_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewOpenAI creates a chat completions client. model.api is the base URL up to and
// including the version segment, for example https://api.deepseek.com/v1.
func NewOpenAI(model config.ModelConfig, httpClient *http.Client) LLMClient {
	if model.API == "" {
		model.API = DefaultOpenAIAPI
	}
	if model.ID == "" {
		model.ID = DefaultOpenAIModel
	}
	return &ChatCompletionsClient{
		name:       "OpenAI",
		endpoint:   strings.TrimRight(model.API, "/") + "/chat/completions",
		model:      model,
		httpClient: httpClient,
	}
}

func (c *ChatCompletionsClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := ChatRequest{
		Model: c.model.ID,
		Messages: []ChatMessage{{
			Role:    "user",
			Content: prompt,
		}},
		MaxTokens:   c.model.MaxResponseTokens,
		Temperature: 0,
	}

	slog.Debug("Sending request to LLM", "provider", c.name, "model", c.model.ID, "prompt_chars", len(prompt))

	var response ChatResponse
	if err := postJSON(ctx, c.httpClient, c.name, c.endpoint, c.model.UserKey, req, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	if response.Choices[0].FinishReason == "length" {
		slog.Warn("Model reply was cut off at max_response_tokens", "provider", c.name, "max_tokens", c.model.MaxResponseTokens)
	}

	slog.Debug(c.name+" API token usage",
		"input_tokens", response.Usage.PromptTokens,
		"output_tokens", response.Usage.CompletionTokens,
		"total_tokens", response.Usage.TotalTokens)

	return response.Choices[0].Message.Content, nil
}
