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
	DefaultOllamaAPI   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2"
)

// OllamaClient uses Ollama's native /api/chat endpoint without streaming.
type OllamaClient struct {
	model      config.ModelConfig
	httpClient *http.Client
}

type OllamaRequest struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model"`
	Options  OllamaOptions `json:"options"`
	Stream   bool          `json:"stream"`
}

type OllamaOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

type OllamaResponse struct {
	Message         ChatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

func NewOllama(model config.ModelConfig, httpClient *http.Client) LLMClient {
	if model.API == "" {
		model.API = DefaultOllamaAPI
	}
	if model.ID == "" {
		model.ID = DefaultOllamaModel
	}
	return &OllamaClient{model: model, httpClient: httpClient}
}

func (o *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := OllamaRequest{
		Model: o.model.ID,
		Messages: []ChatMessage{{
			Role:    "user",
			Content: prompt,
		}},
		Options: OllamaOptions{
			NumPredict:  o.model.MaxResponseTokens,
			Temperature: 0,
		},
		Stream: false,
	}

	slog.Debug("Sending request to LLM", "provider", "Ollama", "model", o.model.ID, "prompt_chars", len(prompt))

	var response OllamaResponse
	url := strings.TrimRight(o.model.API, "/") + "/api/chat"
	if err := postJSON(ctx, o.httpClient, "Ollama", url, o.model.UserKey, req, &response); err != nil {
		return "", err
	}

	if strings.TrimSpace(response.Message.Content) == "" {
		return "", fmt.Errorf("no content in response")
	}

	slog.Debug("Ollama API token usage",
		"input_tokens", response.PromptEvalCount,
		"output_tokens", response.EvalCount,
		"total_tokens", response.PromptEvalCount+response.EvalCount)

	return response.Message.Content, nil
}
