package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/medopaw/ai-cli/internal/config"
)

// ClaudeClient talks to Claude through a Vertex AI rawPredict endpoint.
type ClaudeClient struct {
	model      config.ModelConfig
	httpClient *http.Client
}

type ClaudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Messages         []ClaudeMessage `json:"messages"`
	Temperature      float64         `json:"temperature"`
}

type ClaudeMessage struct {
	Content []ClaudeContent `json:"content"`
	Role    string          `json:"role"`
}

type ClaudeResponse struct {
	Content []ClaudeContent `json:"content"`
	Usage   ClaudeUsage     `json:"usage"`
}

type ClaudeContent struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type ClaudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func NewClaude(model config.ModelConfig, httpClient *http.Client) LLMClient {
	return &ClaudeClient{model: model, httpClient: httpClient}
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:rawPredict", strings.TrimRight(c.model.API, "/"), c.model.ID)

	req := ClaudeRequest{
		AnthropicVersion: "vertex-2023-10-16",
		Messages: []ClaudeMessage{{
			Role: "user",
			Content: []ClaudeContent{{
				Type: "text",
				Text: prompt,
			}},
		}},
		MaxTokens:   c.model.MaxResponseTokens,
		Temperature: 0,
	}

	slog.Debug("Sending request to LLM", "provider", "Claude", "model", c.model.ID, "prompt_chars", len(prompt))

	var response ClaudeResponse
	if err := postJSON(ctx, c.httpClient, "Claude", endpoint, c.model.UserKey, req, &response); err != nil {
		return "", err
	}

	// Concatenate text blocks; tool or thinking blocks carry no message text
	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" || block.Type == "" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("no content in response")
	}

	slog.Debug("Claude API token usage",
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
		"total_tokens", response.Usage.InputTokens+response.Usage.OutputTokens)

	return text.String(), nil
}
