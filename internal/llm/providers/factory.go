package providers

import (
	"fmt"
	"strings"
	"time"

	"github.com/medopaw/ai-cli/internal/config"
	httputil "github.com/medopaw/ai-cli/internal/http"
)

// NewClient creates the appropriate LLM client based on configuration. All
// requests share one pooled HTTP client sized to the pipeline's concurrency.
func NewClient(cfg *config.Config) (LLMClient, error) {
	if err := cfg.ValidateModel(); err != nil {
		return nil, err
	}

	httpClient := httputil.NewHTTPClient(httputil.HTTPClientOptions{
		Timeout:         time.Duration(cfg.Model.TimeoutSeconds) * time.Second,
		SkipSSLVerify:   cfg.Model.SkipSSLVerify,
		MaxConnsPerHost: cfg.Pipeline.MaxConcurrency,
	})

	switch strings.ToLower(cfg.Model.Provider) {
	case "claude":
		return NewClaude(cfg.Model, httpClient), nil

	case "gemini":
		return NewGemini(cfg.Model, httpClient), nil

	case "ollama":
		return NewOllama(cfg.Model, httpClient), nil

	case "openai":
		return NewOpenAI(cfg.Model, httpClient), nil

	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Model.Provider)
	}
}
