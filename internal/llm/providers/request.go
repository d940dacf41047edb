package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	llmerrors "github.com/medopaw/ai-cli/internal/llm/errors"
	"github.com/medopaw/ai-cli/internal/logger"
)

// postJSON sends payload to url and decodes a 200 response into out. Non-200
// responses are classified by llmerrors.FromResponse.
func postJSON(ctx context.Context, httpClient *http.Client, provider, url, userKey string, payload, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	slog.Log(ctx, logger.LevelTrace, provider+" API request", "request", string(jsonData))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if userKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+userKey)
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return llmerrors.FromResponse(provider, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	slog.Log(ctx, logger.LevelTrace, provider+" API response", "response", string(body))

	return nil
}
