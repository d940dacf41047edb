package gitlab

import (
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	httputil "github.com/medopaw/ai-cli/internal/http"
)

const requestTimeout = 60 * time.Second

// NewClient creates a GitLab API client for baseURL. An empty token makes anonymous requests.
func NewClient(token, baseURL string, skipSSLVerify bool) (*gitlab.Client, error) {
	httpClient := httputil.NewHTTPClient(httputil.HTTPClientOptions{
		Timeout:       requestTimeout,
		SkipSSLVerify: skipSSLVerify,
	})
	return gitlab.NewClient(token, gitlab.WithBaseURL(baseURL), gitlab.WithHTTPClient(httpClient))
}
