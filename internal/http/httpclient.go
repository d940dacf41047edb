package http

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// HTTPClientOptions configures HTTP client creation
type HTTPClientOptions struct {
	// Timeout is the whole-request timeout (0 means no timeout). Per-segment
	// deadlines are carried by the request context instead.
	Timeout time.Duration
	// SkipSSLVerify disables SSL certificate verification (use with caution)
	SkipSSLVerify bool
	// MaxConnsPerHost bounds open connections to a single provider (0 keeps the pool default)
	MaxConnsPerHost int
}

// NewHTTPClient creates an HTTP client on a pooled transport that is not shared
// with http.DefaultTransport.
func NewHTTPClient(opts HTTPClientOptions) *http.Client {
	transport := cleanhttp.DefaultPooledTransport()

	if opts.MaxConnsPerHost > 0 {
		transport.MaxConnsPerHost = opts.MaxConnsPerHost
		transport.MaxIdleConnsPerHost = opts.MaxConnsPerHost
	}

	if opts.SkipSSLVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}
}
