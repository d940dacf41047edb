package github

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-github/v80/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	httputil "github.com/medopaw/ai-cli/internal/http"
)

const requestTimeout = 60 * time.Second

func newHTTPClient() *http.Client {
	return httputil.NewHTTPClient(httputil.HTTPClientOptions{Timeout: requestTimeout})
}

// newRESTClient creates a GitHub REST API client; anonymous when token is empty
func newRESTClient(token string) *github.Client {
	client := github.NewClient(newHTTPClient())
	if token == "" {
		return client
	}
	return client.WithAuthToken(token)
}

// newGraphQLClient creates an authenticated GitHub GraphQL API client.
// GitHub's GraphQL API rejects anonymous requests, so there is no client without a token.
func newGraphQLClient(token string) *githubv4.Client {
	if token == "" {
		return nil
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, newHTTPClient())
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return githubv4.NewClient(oauth2.NewClient(ctx, src))
}
