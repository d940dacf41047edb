package types

import (
	"context"
)

// DiffSource is a place a unified diff can be fetched from (GitHub, GitLab, ...)
type DiffSource interface {
	// Name returns the platform name (e.g., "GitHub", "GitLab")
	Name() string

	// Matches checks if a URL is a compare or review URL this source understands
	Matches(url string) bool

	// FetchDiff returns the git-style unified diff behind url
	FetchDiff(ctx context.Context, url string) (string, error)
}
