package git

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/medopaw/ai-cli/internal/git/types"
)

// FetchDiff fetches the diff behind url from the first source that understands it.
func FetchDiff(ctx context.Context, sources []types.DiffSource, url string) (string, error) {
	for _, source := range sources {
		if !source.Matches(url) {
			continue
		}

		slog.Debug("Fetching diff", "platform", source.Name(), "url", url)
		raw, err := source.FetchDiff(ctx, url)
		if err != nil {
			return "", fmt.Errorf("fetch diff from %s: %w", source.Name(), err)
		}
		slog.Debug("Fetched diff", "platform", source.Name(), "bytes", len(raw))
		return raw, nil
	}
	return "", fmt.Errorf("unsupported URL: %s (expected a GitHub compare or pull request URL, or a GitLab compare URL)", url)
}
