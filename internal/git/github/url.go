package github

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/medopaw/ai-cli/internal/git/types"
)

var (
	// https://github.com/owner/repo/compare/base...head
	compareURLRegex = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/compare/(.+?)\.\.\.([^?#]+)$`)
	// https://github.com/owner/repo/pull/123 with optional /files or /commits suffix
	pullURLRegex = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/pull/(\d+)(?:/[^?#]*)?(?:[?#].*)?$`)
)

// PullRef identifies a pull request.
type PullRef struct {
	Owner  string
	Repo   string
	Number int
}

// ParseCompareURL extracts owner, repo, base and head from a GitHub compare URL
func ParseCompareURL(url string) (types.CompareRef, error) {
	matches := compareURLRegex.FindStringSubmatch(url)
	if len(matches) != 5 {
		return types.CompareRef{}, fmt.Errorf("invalid GitHub compare URL format: %s", url)
	}
	return types.CompareRef{
		Host:    "github.com",
		Project: matches[1] + "/" + matches[2],
		Base:    matches[3],
		Head:    matches[4],
	}, nil
}

// ParsePullURL extracts owner, repo and number from a GitHub pull request URL
func ParsePullURL(url string) (PullRef, error) {
	matches := pullURLRegex.FindStringSubmatch(url)
	if len(matches) != 4 {
		return PullRef{}, fmt.Errorf("invalid GitHub pull request URL format: %s", url)
	}
	number, err := strconv.Atoi(matches[3])
	if err != nil || number <= 0 {
		return PullRef{}, fmt.Errorf("invalid pull request number in URL: %s", url)
	}
	return PullRef{Owner: matches[1], Repo: matches[2], Number: number}, nil
}
