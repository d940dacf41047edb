package gitlab

import (
	"fmt"
	"regexp"

	"github.com/medopaw/ai-cli/internal/git/types"
)

// compareURLRegex matches GitLab compare URLs and extracts components
// Format: https://gitlab.com/owner/repo/-/compare/base...head
// or: https://gitlab.com/group/subgroup/repo/-/compare/base...head
var compareURLRegex = regexp.MustCompile(`^(https?)://([^/]+)/(.+)/-/compare/(.+?)\.\.\.([^?#]+)`)

// ParseCompareURL extracts host, project path, base and head from a GitLab compare URL
func ParseCompareURL(compareURL string) (types.CompareRef, error) {
	ref, _, err := parseCompareURL(compareURL)
	return ref, err
}

func parseCompareURL(compareURL string) (types.CompareRef, string, error) {
	matches := compareURLRegex.FindStringSubmatch(compareURL)
	if len(matches) != 6 {
		return types.CompareRef{}, "", fmt.Errorf("invalid GitLab compare URL format: %s", compareURL)
	}
	ref := types.CompareRef{
		Host:    matches[2],
		Project: matches[3],
		Base:    matches[4],
		Head:    matches[5],
	}
	return ref, matches[1], nil
}
