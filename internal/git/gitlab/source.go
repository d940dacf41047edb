// Package gitlab fetches diffs for GitLab compare URLs.
package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/medopaw/ai-cli/internal/config"
)

// Source implements types.DiffSource for GitLab instances
type Source struct {
	client *gitlab.Client
	host   string
	cfg    config.GitLabConfig
}

// NewSource creates a GitLab diff source from the gitlab section of cfg
func NewSource(cfg *config.Config) (*Source, error) {
	base, err := url.Parse(cfg.GitLab.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid gitlab.base_url %q", cfg.GitLab.BaseURL)
	}
	client, err := NewClient(cfg.GitLab.Token, cfg.GitLab.BaseURL, cfg.GitLab.SkipSSLVerify)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return &Source{client: client, host: base.Host, cfg: cfg.GitLab}, nil
}

func (s *Source) Name() string {
	return "GitLab"
}

func (s *Source) Matches(url string) bool {
	return compareURLRegex.MatchString(url)
}

// FetchDiff returns the three-dot comparison behind a compare URL as a git-style diff
func (s *Source) FetchDiff(ctx context.Context, compareURL string) (string, error) {
	ref, scheme, err := parseCompareURL(compareURL)
	if err != nil {
		return "", err
	}

	client, err := s.clientFor(ref.Host, scheme)
	if err != nil {
		return "", err
	}

	slog.Debug("Fetching GitLab comparison", "host", ref.Host, "project", ref.Project, "base", ref.Base, "head", ref.Head)

	compareOpts := &gitlab.CompareOptions{
		From:     &ref.Base,
		To:       &ref.Head,
		Straight: gitlab.Ptr(false),
	}
	compare, _, err := client.Repositories.Compare(ref.Project, compareOpts, gitlab.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to fetch comparison (project=%s, base=%s, head=%s): %w", ref.Project, ref.Base, ref.Head, err)
	}
	if compare.CompareTimeout {
		slog.Warn("GitLab comparison timed out on the server, diff may be incomplete", "project", ref.Project)
	}

	slog.Debug("GitLab comparison fetched", "commits", len(compare.Commits), "diffs", len(compare.Diffs))
	return renderDiffs(compare.Diffs), nil
}

// clientFor returns the configured client for its own host. Other hosts get an
// anonymous client so the configured token never leaves its instance.
func (s *Source) clientFor(host, scheme string) (*gitlab.Client, error) {
	if host == s.host {
		return s.client, nil
	}
	slog.Debug("Compare URL host differs from gitlab.base_url, using anonymous client", "host", host, "configured", s.host)
	client, err := NewClient("", scheme+"://"+host, s.cfg.SkipSSLVerify)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client for %s: %w", host, err)
	}
	return client, nil
}

// renderDiffs rebuilds the git file headers GitLab strips from each per-file diff
func renderDiffs(diffs []*gitlab.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		if d == nil {
			continue
		}
		oldPath, newPath := d.OldPath, d.NewPath
		if oldPath == "" {
			oldPath = newPath
		}
		if newPath == "" {
			newPath = oldPath
		}

		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", oldPath, newPath)
		switch {
		case d.NewFile:
			fmt.Fprintf(&b, "new file mode %s\n", d.BMode)
		case d.DeletedFile:
			fmt.Fprintf(&b, "deleted file mode %s\n", d.AMode)
		default:
			if d.AMode != "" && d.BMode != "" && d.AMode != d.BMode {
				fmt.Fprintf(&b, "old mode %s\nnew mode %s\n", d.AMode, d.BMode)
			}
			if d.RenamedFile {
				fmt.Fprintf(&b, "rename from %s\nrename to %s\n", oldPath, newPath)
			}
		}

		if d.Diff == "" {
			continue
		}
		from, to := "a/"+oldPath, "b/"+newPath
		if d.NewFile {
			from = "/dev/null"
		}
		if d.DeletedFile {
			to = "/dev/null"
		}
		fmt.Fprintf(&b, "--- %s\n+++ %s\n", from, to)
		b.WriteString(d.Diff)
		if !strings.HasSuffix(d.Diff, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}
