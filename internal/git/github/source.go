// Package github fetches diffs for GitHub compare and pull request URLs.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-github/v80/github"
	"github.com/shurcooL/githubv4"

	"github.com/medopaw/ai-cli/internal/config"
	"github.com/medopaw/ai-cli/internal/git/types"
)

// Source implements types.DiffSource for github.com
type Source struct {
	rest    *github.Client
	graphql *githubv4.Client
}

// NewSource creates a GitHub diff source from the github section of cfg
func NewSource(cfg *config.Config) *Source {
	return newSource(newRESTClient(cfg.GitHub.Token), newGraphQLClient(cfg.GitHub.Token))
}

func newSource(rest *github.Client, graphql *githubv4.Client) *Source {
	return &Source{rest: rest, graphql: graphql}
}

func (s *Source) Name() string {
	return "GitHub"
}

func (s *Source) Matches(url string) bool {
	return compareURLRegex.MatchString(url) || pullURLRegex.MatchString(url)
}

// FetchDiff returns the unified diff behind a compare URL, or behind a pull request
// as the comparison of its base and head commits
func (s *Source) FetchDiff(ctx context.Context, url string) (string, error) {
	var ref types.CompareRef
	if pullURLRegex.MatchString(url) {
		pull, err := ParsePullURL(url)
		if err != nil {
			return "", err
		}
		ref, err = s.resolvePull(ctx, pull)
		if err != nil {
			return "", err
		}
	} else {
		var err error
		ref, err = ParseCompareURL(url)
		if err != nil {
			return "", err
		}
	}

	owner, repo, _ := strings.Cut(ref.Project, "/")
	slog.Debug("Fetching GitHub comparison", "owner", owner, "repo", repo, "base", ref.Base, "head", ref.Head)

	raw, _, err := s.rest.Repositories.CompareCommitsRaw(ctx, owner, repo, ref.Base, ref.Head, github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", fmt.Errorf("failed to fetch comparison from GitHub (owner=%s, repo=%s, base=%s, head=%s): %w",
			owner, repo, ref.Base, ref.Head, err)
	}
	return raw, nil
}

// resolvePull finds the base and head commits of a pull request, through GraphQL when
// a token is configured and the REST API otherwise
func (s *Source) resolvePull(ctx context.Context, pull PullRef) (types.CompareRef, error) {
	ref := types.CompareRef{Host: "github.com", Project: pull.Owner + "/" + pull.Repo}

	if s.graphql != nil {
		var query struct {
			Repository struct {
				PullRequest struct {
					BaseRefOid githubv4.GitObjectID
					HeadRefOid githubv4.GitObjectID
				} `graphql:"pullRequest(number: $number)"`
			} `graphql:"repository(owner: $owner, name: $repo)"`
		}
		variables := map[string]any{
			"owner":  githubv4.String(pull.Owner),
			"repo":   githubv4.String(pull.Repo),
			"number": githubv4.Int(pull.Number),
		}
		if err := s.graphql.Query(ctx, &query, variables); err != nil {
			return ref, fmt.Errorf("failed to query pull request %s#%d: %w", ref.Project, pull.Number, err)
		}
		ref.Base = string(query.Repository.PullRequest.BaseRefOid)
		ref.Head = string(query.Repository.PullRequest.HeadRefOid)
	} else {
		pr, _, err := s.rest.PullRequests.Get(ctx, pull.Owner, pull.Repo, pull.Number)
		if err != nil {
			return ref, fmt.Errorf("failed to fetch pull request %s#%d: %w", ref.Project, pull.Number, err)
		}
		ref.Base = pr.GetBase().GetSHA()
		ref.Head = pr.GetHead().GetSHA()
	}

	if ref.Base == "" || ref.Head == "" {
		return ref, fmt.Errorf("pull request %s#%d has no base or head commit", ref.Project, pull.Number)
	}
	slog.Debug("Resolved pull request", "repo", ref.Project, "pr", pull.Number, "base", ref.Base, "head", ref.Head)
	return ref, nil
}
