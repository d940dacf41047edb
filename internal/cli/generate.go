package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/medopaw/ai-cli/internal"
	"github.com/medopaw/ai-cli/internal/git"
)

// generate runs the commit message pipeline on raw with progress on stderr
func (a *app) generate(ctx context.Context, raw string) (*internal.Result, error) {
	client, err := a.newLLM(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	p := newProgress(a.stderr, a.interactive)
	p.Begin("Waiting for the model...")
	defer p.Stop()

	generator := internal.NewCommitGenerator(a.cfg, client)
	generator.Progress = p.Update
	generator.Metrics = a.metrics

	result, err := generator.Process(ctx, raw)
	if err != nil {
		return nil, err
	}
	if result.Segmented {
		slog.Debug("Commit message generated from segment summaries",
			"segments", result.Segments,
			"files", result.Summary.Stats.FilesChanged)
	}
	return result, nil
}

// readDiff returns the diff named by arg: stdin for "" or "-", otherwise a
// GitHub or GitLab URL
func (a *app) readDiff(ctx context.Context, arg string) (string, error) {
	if arg == "" || arg == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read diff from stdin: %w", err)
		}
		return string(data), nil
	}

	if !strings.HasPrefix(arg, "http://") && !strings.HasPrefix(arg, "https://") {
		return "", fmt.Errorf("expected a compare or pull request URL, or - for stdin; got %q", arg)
	}

	sources, err := a.newSources(a.cfg)
	if err != nil {
		return "", err
	}
	return git.FetchDiff(ctx, sources, arg)
}
