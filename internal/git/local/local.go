// Package local drives the git binary in a working tree.
package local

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Repo is a git working tree on disk. An empty Dir means the current directory.
type Repo struct {
	Dir string
}

// New returns a Repo rooted at dir.
func New(dir string) *Repo {
	return &Repo{Dir: dir}
}

func (r *Repo) run(ctx context.Context, stdin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Running git", "args", args, "dir", r.Dir)
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return stdout.String(), nil
}

// IsRepo reports whether Dir is inside a git working tree.
func (r *Repo) IsRepo(ctx context.Context) bool {
	out, err := r.run(ctx, "", "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// StagedDiff returns the diff of the index against HEAD.
func (r *Repo) StagedDiff(ctx context.Context) (string, error) {
	return r.run(ctx, "", "diff", "--staged", "--no-color", "--no-ext-diff")
}

// StageAll stages every change in the working tree.
func (r *Repo) StageAll(ctx context.Context) error {
	_, err := r.run(ctx, "", "add", ".")
	return err
}

// Commit records the staged changes with message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("empty commit message")
	}
	_, err := r.run(ctx, message, "commit", "--file", "-")
	return err
}

// Push pushes the current branch to its upstream.
func (r *Repo) Push(ctx context.Context) error {
	_, err := r.run(ctx, "", "push")
	return err
}
