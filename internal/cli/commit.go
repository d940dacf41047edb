package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errNotRepo = errors.New("not in a git repository")

type commitOptions struct {
	all    bool
	dryRun bool
	push   bool
}

func (a *app) commitCommand() *cobra.Command {
	opts := &commitOptions{}
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Generate a commit message for the staged changes and commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCommit(cmd, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "stage all changes before committing")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the message without committing")
	cmd.Flags().BoolVar(&opts.push, "push", false, "push after committing")
	return cmd
}

func (a *app) runCommit(cmd *cobra.Command, opts *commitOptions) error {
	ctx := cmd.Context()
	repo := a.newRepo()

	if !repo.IsRepo(ctx) {
		return errNotRepo
	}
	if opts.dryRun && opts.push {
		return fmt.Errorf("--push cannot be combined with --dry-run")
	}

	if opts.all {
		a.status("Staging all changes...")
		if err := repo.StageAll(ctx); err != nil {
			return err
		}
	}

	raw, err := repo.StagedDiff(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		a.status("No staged changes to commit")
		return nil
	}

	a.status("Generating commit message for %s of changes...", humanize.Bytes(uint64(len(raw))))
	result, err := a.generate(ctx, raw)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, result.Message)
	if opts.dryRun {
		return nil
	}

	if err := repo.Commit(ctx, result.Message); err != nil {
		return err
	}
	a.success("Committed successfully!")

	if opts.push {
		a.status("Pushing...")
		if err := repo.Push(ctx); err != nil {
			return err
		}
		a.success("Pushed successfully!")
	}
	return nil
}
