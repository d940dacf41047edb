package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) summarizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [URL|-]",
		Short: "Generate a commit message for a remote comparison or a diff on stdin",
		Long: `Generate a commit message for a diff without committing it.

The diff is read from stdin when no argument or - is given. Otherwise the argument
is a GitHub compare URL, a GitHub pull request URL or a GitLab compare URL.`,
		Example: `  git diff main... | ai summarize
  ai summarize https://github.com/owner/repo/compare/v1.0.0...v1.1.0
  ai summarize https://gitlab.com/group/project/-/compare/v1.0...v1.1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}

			raw, err := a.readDiff(cmd.Context(), arg)
			if err != nil {
				return err
			}

			result, err := a.generate(cmd.Context(), raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, result.Message)
			return nil
		},
	}
}
