// Package cli implements the ai command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/medopaw/ai-cli/internal/config"
	"github.com/medopaw/ai-cli/internal/git/github"
	"github.com/medopaw/ai-cli/internal/git/gitlab"
	"github.com/medopaw/ai-cli/internal/git/local"
	"github.com/medopaw/ai-cli/internal/git/types"
	"github.com/medopaw/ai-cli/internal/llm/providers"
	"github.com/medopaw/ai-cli/internal/logger"
	"github.com/medopaw/ai-cli/internal/metrics"
	"github.com/medopaw/ai-cli/internal/summarize"
)

// Version is set at build time with -ldflags "-X github.com/medopaw/ai-cli/internal/cli.Version=..."
var Version = "dev"

// gitRepo is the subset of local.Repo the commit command uses
type gitRepo interface {
	IsRepo(ctx context.Context) bool
	StagedDiff(ctx context.Context) (string, error)
	StageAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
}

// app carries the state shared by all subcommands. The constructor fields are
// replaced in tests.
type app struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	metrics *metrics.Collector

	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive bool

	newLLM     func(*config.Config) (providers.LLMClient, error)
	newRepo    func() gitRepo
	newSources func(*config.Config) ([]types.DiffSource, error)
}

func newApp() *app {
	return &app{
		metrics:     metrics.New(),
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		interactive: isatty.IsTerminal(os.Stderr.Fd()),
		newLLM:      providers.NewClient,
		newRepo:     func() gitRepo { return local.New("") },
		newSources:  defaultSources,
	}
}

func defaultSources(cfg *config.Config) ([]types.DiffSource, error) {
	gl, err := gitlab.NewSource(cfg)
	if err != nil {
		return nil, err
	}
	return []types.DiffSource{github.NewSource(cfg), gl}, nil
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	err := a.rootCommand().ExecuteContext(ctx)
	a.writeMetrics()
	if err != nil {
		a.printError(err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ai",
		Short: "Write git commit messages with a language model",
		Long: `ai generates commit messages from git diffs.

Diffs longer than pipeline.max_diff_length characters are split into segments at
file boundaries, summarized concurrently and aggregated before the message is written.

Configuration is read from ~/.ai.conf.toml (or --config) and AI_* environment variables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/"+config.FileName+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(a.commitCommand())
	root.AddCommand(a.summarizeCommand())
	root.AddCommand(a.statsCommand())
	root.AddCommand(versionCommand(a))

	return root
}

func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		if err := cfg.SetLogLevel(a.logLevel); err != nil {
			return err
		}
	}
	logger.Setup(cfg)
	slog.Debug("Configuration loaded", "file", cfg.File, "provider", cfg.Model.Provider)

	a.cfg = cfg
	return nil
}

func (a *app) writeMetrics() {
	if a.cfg == nil || a.cfg.Metrics.Textfile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		slog.Warn("Failed to write metrics textfile", "path", a.cfg.Metrics.Textfile, "error", err)
	}
}

func (a *app) status(format string, args ...any) {
	color.New(color.FgCyan).Fprintf(a.stderr, format+"\n", args...)
}

func (a *app) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(a.stderr, "✓ "+format+"\n", args...)
}

func (a *app) printError(err error) {
	if errors.Is(err, context.Canceled) {
		color.New(color.FgYellow).Fprintln(a.stderr, "Interrupted")
		return
	}
	color.New(color.FgRed).Fprintf(a.stderr, "Error: %s\n", summarize.UserMessage(err))
}

func versionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// no configuration needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "ai %s\n", Version)
		},
	}
}
