package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/medopaw/ai-cli/internal/config"
	"github.com/medopaw/ai-cli/internal/diff"
	"github.com/medopaw/ai-cli/internal/llm/prompts/user"
	"github.com/medopaw/ai-cli/internal/llm/providers"
	"github.com/medopaw/ai-cli/internal/metrics"
	"github.com/medopaw/ai-cli/internal/report"
	"github.com/medopaw/ai-cli/internal/summarize"
)

// ErrEmptyDiff is returned when there is nothing to describe.
var ErrEmptyDiff = errors.New("diff is empty")

// segmentDiff is swapped in tests to observe segmentation.
var segmentDiff = diff.Segment

type CommitGenerator struct {
	llmClient providers.LLMClient
	config    *config.Config

	// Progress, when set, receives segment progress for large diffs.
	Progress summarize.ProgressFunc
	// Metrics may be nil.
	Metrics *metrics.Collector
}

// Result is the outcome of Process.
type Result struct {
	Message string
	// Segmented is true when the diff went through the segment pipeline.
	Segmented bool
	Segments  int
	Summary   *report.StructuredSummary
}

func NewCommitGenerator(cfg *config.Config, llmClient providers.LLMClient) *CommitGenerator {
	return &CommitGenerator{
		llmClient: llmClient,
		config:    cfg,
	}
}

// Process produces a commit message for raw. Diffs shorter than
// pipeline.max_diff_length characters are sent in a single request; longer ones
// are segmented, summarized concurrently and aggregated first. A failed segment
// surfaces as *summarize.AggregateError and no message is generated.
func (cg *CommitGenerator) Process(ctx context.Context, raw string) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyDiff
	}

	length := diff.Length(raw)
	cg.Metrics.ObserveDiff(length)

	if length < cg.config.Pipeline.MaxDiffLength {
		slog.Debug("Generating commit message in a single request", "chars", length)
		message, err := cg.generate(ctx, user.RenderCommitPrompt(cg.config.Git.CommitPrompt, raw))
		if err != nil {
			cg.Metrics.RunFinished("single", "error")
			return nil, err
		}
		cg.Metrics.RunFinished("single", "ok")
		return &Result{Message: message}, nil
	}

	result, err := cg.processSegmented(ctx, raw, length)
	if err != nil {
		cg.Metrics.RunFinished("segmented", "error")
		return nil, err
	}
	cg.Metrics.RunFinished("segmented", "ok")
	return result, nil
}

func (cg *CommitGenerator) processSegmented(ctx context.Context, raw string, length int) (*Result, error) {
	pipeline := cg.config.Pipeline

	stats := diff.ExtractStats(raw)
	segments := segmentDiff(raw, pipeline.MaxDiffLength)

	slog.Info("Diff exceeds max_diff_length, summarizing in segments",
		"chars", length,
		"max_diff_length", pipeline.MaxDiffLength,
		"segments", len(segments),
		"files", stats.FilesChanged)

	summarizer := &summarize.Summarizer{
		Client:        cg.llmClient,
		Limit:         pipeline.MaxConcurrency,
		Timeout:       time.Duration(pipeline.SegmentTimeoutSeconds) * time.Second,
		Progress:      cg.Progress,
		PromptVersion: pipeline.SummaryPromptVersion,
		Metrics:       cg.Metrics,
	}

	summaries, err := summarizer.Summarize(ctx, segments)
	if err != nil {
		return nil, err
	}

	summary := report.Aggregate(stats, summaries)

	prompt, err := user.RenderSummaryCommitPrompt(cg.config.Git.CommitPrompt, summary.String())
	if err != nil {
		return nil, err
	}

	message, err := cg.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &Result{
		Message:   message,
		Segmented: true,
		Segments:  len(segments),
		Summary:   summary,
	}, nil
}

func (cg *CommitGenerator) generate(ctx context.Context, prompt string) (string, error) {
	reply, err := cg.llmClient.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate commit message: %w", err)
	}

	message := cleanMessage(reply)
	if message == "" {
		return "", fmt.Errorf("generate commit message: model returned an empty message")
	}
	return message, nil
}

// cleanMessage drops a surrounding markdown code fence and outer whitespace.
func cleanMessage(reply string) string {
	msg := strings.TrimSpace(reply)
	if !strings.HasPrefix(msg, "```") {
		return msg
	}

	lines := strings.Split(msg, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return msg
	}
	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}
