// Package summarize sends diff segments to a model under a concurrency cap and a
// per-request timeout and collects one description per file.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/medopaw/ai-cli/internal/diff"
	"github.com/medopaw/ai-cli/internal/llm/prompts/system"
	"github.com/medopaw/ai-cli/internal/llm/prompts/user"
	"github.com/medopaw/ai-cli/internal/llm/providers"
	"github.com/medopaw/ai-cli/internal/metrics"
)

// ProgressFunc receives the number of resolved segments after each one resolves.
// Calls are serialized and completed never decreases.
type ProgressFunc func(completed, total int)

type Summarizer struct {
	Client providers.LLMClient
	// Limit caps outstanding requests; values below 1 mean 1.
	Limit int
	// Timeout bounds each request; zero means no per-request deadline.
	Timeout       time.Duration
	Progress      ProgressFunc
	PromptVersion string
	Metrics       *metrics.Collector
}

// Run is the bookkeeping for one Summarize call.
type Run struct {
	ID    string
	Total int

	mu        sync.Mutex
	next      int
	completed int
}

func newRun(total int) *Run {
	return &Run{ID: uuid.NewString(), Total: total}
}

// dispatch returns the next segment index to hand to a worker.
func (r *Run) dispatch() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.next
	r.next++
	return i
}

// resolve counts a finished segment and reports progress while holding the lock.
func (r *Run) resolve(progress ProgressFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
	if progress != nil {
		progress(r.completed, r.Total)
	}
}

// Summarize returns the file summaries of all segments in segment order. If any
// segment fails the remaining work is cancelled and the result is an
// *AggregateError with no summaries. Cancelling ctx returns ctx.Err().
func (s *Summarizer) Summarize(ctx context.Context, segments []diff.DiffSegment) ([]FileSummary, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	run := newRun(len(segments))
	limit := max(s.Limit, 1)
	slots := make([][]FileSummary, len(segments))

	slog.Debug("Summarizing segments", "run_id", run.ID, "segments", run.Total, "limit", limit, "timeout", s.Timeout)
	s.Metrics.AddSegments(run.Total)

	g, batchCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for range segments {
		if batchCtx.Err() != nil {
			break
		}
		i := run.dispatch()
		g.Go(func() error {
			// queued behind the limit while a sibling failed
			if batchCtx.Err() != nil {
				return nil
			}

			summaries, err := s.summarizeSegment(batchCtx, run, segments[i])
			if batchCtx.Err() != nil && err == nil {
				// late result of a cancelled batch
				return nil
			}
			if err != nil {
				if errors.Is(err, context.Canceled) && batchCtx.Err() != nil {
					return err
				}
				run.resolve(s.Progress)
				return err
			}

			slots[i] = summaries
			run.resolve(s.Progress)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, s.aggregateError(run, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []FileSummary
	for _, summaries := range slots {
		out = append(out, summaries...)
	}

	slog.Debug("Segments summarized", "run_id", run.ID, "segments", run.Total, "files", len(out))
	return out, nil
}

func (s *Summarizer) aggregateError(run *Run, err error) *AggregateError {
	agg := &AggregateError{RunID: run.ID, Total: run.Total, Err: err}

	var timeout *TimeoutError
	var remote *RemoteError
	switch {
	case errors.As(err, &timeout):
		agg.Segment = timeout.Segment
	case errors.As(err, &remote):
		agg.Segment = remote.Segment
	}

	slog.Warn("Segment summarization failed, discarding results",
		"run_id", run.ID, "segment", agg.Segment+1, "total", run.Total, "error", err)
	return agg
}

// summarizeSegment performs one request with its own deadline.
func (s *Summarizer) summarizeSegment(batchCtx context.Context, run *Run, seg diff.DiffSegment) ([]FileSummary, error) {
	prompt, err := user.RenderSegmentPrompt(user.SegmentPromptData{
		Instructions: system.GetSystemPrompt(s.PromptVersion),
		Part:         seg.Index + 1,
		Total:        run.Total,
		Paths:        seg.Paths(),
		Diff:         seg.Payload,
	})
	if err != nil {
		return nil, &RemoteError{Segment: seg.Index, Err: err}
	}

	reqCtx, cancel := batchCtx, context.CancelFunc(func() {})
	if s.Timeout > 0 {
		reqCtx, cancel = context.WithTimeout(batchCtx, s.Timeout)
	}
	defer cancel()

	slog.Debug("Summarizing segment", "run_id", run.ID, "segment", seg.Index+1, "files", len(seg.Blocks), "chars", seg.Length)

	done := s.Metrics.RequestStarted()
	start := time.Now()
	reply, err := s.Client.Generate(reqCtx, prompt)
	elapsed := time.Since(start)

	switch {
	case err == nil:
	case batchCtx.Err() != nil:
		done(metrics.ResultCancelled)
		return nil, fmt.Errorf("segment %d: %w", seg.Index+1, context.Canceled)
	case errors.Is(reqCtx.Err(), context.DeadlineExceeded):
		done(metrics.ResultTimeout)
		return nil, &TimeoutError{Segment: seg.Index, Timeout: s.Timeout}
	default:
		done(metrics.ResultRemote)
		return nil, &RemoteError{Segment: seg.Index, Err: err}
	}

	summaries, err := ParseResponse(reply, seg.Paths())
	if err != nil {
		done(metrics.ResultRemote)
		return nil, &RemoteError{Segment: seg.Index, Err: err}
	}

	done(metrics.ResultOK)
	slog.Debug("Segment summarized", "run_id", run.ID, "segment", seg.Index+1, "files", len(summaries), "elapsed", elapsed)
	return summaries, nil
}
