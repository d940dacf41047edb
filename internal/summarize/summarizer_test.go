package summarize

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medopaw/ai-cli/internal/diff"
	"github.com/medopaw/ai-cli/internal/metrics"
)

var (
	partPattern = regexp.MustCompile(`part (\d+) of`)
	filePattern = regexp.MustCompile(`(?m)^diff --git a/(\S+) b/`)
)

// fakeClient answers every prompt through generate.
type fakeClient struct {
	generate func(ctx context.Context, segment int, prompt string) (string, error)
	calls    atomic.Int32
}

func (f *fakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	return f.generate(ctx, segmentOf(prompt), prompt)
}

// segmentOf recovers the zero-based segment index from a rendered prompt.
func segmentOf(prompt string) int {
	m := partPattern.FindStringSubmatch(prompt)
	if m == nil {
		return -1
	}
	n, _ := strconv.Atoi(m[1])
	return n - 1
}

// replyFor describes every file named in the prompt's diff.
func replyFor(prompt string) string {
	var b strings.Builder
	for _, m := range filePattern.FindAllStringSubmatch(prompt, -1) {
		fmt.Fprintf(&b, "- %s: updated %s\n", m[1], m[1])
	}
	return b.String()
}

func echo(_ context.Context, _ int, prompt string) (string, error) {
	return replyFor(prompt), nil
}

// segmentsFor builds n single-file segments named f0.go, f1.go, ...
func segmentsFor(t *testing.T, n int) []diff.DiffSegment {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "diff --git a/f%d.go b/f%d.go\n--- a/f%d.go\n+++ b/f%d.go\n@@ -1 +1 @@\n-old\n+new\n", i, i, i, i)
	}
	segments := diff.Segment(b.String(), 1)
	require.Len(t, segments, n)
	return segments
}

func paths(summaries []FileSummary) []string {
	out := make([]string, len(summaries))
	for i, s := range summaries {
		out[i] = s.Path
	}
	return out
}

func TestSummarizeEmpty(t *testing.T) {
	client := &fakeClient{generate: echo}
	s := &Summarizer{Client: client, Limit: 3}

	summaries, err := s.Summarize(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.Zero(t, client.calls.Load())
}

func TestSummarizeKeepsSegmentOrder(t *testing.T) {
	// later segments finish first
	client := &fakeClient{generate: func(ctx context.Context, segment int, prompt string) (string, error) {
		time.Sleep(time.Duration(5-segment) * 15 * time.Millisecond)
		return replyFor(prompt), nil
	}}
	s := &Summarizer{Client: client, Limit: 5, Timeout: 5 * time.Second}

	summaries, err := s.Summarize(context.Background(), segmentsFor(t, 5))

	require.NoError(t, err)
	assert.Equal(t, []string{"f0.go", "f1.go", "f2.go", "f3.go", "f4.go"}, paths(summaries))
	assert.Equal(t, "updated f3.go", summaries[3].Description)
}

func TestSummarizeRespectsConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	client := &fakeClient{generate: func(ctx context.Context, _ int, prompt string) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		return replyFor(prompt), nil
	}}
	s := &Summarizer{Client: client, Limit: 3, Timeout: 5 * time.Second}

	summaries, err := s.Summarize(context.Background(), segmentsFor(t, 10))

	require.NoError(t, err)
	assert.Len(t, summaries, 10)
	assert.Equal(t, int32(10), client.calls.Load())
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Equal(t, int32(3), peak.Load())
}

func TestSummarizeDispatchesInSegmentOrder(t *testing.T) {
	var mu sync.Mutex
	var order []int
	client := &fakeClient{generate: func(ctx context.Context, segment int, prompt string) (string, error) {
		mu.Lock()
		order = append(order, segment)
		mu.Unlock()
		return replyFor(prompt), nil
	}}
	s := &Summarizer{Client: client, Limit: 1}

	_, err := s.Summarize(context.Background(), segmentsFor(t, 6))

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, order)
}

func TestSummarizeTimeoutCancelsBatch(t *testing.T) {
	var progress []int
	client := &fakeClient{generate: func(ctx context.Context, segment int, prompt string) (string, error) {
		if segment == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		// slow but successful, arrives after the batch failed
		time.Sleep(400 * time.Millisecond)
		return replyFor(prompt), nil
	}}
	s := &Summarizer{
		Client:  client,
		Limit:   3,
		Timeout: 50 * time.Millisecond,
		Progress: func(completed, total int) {
			progress = append(progress, completed)
		},
	}

	summaries, err := s.Summarize(context.Background(), segmentsFor(t, 5))

	assert.Nil(t, summaries)
	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Equal(t, 1, agg.Segment)
	assert.Equal(t, 5, agg.Total)
	assert.NotEmpty(t, agg.RunID)

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, 1, timeout.Segment)
	assert.Equal(t, 50*time.Millisecond, timeout.Timeout)

	assert.Equal(t, int32(3), client.calls.Load(), "queued segments must not be sent after the failure")
	assert.Equal(t, []int{1}, progress, "late results are not reported")
}

func TestSummarizeRemoteFailureDiscardsEverything(t *testing.T) {
	backendDown := errors.New("backend unavailable")
	client := &fakeClient{generate: func(ctx context.Context, segment int, prompt string) (string, error) {
		if segment == 2 {
			return "", backendDown
		}
		return replyFor(prompt), nil
	}}
	s := &Summarizer{Client: client, Limit: 1}

	summaries, err := s.Summarize(context.Background(), segmentsFor(t, 5))

	assert.Nil(t, summaries)
	require.ErrorIs(t, err, backendDown)
	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Equal(t, 2, agg.Segment)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 2, remote.Segment)
	assert.Equal(t, int32(3), client.calls.Load())
}

func TestSummarizeUnparseableReply(t *testing.T) {
	client := &fakeClient{generate: func(ctx context.Context, segment int, prompt string) (string, error) {
		return "I cannot help with that.", nil
	}}
	s := &Summarizer{Client: client, Limit: 2}

	_, err := s.Summarize(context.Background(), segmentsFor(t, 2))

	require.ErrorIs(t, err, ErrUnparseableResponse)
	var remote *RemoteError
	assert.ErrorAs(t, err, &remote)
}

func TestSummarizeProgressIsMonotonic(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	totals := map[int]bool{}
	client := &fakeClient{generate: func(ctx context.Context, segment int, prompt string) (string, error) {
		time.Sleep(time.Duration(segment%3) * 5 * time.Millisecond)
		return replyFor(prompt), nil
	}}
	s := &Summarizer{
		Client: client,
		Limit:  4,
		Progress: func(completed, total int) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, completed)
			totals[total] = true
		},
	}

	_, err := s.Summarize(context.Background(), segmentsFor(t, 12))

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, seen)
	assert.Equal(t, map[int]bool{12: true}, totals)
}

func TestSummarizeCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &fakeClient{generate: func(reqCtx context.Context, segment int, prompt string) (string, error) {
		cancel()
		<-reqCtx.Done()
		return "", reqCtx.Err()
	}}
	s := &Summarizer{Client: client, Limit: 2, Timeout: time.Second}

	summaries, err := s.Summarize(ctx, segmentsFor(t, 4))

	assert.Nil(t, summaries)
	assert.ErrorIs(t, err, context.Canceled)
	var agg *AggregateError
	assert.False(t, errors.As(err, &agg))
}

func TestSummarizeRecordsMetrics(t *testing.T) {
	collector := metrics.New()
	s := &Summarizer{Client: &fakeClient{generate: echo}, Limit: 2, Metrics: collector}

	_, err := s.Summarize(context.Background(), segmentsFor(t, 4))
	require.NoError(t, err)

	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == "ai_segments_total" {
			found = true
			assert.InDelta(t, 4, mf.GetMetric()[0].GetCounter().GetValue(), 0)
		}
	}
	assert.True(t, found)
}

func TestSummarizeSegmentWithoutHeaders(t *testing.T) {
	segments := diff.Segment("just some text\nwithout headers\n", 8000)
	client := &fakeClient{generate: func(ctx context.Context, segment int, prompt string) (string, error) {
		return "Edited some notes.", nil
	}}
	s := &Summarizer{Client: client, Limit: 1}

	summaries, err := s.Summarize(context.Background(), segments)

	require.NoError(t, err)
	assert.Equal(t, []FileSummary{{Description: "Edited some notes."}}, summaries)
}
