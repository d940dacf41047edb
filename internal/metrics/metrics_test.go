package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsRequests(t *testing.T) {
	c := New()

	c.AddSegments(3)
	doneA := c.RequestStarted()
	doneB := c.RequestStarted()
	assert.InDelta(t, 2, testutil.ToFloat64(c.inFlight), 0)

	doneA(ResultOK)
	doneB(ResultTimeout)

	assert.InDelta(t, 3, testutil.ToFloat64(c.segments), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(c.inFlight), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.results.WithLabelValues(ResultOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.results.WithLabelValues(ResultTimeout)), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(c.latency))
}

func TestCollectorRuns(t *testing.T) {
	c := New()

	c.RunFinished("single", "ok")
	c.RunFinished("segmented", "ok")
	c.RunFinished("segmented", "error")

	assert.InDelta(t, 1, testutil.ToFloat64(c.runs.WithLabelValues("segmented", "error")), 0)
	assert.Equal(t, 3, testutil.CollectAndCount(c.runs))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveDiff(100)
		c.AddSegments(2)
		c.RequestStarted()(ResultRemote)
		c.RunFinished("single", "ok")
	})
	assert.NoError(t, c.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
	assert.Nil(t, c.Registry())
}

func TestWriteTextfile(t *testing.T) {
	c := New()
	c.ObserveDiff(12000)
	c.AddSegments(2)

	path := filepath.Join(t.TempDir(), "ai.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, "ai_segments_total 2"), out)
	assert.Contains(t, out, "ai_diff_length_chars_count 1")
}

func TestWriteTextfileEmptyPathIsNoop(t *testing.T) {
	assert.NoError(t, New().WriteTextfile(""))
}
