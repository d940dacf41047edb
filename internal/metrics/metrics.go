// Package metrics records pipeline counters on a private Prometheus registry.
// A CLI run is short lived, so the registry is written to a node_exporter
// textfile at exit instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ai"

// Segment request results.
const (
	ResultOK        = "ok"
	ResultTimeout   = "timeout"
	ResultRemote    = "remote"
	ResultCancelled = "cancelled"
)

// Collector is safe for concurrent use. A nil *Collector discards everything.
type Collector struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	segments prometheus.Counter
	results  *prometheus.CounterVec
	latency  prometheus.Histogram
	inFlight prometheus.Gauge
	diffSize prometheus.Histogram
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Commit message generations by path and outcome.",
		}, []string{"path", "outcome"}),
		segments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_total",
			Help:      "Segments produced from large diffs.",
		}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segment_requests_total",
			Help:      "Segment summarization requests by result.",
		}, []string{"result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "segment_request_duration_seconds",
			Help:      "Latency of segment summarization requests.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "segment_requests_in_flight",
			Help:      "Segment summarization requests currently outstanding.",
		}),
		diffSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diff_length_chars",
			Help:      "Length of processed diffs in characters.",
			Buckets:   prometheus.ExponentialBuckets(1000, 4, 8),
		}),
	}
	c.registry.MustRegister(c.runs, c.segments, c.results, c.latency, c.inFlight, c.diffSize)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) ObserveDiff(chars int) {
	if c == nil {
		return
	}
	c.diffSize.Observe(float64(chars))
}

func (c *Collector) AddSegments(n int) {
	if c == nil {
		return
	}
	c.segments.Add(float64(n))
}

// RequestStarted marks a segment request as outstanding and returns the
// function that records its completion.
func (c *Collector) RequestStarted() func(result string) {
	if c == nil {
		return func(string) {}
	}
	start := time.Now()
	c.inFlight.Inc()
	return func(result string) {
		c.inFlight.Dec()
		c.latency.Observe(time.Since(start).Seconds())
		c.results.WithLabelValues(result).Inc()
	}
}

// RunFinished counts one Process call. path is "single" or "segmented".
func (c *Collector) RunFinished(path, outcome string) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(path, outcome).Inc()
}

// WriteTextfile writes the registry in text exposition format.
func (c *Collector) WriteTextfile(filename string) error {
	if c == nil || filename == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(filename, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
