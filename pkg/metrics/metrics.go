package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Analysis computation latency, labeled by kind (timeline, workload, calendar).
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Timeline/workload analysis duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
		},
		[]string{"kind"},
	)

	// Snapshot load latency from PostgreSQL.
	SnapshotLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapshot_load_duration_seconds",
			Help:    "Task/user snapshot load duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"repository"},
	)

	// HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Analysis cache outcomes.
	CacheLookupCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_cache_lookup_count",
			Help: "Analysis cache lookups by outcome",
		},
		[]string{"outcome"}, // outcome: hit, miss, error
	)

	// Projects reported as delayed by the most recent analysis.
	DelayedProjectCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delayed_project_count",
			Help: "Analyses that reported a delayed project, by dominant factor",
		},
		[]string{"factor"}, // factor: task, schedule, progress, overdue
	)
)

// RecordAnalysisDuration records one analysis computation.
func RecordAnalysisDuration(kind string, duration time.Duration) {
	AnalysisDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordSnapshotLoad records one repository snapshot load.
func RecordSnapshotLoad(repository string, duration time.Duration) {
	SnapshotLoadDuration.WithLabelValues(repository).Observe(duration.Seconds())
}

// RecordHTTPRequestDuration records one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementCacheLookup counts one cache lookup outcome.
func IncrementCacheLookup(outcome string) {
	CacheLookupCount.WithLabelValues(outcome).Inc()
}

// IncrementDelayedProject counts one delayed analysis result.
func IncrementDelayedProject(factor string) {
	DelayedProjectCount.WithLabelValues(factor).Inc()
}
