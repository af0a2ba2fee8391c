package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for batch runs.
var (
	batchRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "items_batch_runs_total",
		Help: "Total batch runs by result",
	}, []string{"result"}) // "ok", "snapshot_error", "dispatch_error", "aggregation_error", "cancelled"

	batchOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "items_batch_outcomes_total",
		Help: "Total per-item outcomes by kind",
	}, []string{"outcome"}) // "succeeded", "skipped_not_found", "skipped_interrupted", "failed"

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "items_batch_duration_seconds",
		Help:    "Batch run duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "items_batch_size",
		Help:    "Number of IDs per batch run",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	itemDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "items_item_duration_seconds",
		Help:    "Per-item processing duration by outcome",
		Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5},
	}, []string{"outcome"})
)
