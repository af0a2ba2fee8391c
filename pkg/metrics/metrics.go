// Package metrics exposes the Prometheus registry and HTTP handler for the
// item service. All metrics are defined in their respective packages
// (engine, workerpool, store, api) and registered via promauto.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry receives the service metrics; promauto registers into it.
var Registry = prometheus.DefaultRegisterer

// Gatherer is read by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler serves Gatherer in the Prometheus exposition format. Scrapes of
// the handler itself are counted in Registry.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		Registry,
		promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}),
	)
}

// Metrics Documentation
//
// Batch Metrics (pkg/engine):
//   - items_batch_runs_total{result} (Counter): Batch runs by result (ok, snapshot_error, dispatch_error, aggregation_error, cancelled)
//   - items_batch_outcomes_total{outcome} (Counter): Per-item outcomes (succeeded, skipped_not_found, skipped_interrupted, failed)
//   - items_batch_duration_seconds (Histogram): Batch run duration
//   - items_batch_size (Histogram): IDs per batch run
//   - items_item_duration_seconds{outcome} (Histogram): Per-item processing duration
//
// Pool Metrics (pkg/workerpool):
//   - items_pool_tasks_total{result} (Counter): Finished tasks (ok, error, interrupted, panicked)
//   - items_pool_rejections_total{reason} (Counter): Rejected submissions (shutdown, queue_full)
//   - items_pool_queue_depth (Gauge): Tasks waiting for a worker
//   - items_pool_busy_workers (Gauge): Workers currently running a task
//
// Store Metrics (pkg/store):
//   - items_store_operations_total{backend, operation} (Counter): Store calls
//   - items_store_errors_total{backend, operation} (Counter): Store errors (not-found excluded)
//
// HTTP Metrics (internal/api):
//   - items_http_requests_total{route, status} (Counter): Requests by route and status code
//   - items_http_request_duration_seconds{route} (Histogram): Request duration by route
//
// Example Prometheus Queries:
//
//   # Item failure rate
//   sum(rate(items_batch_outcomes_total{outcome="failed"}[5m])) /
//   sum(rate(items_batch_outcomes_total[5m]))
//
//   # Pool saturation
//   items_pool_busy_workers / 10
//
//   # P95 batch duration
//   histogram_quantile(0.95, rate(items_batch_duration_seconds_bucket[5m]))
