package workerpool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for pool operations.
var (
	poolTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "items_pool_tasks_total",
		Help: "Total pool tasks by result",
	}, []string{"result"}) // "ok", "error", "interrupted", "panicked"

	poolRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "items_pool_rejections_total",
		Help: "Total rejected pool submissions by reason",
	}, []string{"reason"})

	poolQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "items_pool_queue_depth",
		Help: "Number of tasks waiting for a worker",
	})

	poolBusyWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "items_pool_busy_workers",
		Help: "Number of workers currently running a task",
	})
)
