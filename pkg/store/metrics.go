package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations tracks store calls by backend and operation
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_store_operations_total",
			Help: "Total number of item store operations",
		},
		[]string{"backend", "operation"}, // "memory"|"redis", "find"|"save"|...
	)

	// StoreErrors tracks store operation errors (not-found is not an error)
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_store_errors_total",
			Help: "Total number of item store operation errors",
		},
		[]string{"backend", "operation"},
	)
)
