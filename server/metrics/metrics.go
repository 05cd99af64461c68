// Package metrics exposes Prometheus metrics for catalog operations:
//
//   - metacat_catalog_operations_total: operations by name and status
//   - metacat_catalog_operation_duration_seconds: operation latency
//   - metacat_capability_degradations_total: silently dropped capabilities
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation status labels
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	// OperationsTotal counts catalog operations
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metacat_catalog_operations_total",
			Help: "Total number of catalog operations",
		},
		[]string{"operation", "status"},
	)

	// OperationDuration tracks catalog operation latency in seconds
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metacat_catalog_operation_duration_seconds",
			Help:    "Catalog operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// CapabilityDegradations counts encodings that dropped an unsupported capability
	CapabilityDegradations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metacat_capability_degradations_total",
			Help: "Total number of capability degradations while encoding catalog objects",
		},
		[]string{"feature"},
	)
)

// RecordOperation records one finished catalog operation
func RecordOperation(operation string, err error, duration time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDegradation counts one degraded encoding of feature
func RecordDegradation(feature string) {
	CapabilityDegradations.WithLabelValues(feature).Inc()
}
