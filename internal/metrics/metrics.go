// Package metrics exposes prometheus instrumentation for the provisioning
// client. Collectors are registered on the default registry; embedding
// programs decide whether to serve them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provisor_api_requests_total",
		Help: "REST attempts against the control plane, by method and classified outcome.",
	}, []string{"method", "outcome"})

	retryWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provisor_retry_waits_total",
		Help: "Backoff delays taken before re-attempting a failed call.",
	}, []string{"operation"})

	provisionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provisor_operation_duration_seconds",
		Help:    "End-to-end duration of resource lifecycle operations.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	}, []string{"kind", "operation"})

	provisionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provisor_operations_total",
		Help: "Completed lifecycle operations, by resource kind and final status.",
	}, []string{"kind", "operation", "status"})
)

// ObserveRequest records one REST attempt.
func ObserveRequest(method, outcome string) {
	apiRequests.WithLabelValues(method, outcome).Inc()
}

// ObserveRetryWait records one backoff delay for the named operation.
func ObserveRetryWait(operation string) {
	retryWaits.WithLabelValues(operation).Inc()
}

// ObserveOperation records a finished lifecycle operation.
func ObserveOperation(kind, operation, status string, elapsed time.Duration) {
	provisionDuration.WithLabelValues(kind, operation).Observe(elapsed.Seconds())
	provisionOutcomes.WithLabelValues(kind, operation, status).Inc()
}
