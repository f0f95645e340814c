package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendRequests counts outbound calls to the TravelShare backend by operation and outcome.
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelshare_backend_requests_total",
		Help: "Total number of requests to the backend API by operation and outcome",
	}, []string{"operation", "outcome"})

	// BackendRequestLatency records outbound backend call latency per operation.
	BackendRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travelshare_backend_request_latency_seconds",
		Help:    "Backend API request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelshare_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

// ObserveBackendCall records the outcome and latency of a backend API call.
func ObserveBackendCall(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	BackendRequests.WithLabelValues(operation, outcome).Inc()
	BackendRequestLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
