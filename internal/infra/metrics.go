package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotestudio_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPLatency tracks request latency by route pattern.
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotestudio_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// AuthRequests counts sign-up, sign-in and sign-out attempts.
	AuthRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotestudio_auth_requests_total",
			Help: "Total number of auth requests by type and status",
		},
		[]string{"type", "status"},
	)

	// CreditOperations counts ledger mutations by kind and outcome.
	CreditOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotestudio_credit_operations_total",
			Help: "Ledger operations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// RenderDuration tracks design rendering by template and format.
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotestudio_render_duration_seconds",
			Help:    "Time spent rendering and encoding designs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"template", "format"},
	)

	// SQLDuration tracks inline query latency by marker and outcome.
	SQLDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotestudio_sql_duration_seconds",
			Help:    "Latency of marked inline SQL statements",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"marker", "outcome"},
	)

	// BlobUploads counts blob store uploads by provider and outcome.
	BlobUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotestudio_blob_uploads_total",
			Help: "Blob uploads by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
)

// Outcome labels an error for the counters above.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
