// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LLMRequestDuration tracks hosted-model request duration per mode.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Hosted model request duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"mode", "status"},
	)

	// LLMFallbacksTotal counts degraded fallback responses served per mode.
	LLMFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_fallbacks_total",
			Help: "Degraded fallback responses served after upstream failure",
		},
		[]string{"mode"},
	)

	// MessagesTotal tracks total messages stored.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages stored",
		},
		[]string{"sender"},
	)

	// DocumentsIndexedTotal counts documents added to the vector index.
	DocumentsIndexedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "documents_indexed_total",
			Help: "Documents added to the vector index",
		},
	)

	// VectorSearchDuration tracks similarity search duration.
	VectorSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vector_search_duration_seconds",
			Help:    "Vector index similarity search duration",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2.5},
		},
	)

	// CascadeDeletesTotal counts cascading record deletions per entity kind.
	CascadeDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_cascade_deletes_total",
			Help: "Records removed by cascading deletes",
		},
		[]string{"entity"},
	)

	// OCRRequestsTotal counts OCR extractions per source kind.
	OCRRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_requests_total",
			Help: "OCR text extractions",
		},
		[]string{"kind", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMRequest records metrics for a hosted-model call.
func RecordLLMRequest(mode, status string, duration float64) {
	LLMRequestDuration.WithLabelValues(mode, status).Observe(duration)
}
