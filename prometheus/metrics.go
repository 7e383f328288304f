package prometheus

import (
	"inventory-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Record store metrics
	RecordOperationsCounter prometheus.CounterVec

	// Attachment store metrics
	AttachmentSavesCounter    prometheus.CounterVec
	AttachmentFallbackCounter prometheus.Counter
	AttachmentDeletesCounter  prometheus.Counter

	// Export metrics
	ExportsCounter prometheus.CounterVec

	// Sync merge metrics
	SyncMergesCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Record store operations by entity and operation
	RecordOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_record_operations_total",
			Help: "Total number of record store operations",
		},
		[]string{"entity", "operation"},
	)

	// Attachment saves by category
	AttachmentSavesCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_attachment_saves_total",
			Help: "Total number of attachment images saved",
		},
		[]string{"category"},
	)

	AttachmentFallbackCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_attachment_fallback_total",
			Help: "Total number of attachment saves that fell back to the side-attribute store",
		},
	)

	AttachmentDeletesCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_attachment_deletes_total",
			Help: "Total number of attachment delete requests",
		},
	)

	// Exports by entity and format
	ExportsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_exports_total",
			Help: "Total number of catalog exports",
		},
		[]string{"entity", "format"},
	)

	// Remote change merges by entity
	SyncMergesCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sync_merges_total",
			Help: "Total number of remote change merges applied",
		},
		[]string{"entity"},
	)
}

// RecordOperation increments the record operation counter for an entity
func RecordOperation(entity, operation string) {
	RecordOperationsCounter.WithLabelValues(entity, operation).Inc()
}
