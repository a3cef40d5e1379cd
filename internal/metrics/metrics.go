package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	namespace = "asg"
	subsystem = "website_api"

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	recordWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "record_writes_total",
			Help:      "Total number of record writes by collection and operation",
		},
		[]string{"collection", "operation"},
	)

	listingCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "listing_cache_lookups_total",
			Help:      "Listing cache lookups by collection and result",
		},
		[]string{"collection", "result"},
	)

	migrationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "migration_runs_total",
			Help:      "Migration runs by outcome",
		},
		[]string{"outcome"},
	)

	uploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upload_bytes_total",
			Help:      "Bytes of accepted uploads by destination folder",
		},
		[]string{"folder"},
	)
)

// ObserveRequest records one served HTTP request
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordWrite counts a create, update or delete
func RecordWrite(collection, operation string) {
	recordWritesTotal.WithLabelValues(collection, operation).Inc()
}

// CacheLookup counts a listing cache hit or miss
func CacheLookup(collection string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	listingCacheTotal.WithLabelValues(collection, result).Inc()
}

// MigrationRun counts a migration attempt; outcome is success, noop or failure
func MigrationRun(outcome string) {
	migrationRunsTotal.WithLabelValues(outcome).Inc()
}

// UploadAccepted adds the size of a stored upload
func UploadAccepted(folder string, size int) {
	uploadBytesTotal.WithLabelValues(folder).Add(float64(size))
}
