// Package metrics provides Prometheus metrics for the drive portal server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driveportal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "driveportal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Hierarchy cache metrics
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driveportal_hierarchy_cache_lookups_total",
			Help: "Hierarchy cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)

	cacheWriteErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "driveportal_hierarchy_cache_write_errors_total",
			Help: "Hierarchy cache writes that failed and were skipped",
		},
	)

	// Hierarchy build metrics
	hierarchyBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "driveportal_hierarchy_build_duration_seconds",
			Help:    "Time to build a hierarchy from Google Drive",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"kind"},
	)

	hierarchyBuildItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "driveportal_hierarchy_build_items",
			Help:    "Number of items in freshly built hierarchies",
			Buckets: prometheus.ExponentialBuckets(8, 2, 10),
		},
		[]string{"kind"},
	)

	hierarchyBuildsShared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "driveportal_hierarchy_builds_shared_total",
			Help: "Requests that joined an in-flight build for the same cache key",
		},
	)

	// Drive API metrics
	driveCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "driveportal_drive_call_duration_seconds",
			Help:    "Google Drive API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	driveCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driveportal_drive_calls_total",
			Help: "Total Google Drive API calls",
		},
		[]string{"operation", "status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheLookup records a hierarchy cache hit or miss.
func RecordCacheLookup(kind string, hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	cacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

// RecordCacheWriteError records a swallowed cache write failure.
func RecordCacheWriteError() {
	cacheWriteErrorsTotal.Inc()
}

// RecordHierarchyBuild records a completed hierarchy build.
func RecordHierarchyBuild(kind string, duration time.Duration, items int) {
	hierarchyBuildDuration.WithLabelValues(kind).Observe(duration.Seconds())
	hierarchyBuildItems.WithLabelValues(kind).Observe(float64(items))
}

// RecordSharedBuild records a request served by another request's build.
func RecordSharedBuild() {
	hierarchyBuildsShared.Inc()
}

// RecordDriveCall records a Google Drive API call.
func RecordDriveCall(operation string, duration time.Duration, success bool) {
	driveCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
	status := "success"
	if !success {
		status = "error"
	}
	driveCallsTotal.WithLabelValues(operation, status).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
// Requests are labeled by their mux pattern, not the raw path, so drive ids
// and route paths don't explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		RecordHTTPRequest(r.Method, pattern, rw.statusCode, time.Since(start))
	})
}
