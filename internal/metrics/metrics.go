// Package metrics provides Prometheus metrics for the filedepot server.
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
			Name: "filedepot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filedepot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Auth metrics
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedepot_auth_attempts_total",
			Help: "Total authentication attempts",
		},
		[]string{"result"},
	)

	sessionsIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filedepot_sessions_issued_total",
			Help: "Total session tokens issued",
		},
	)

	sessionsRevokedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filedepot_sessions_revoked_total",
			Help: "Total session tokens revoked",
		},
	)

	// Content transfer metrics
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedepot_uploads_total",
			Help: "Total number of file uploads",
		},
		[]string{"type", "status"},
	)

	contentBytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filedepot_content_bytes_uploaded_total",
			Help: "Total bytes accepted by file uploads",
		},
	)

	contentBytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filedepot_content_bytes_downloaded_total",
			Help: "Total bytes served from the content endpoint",
		},
	)

	// Thumbnail metrics
	thumbnailJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedepot_thumbnail_jobs_total",
			Help: "Total thumbnail generation jobs",
		},
		[]string{"status"},
	)

	thumbnailQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filedepot_thumbnail_queue_depth",
			Help: "Number of thumbnail jobs waiting in the queue",
		},
	)

	// Backing store metrics
	storeUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filedepot_store_up",
			Help: "Liveness of a backing store (1 = reachable)",
		},
		[]string{"store"},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filedepot_db_query_duration_seconds",
			Help:    "Document store query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
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

// RecordAuthAttempt records an authentication attempt.
func RecordAuthAttempt(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	authAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordSessionIssued records an issued session token.
func RecordSessionIssued() {
	sessionsIssuedTotal.Inc()
}

// RecordSessionRevoked records a revoked session token.
func RecordSessionRevoked() {
	sessionsRevokedTotal.Inc()
}

// RecordUpload records a file upload.
func RecordUpload(fileType string, bytes int64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	uploadsTotal.WithLabelValues(fileType, status).Inc()
	if success {
		contentBytesUploaded.Add(float64(bytes))
	}
}

// RecordContentDownload records bytes served from the content endpoint.
func RecordContentDownload(bytes int64) {
	contentBytesDownloaded.Add(float64(bytes))
}

// RecordThumbnailJob records a thumbnail job outcome.
func RecordThumbnailJob(status string) {
	thumbnailJobsTotal.WithLabelValues(status).Inc()
}

// SetThumbnailQueueDepth sets the current thumbnail queue depth.
func SetThumbnailQueueDepth(depth int) {
	thumbnailQueueDepth.Set(float64(depth))
}

// SetStoreUp sets the liveness gauge for a backing store.
func SetStoreUp(store string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	storeUp.WithLabelValues(store).Set(v)
}

// RecordDBQuery records a document store query duration.
func RecordDBQuery(query string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
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
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		RecordHTTPRequest(r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
