package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/clubops/standings/pkg/metrics"
)

// MetricsMiddleware wraps a handler to record request count, latency, and
// error metrics for one endpoint.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		durationMs := float64(time.Since(start).Milliseconds())
		status := strconv.Itoa(rec.status)

		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, durationMs)

		if rec.status >= http.StatusBadRequest {
			kind, severity := classifyStatus(rec.status)
			metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
			metrics.RecordErrorByType(kind, severity)
			metrics.RecordErrorLatency("http", kind, durationMs)
		}
	}
}

// classifyStatus maps a response status to the error kind and severity
// labels used across the service's error metrics. Backpressure on the
// results queue and phase or roster conflicts are expected during normal
// operation, so they rank below server failures.
func classifyStatus(status int) (kind, severity string) {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", "high"
	case status == http.StatusTooManyRequests:
		return "backpressure", "medium"
	case status == http.StatusConflict:
		return "conflict", "low"
	case status == http.StatusUnprocessableEntity:
		return "validation", "low"
	case status == http.StatusNotFound:
		return "not_found", "low"
	default:
		return "client_error", "low"
	}
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}
