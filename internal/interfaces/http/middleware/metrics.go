package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/prometheus"
)

// MetricsMiddleware records per-request counters, latency histograms, and an
// in-flight gauge.  The path label uses the matched chi route pattern
// (e.g. /api/v1/projects/{projectName}) so label cardinality stays bounded.
type MetricsMiddleware struct {
	metrics *prometheus.AppMetrics
}

// NewMetricsMiddleware creates a metrics middleware.  A nil AppMetrics turns
// every recording into a no-op.
func NewMetricsMiddleware(metrics *prometheus.AppMetrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Handler returns the middleware handler function.
func (m *MetricsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.metrics != nil {
			m.metrics.HTTPActiveRequests.WithLabelValues(r.Method).Inc()
			defer m.metrics.HTTPActiveRequests.WithLabelValues(r.Method).Dec()
		}

		start := time.Now()
		wrapped := newWrappedResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		prometheus.RecordHTTPRequest(m.metrics, r.Method, path,
			wrapped.statusCode, time.Since(start), int(wrapped.bytesWritten))
	})
}
