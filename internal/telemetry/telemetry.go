// Package telemetry exposes Prometheus metrics for the garden service.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	gardenMessagesScannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garden_messages_scanned_total",
			Help: "Total chat messages scanned by the change detector, labeled by channel.",
		},
		[]string{"channel"},
	)

	gardenNewLinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garden_new_links_total",
			Help: "Total newly detected link messages, labeled by channel.",
		},
		[]string{"channel"},
	)

	gardenRevalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garden_revalidations_total",
			Help: "Total page revalidation triggers, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	gardenUpstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garden_upstream_errors_total",
			Help: "Total upstream API failures, labeled by upstream name.",
		},
		[]string{"upstream"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
)

// Handler returns the standard Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware is a chi middleware that records HTTP request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		ObserveHTTPRequest(r.Method, routePattern, ww.statusCode, time.Since(start))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

// ObserveHTTPRequest records metrics for an HTTP request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveScan records a change-detector pass over one channel.
func ObserveScan(channel string, scanned, fresh int) {
	gardenMessagesScannedTotal.WithLabelValues(channel).Add(float64(scanned))
	if fresh > 0 {
		gardenNewLinksTotal.WithLabelValues(channel).Add(float64(fresh))
	}
}

// ObserveRevalidation records a revalidation trigger outcome.
func ObserveRevalidation(outcome string) {
	gardenRevalidationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstreamError records a failed call to an upstream API.
func ObserveUpstreamError(upstream string) {
	gardenUpstreamErrorsTotal.WithLabelValues(upstream).Inc()
}
