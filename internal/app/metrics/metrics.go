// Package metrics exposes the Prometheus collectors for the sales API.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salestrack",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salestrack",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salestrack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	salesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salestrack",
			Subsystem: "ledger",
			Name:      "sales_recorded_total",
			Help:      "Total number of sales appended to the ledger.",
		},
	)

	statisticsQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salestrack",
			Subsystem: "statistics",
			Name:      "queries_total",
			Help:      "Total number of aggregate statistics queries served.",
		},
		[]string{"kind"},
	)

	authFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salestrack",
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Total number of rejected authentication attempts.",
		},
		[]string{"reason"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		salesRecorded,
		statisticsQueries,
		authFailures,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordSale counts a ledger append.
func RecordSale() {
	salesRecorded.Inc()
}

// RecordStatisticsQuery counts an aggregate query by kind.
func RecordStatisticsQuery(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	statisticsQueries.WithLabelValues(kind).Inc()
}

// RecordAuthFailure counts a rejected authentication attempt.
func RecordAuthFailure(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	authFailures.WithLabelValues(reason).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses id segments so the label set stays bounded.
func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" || len(parts) < 2 {
		return "/" + parts[0]
	}
	switch parts[1] {
	case "auth":
		if len(parts) > 2 {
			return "/api/auth/" + parts[2]
		}
		return "/api/auth"
	case "customers":
		if len(parts) == 2 {
			return "/api/customers"
		}
		if parts[2] == "dashboard" {
			return "/api/customers/dashboard"
		}
		return "/api/customers/:id"
	case "sales":
		if len(parts) > 3 && parts[2] == "statistics" {
			return "/api/sales/statistics/" + parts[3]
		}
		return "/api/sales"
	}
	return "/api/" + parts[1]
}
