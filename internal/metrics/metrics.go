// internal/metrics/metrics.go
package metrics

import (
    "net/http"
    "strconv"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    // Total HTTP requests partitioned by method and status code
    httpRequestsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "http_requests_total",
            Help: "Total number of HTTP requests processed",
        },
        []string{"method", "status"},
    )

    httpRequestDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "http_request_duration_seconds",
            Help:    "HTTP request latencies in seconds",
            Buckets: prometheus.DefBuckets,
        },
        []string{"method", "status"},
    )

    // DispatchRuns counts completed dispatch runs.
    DispatchRuns = promauto.NewCounter(prometheus.CounterOpts{
        Name: "campaign_dispatch_runs_total",
        Help: "Total number of completed campaign dispatch runs",
    })

    // Deliveries counts per-recipient outcomes by ledger status.
    Deliveries = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "campaign_deliveries_total",
            Help: "Per-recipient delivery outcomes by status",
        },
        []string{"status"},
    )
)

type statusRecorder struct {
    http.ResponseWriter
    status int
}

func (r *statusRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latencies.
func Middleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

        next.ServeHTTP(rec, r)

        labels := prometheus.Labels{
            "method": r.Method,
            "status": strconv.Itoa(rec.status),
        }
        httpRequestsTotal.With(labels).Inc()
        httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
    })
}
