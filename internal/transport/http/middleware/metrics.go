package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "community_events",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// count streams are excluded; they stay open for minutes
	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "community_events",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of non-streaming HTTP requests",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "route"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "community_events",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests being served, open streams included",
	})
)

// Metrics records request counts, latency and concurrency per route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := record(w)
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		rt := route(r)
		httpRequests.WithLabelValues(r.Method, rt, strconv.Itoa(rec.Status())).Inc()
		if !rec.streaming() {
			httpLatency.WithLabelValues(r.Method, rt).Observe(time.Since(start).Seconds())
		}
	})
}
