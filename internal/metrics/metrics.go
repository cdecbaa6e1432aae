// Package metrics holds the Prometheus collectors for the HTTP and search paths.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pacha",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pacha",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route"},
	)

	// SearchesTotal counts searches by mode and outcome (hit, empty, blank, error).
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pacha",
			Subsystem: "search",
			Name:      "searches_total",
			Help:      "Total number of dictionary searches",
		},
		[]string{"mode", "outcome"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pacha",
			Subsystem: "search",
			Name:      "store_duration_seconds",
			Help:      "Entry store search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pacha",
			Subsystem: "search",
			Name:      "cache_hits_total",
			Help:      "Total search cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pacha",
			Subsystem: "search",
			Name:      "cache_misses_total",
			Help:      "Total search cache misses",
		},
	)
)

// Handler returns the Prometheus metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records a served HTTP request.
func RecordRequest(method, route, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(durationSec)
}

// RecordSearch records the outcome of a single search.
func RecordSearch(mode, outcome string) {
	SearchesTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveStoreSearch records how long a store query took.
func ObserveStoreSearch(durationSec float64) {
	SearchDuration.Observe(durationSec)
}

// RecordCache records a cache lookup.
func RecordCache(hit bool) {
	if hit {
		CacheHitsTotal.Inc()
		return
	}
	CacheMissesTotal.Inc()
}
