package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geolens",
			Name:      "search_submissions_total",
			Help:      "Search submissions by outcome",
		},
		[]string{"outcome"}, // "ok" / "empty" / "invalid" / "no_criteria" / "error" / "stale"
	)

	SearchUpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geolens",
			Name:      "search_upstream_requests_total",
			Help:      "Requests sent to the search service",
		},
		[]string{"status"},
	)

	SearchUpstreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "geolens",
			Name:      "search_upstream_duration_seconds",
			Help:      "Search service round trip duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SearchResultsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "geolens",
			Name:      "results_dropped_total",
			Help:      "Search results skipped for missing coordinates",
		},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geolens",
			Name:      "search_cache_total",
			Help:      "Search response cache lookups by result",
		},
		[]string{"result"}, // "hit" / "miss" / "shared"
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "geolens",
			Name:      "sessions_active",
			Help:      "Open client sessions",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchSubmissionsTotal)
	prometheus.MustRegister(SearchUpstreamRequestsTotal)
	prometheus.MustRegister(SearchUpstreamDuration)
	prometheus.MustRegister(SearchResultsDroppedTotal)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(SessionsActive)
	searchMetricsRegistered = true
}
