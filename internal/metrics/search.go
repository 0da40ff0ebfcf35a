package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentsearch",
			Name:      "searches_total",
			Help:      "Total number of search requests",
		},
		[]string{"mode", "outcome"}, // outcome: "ok" / "error"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agentsearch",
			Name:      "search_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	FallbackCascadesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agentsearch",
			Name:      "fallback_cascades_total",
			Help:      "Searches that degraded from the vector backend to lexical fallback",
		},
	)

	EnrichmentDegradedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agentsearch",
			Name:      "enrichment_degraded_total",
			Help:      "Hits whose enrichment lookup failed and fell back to embedded metadata",
		},
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agentsearch",
			Name:      "response_cache_total",
			Help:      "Response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(FallbackCascadesTotal)
	prometheus.MustRegister(EnrichmentDegradedTotal)
	prometheus.MustRegister(ResponseCacheTotal)
	searchMetricsRegistered = true
}
