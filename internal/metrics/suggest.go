package metrics

import "github.com/prometheus/client_golang/prometheus"

// Suggestion Prometheus metrics.
var (
	SuggestCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetd",
			Name:      "suggest_cache_total",
			Help:      "Suggestion cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SuggestRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetd",
			Name:      "suggest_requests_total",
			Help:      "Total number of suggestion requests",
		},
		[]string{"facet", "status"},
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "facetd",
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

var suggestMetricsRegistered bool

// RegisterSuggestMetrics registers Prometheus suggestion metrics. Must be called once from main.
func RegisterSuggestMetrics() {
	if suggestMetricsRegistered {
		return
	}
	prometheus.MustRegister(SuggestCacheTotal)
	prometheus.MustRegister(SuggestRequestsTotal)
	prometheus.MustRegister(EngineRequestDuration)
	suggestMetricsRegistered = true
}
