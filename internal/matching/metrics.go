package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_requests_total",
			Help: "Total number of match requests",
		},
		[]string{"operation", "status"},
	)

	propertiesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_properties_scored_total",
			Help: "Total number of property/preference pairs scored",
		},
	)

	matchPercentages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_match_percentage",
			Help:    "Distribution of match percentages",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	responseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "matching_response_time_seconds",
			Help: "Response time for match operations",
		},
		[]string{"operation"},
	)

	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_cache_hits_total",
			Help: "Total number of match cache hits",
		},
	)

	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_cache_misses_total",
			Help: "Total number of match cache misses",
		},
	)

	mediaRefreshFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_media_refresh_failures_total",
			Help: "Total number of media URLs that could not be refreshed",
		},
	)
)

func observeScored(scored int, results []PropertyMatchResult) {
	propertiesScored.Add(float64(scored))
	for _, r := range results {
		matchPercentages.Observe(float64(r.MatchPercentage))
	}
}

func recordRequest(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	matchRequestsTotal.WithLabelValues(operation, status).Inc()
}
