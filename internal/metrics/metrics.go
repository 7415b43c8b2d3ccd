package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventscout_searches_total",
		Help: "Total number of aggregated event searches, labelled by mode.",
	}, []string{"mode"})

	SourceResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventscout_source_results_total",
		Help: "Total number of events returned per source adapter.",
	}, []string{"source"})

	SourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventscout_source_failures_total",
		Help: "Total number of failed source adapter calls.",
	}, []string{"source"})

	SourceRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventscout_source_request_duration_ms",
		Help:    "Upstream search latency per source adapter in milliseconds.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"source"})

	DuplicatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventscout_duplicates_dropped_total",
		Help: "Total number of events collapsed by title/date/location dedup.",
	})

	RecommendationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventscout_recommendations_total",
		Help: "Total number of recommendation requests served.",
	})

	QueriesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventscout_queries_rejected_total",
		Help: "Total number of tool queries rejected by the cooldown gate.",
	})

	LastSearchSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eventscout_last_search_events",
		Help: "Number of events in the most recent merged search result.",
	})
)
