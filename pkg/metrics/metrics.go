package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchmoji_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"layer"}, // "decode" or "snapshot"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchmoji_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"layer"},
	)

	// Allocation metrics
	Allocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchmoji_allocations_total",
			Help: "Identifiers handed out, by outcome",
		},
		[]string{"outcome"}, // "saved", "dry_run", "race", "error"
	)

	ForeignNames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "branchmoji_foreign_names_total",
			Help: "Existing names skipped because they do not decode under the alphabet",
		},
	)

	AllocatedOrdinal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "branchmoji_allocated_ordinal",
			Help:    "Ordinal of each saved identifier",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// Request metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "branchmoji_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchmoji_requests_total",
			Help: "Total number of requests",
		},
		[]string{"method", "route", "status"},
	)

	// Database metrics
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "branchmoji_database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)
