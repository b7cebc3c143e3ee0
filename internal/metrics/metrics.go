package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event ingestion metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clarity_ingest_events_total",
			Help: "Total number of tracking events received",
		},
		[]string{"status"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clarity_ingest_validation_failures_total",
			Help: "Total number of rejected ingest payloads",
		},
		[]string{"reason"},
	)

	// Derived-metric computation
	ScoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clarity_scoring_duration_seconds",
			Help:    "Duration of health score computation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// A gauge, not a counter: the detector recomputes per request, so the
	// value tracks the current group count rather than accumulating with
	// dashboard polling.
	DuplicateGroups = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clarity_duplicate_groups",
			Help: "Duplicate groups currently detected per website",
		},
		[]string{"website_id"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clarity_health_cache_hits_total",
			Help: "Total number of health metric cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clarity_health_cache_misses_total",
			Help: "Total number of health metric cache misses",
		},
	)

	// Storage metrics
	StorageErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clarity_storage_errors_total",
			Help: "Total number of storage errors",
		},
	)
)
