// Package metrics registers the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PairingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cellar_pairing_requests_total",
			Help: "Pairing requests by outcome (ok, degraded, invalid, error, cached)",
		},
		[]string{"outcome"},
	)

	PairingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cellar_pairing_duration_seconds",
			Help:    "Time spent producing a ranked pairing response",
			Buckets: prometheus.DefBuckets,
		},
	)

	PairingCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cellar_pairing_candidates",
			Help:    "Number of wines scored per pairing request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	ResolveOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cellar_resolve_total",
			Help: "Entity resolution results (matched, new)",
		},
		[]string{"outcome"},
	)

	EmbeddingCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cellar_embedding_calls_total",
			Help: "Embedding provider calls by outcome (success, failure, rejected)",
		},
		[]string{"provider", "outcome"},
	)

	EmbeddingBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cellar_embedding_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	BatchItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cellar_batch_items_total",
			Help: "Batch embedding items by status (processed, skipped, failed)",
		},
		[]string{"status"},
	)

	ImportedWines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cellar_import_wines_total",
			Help: "Imported observations by outcome (created, linked, failed)",
		},
		[]string{"outcome"},
	)
)
