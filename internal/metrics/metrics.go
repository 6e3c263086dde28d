package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PersistAttempts counts remote upsert attempts by outcome. The
	// classification label separates retryable from terminal failures so
	// backing-store health is visible per attempt.
	PersistAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanlink_persist_attempts_total",
			Help: "Remote mapping upsert attempts",
		},
		[]string{"outcome"}, // ok, retryable, terminal
	)

	// PersistOutcomes counts completed Persist calls.
	PersistOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanlink_persist_total",
			Help: "Completed mapping persists",
		},
		[]string{"synced"}, // true, false
	)

	// ResolveResults counts resolutions by answering layer.
	ResolveResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanlink_resolve_total",
			Help: "Token resolutions by source",
		},
		[]string{"source"}, // remote, local, miss
	)

	// ReconcilePolls counts ConfirmResolvable poll attempts.
	ReconcilePolls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scanlink_reconcile_polls_total",
			Help: "Reconciliation poll attempts after registration",
		},
	)

	// ReconcileUnconfirmed counts registrations that exhausted the
	// reconciliation window without becoming resolvable.
	ReconcileUnconfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scanlink_reconcile_unconfirmed_total",
			Help: "Registrations left unconfirmed after polling",
		},
	)

	// RemoteUpsertDuration measures remote upsert latency.
	RemoteUpsertDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scanlink_remote_upsert_duration_seconds",
			Help:    "Remote mapping upsert duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
