// Package metrics exposes the Prometheus counters for the match and session
// lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LikesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donutdot_likes_total",
			Help: "Total number of new like edges recorded",
		},
	)

	MatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donutdot_matches_total",
			Help: "Total number of matches created",
		},
	)

	SessionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donutdot_sessions_started_total",
			Help: "Total number of chat sessions started",
		},
	)

	PassPendingTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donutdot_pass_pending_total",
			Help: "Total number of matches left waiting for a pass",
		},
	)

	PassesGrantedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donutdot_passes_granted_total",
			Help: "Total number of passes granted by source",
		},
		[]string{"source"},
	)

	PassConsumeConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donutdot_pass_consume_conflicts_total",
			Help: "Total number of pass consumptions lost to a concurrent consumer",
		},
	)

	ExpiryNoticesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donutdot_expiry_notices_total",
			Help: "Total number of expired sessions announced to their participants",
		},
	)

	NotifyFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donutdot_notify_failures_total",
			Help: "Total number of failed notification deliveries by channel",
		},
		[]string{"channel"},
	)
)
