// Package metrics defines and registers the Prometheus metrics of the auth
// service. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default registry on package init through
// promauto and exposed on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// ── Authentication metrics ────────────────────────────────────────────────────

// AuthDecisionsTotal counts outcomes of the authentication middleware.
// Labels:
//   - strategy: active strategy kind (e.g. "basic", "session")
//   - result: "skipped", "unauthorized", "forbidden" or "ok"
var AuthDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Total number of authentication decisions, by strategy and result.",
	},
	[]string{"strategy", "result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "missing_field", "unknown_user", "wrong_password" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionsTotal counts session lifecycle operations.
// Label:
//   - op: "created" or "destroyed"
var SessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_total",
		Help:      "Total number of sessions created and destroyed.",
	},
	[]string{"op"},
)

// ResetTokensTotal counts reset token operations.
// Labels:
//   - op: "issued" or "redeemed"
//   - result: "ok" or "rejected"
var ResetTokensTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_tokens_total",
		Help:      "Total number of password reset token operations.",
	},
	[]string{"op", "result"},
)

// ── Hashing metrics ───────────────────────────────────────────────────────────

// HashDuration measures the time a worker spends on one hash or verify call.
// Label:
//   - op: "hash" or "verify"
var HashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hashing work executed by the hash pool.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)

// HashQueueWait measures how long a request waited for a free hash worker.
var HashQueueWait = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_queue_wait_seconds",
		Help:      "Time spent waiting for a hash worker to pick up a job.",
		Buckets:   prometheus.DefBuckets,
	},
)
