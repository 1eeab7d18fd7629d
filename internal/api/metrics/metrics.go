// Package metrics defines and registers the custom Prometheus metrics of the
// library API. HTTP request metrics come from echoprometheus; everything here
// counts domain outcomes.
//
// All collectors are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// ── Authentication ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts POST /auth/token outcomes.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenValidationsTotal counts bearer token checks on protected routes.
// Label:
//   - result: "accepted", "rejected" or "error"
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of bearer token validations, by result.",
	},
	[]string{"result"},
)

// ── Resources ────────────────────────────────────────────────────────────────

var UsersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "users_created_total",
	Help:      "Total number of user accounts created.",
})

var BooksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "books_created_total",
	Help:      "Total number of books created.",
})

// IdempotentReplaysTotal counts create requests answered from the
// idempotency store instead of being executed again.
var IdempotentReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "idempotent_replays_total",
	Help:      "Total number of responses replayed for a repeated Idempotency-Key.",
})
