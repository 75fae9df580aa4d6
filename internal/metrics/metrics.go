// Package metrics declares the Prometheus collectors fintrack exports on
// /metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fintrack/internal/core"
)

// ─── Outbound API ───────────────────────────────────────────────────────────

// APIRequests counts calls to the finance service by operation and outcome.
var APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fintrack",
	Subsystem: "api",
	Name:      "requests_total",
	Help:      "Total requests sent to the finance service.",
}, []string{"op", "outcome"})

// APILatency tracks finance service round trips.
var APILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "fintrack",
	Subsystem: "api",
	Name:      "request_duration_seconds",
	Help:      "Finance service request latency in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"op"})

// ─── View-model server ──────────────────────────────────────────────────────

// HTTPRequests counts served requests by route pattern and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fintrack",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total requests served by the view-model server.",
}, []string{"route", "method", "status"})

// HTTPLatency tracks request handling time.
var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "fintrack",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "View-model request latency in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// ─── Budgets ────────────────────────────────────────────────────────────────

// BudgetOperations counts resolver mutations by action and outcome.
var BudgetOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fintrack",
	Subsystem: "budget",
	Name:      "operations_total",
	Help:      "Total budget saves and deletes by action and outcome.",
}, []string{"action", "outcome"})

// BudgetEventsDropped counts change events that could not be published.
var BudgetEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "fintrack",
	Subsystem: "budget",
	Name:      "events_dropped_total",
	Help:      "Budget change events that failed to publish.",
})

// Outcome labels an error by class: ok, validation, transport, ambiguity or error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, core.ErrValidation):
		return "validation"
	case errors.Is(err, core.ErrTransport):
		return "transport"
	case errors.Is(err, core.ErrIntegrityAmbiguity):
		return "ambiguity"
	default:
		return "error"
	}
}

// ObserveAPI records one finance service call.
func ObserveAPI(op string, start time.Time, err error) {
	APILatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	APIRequests.WithLabelValues(op, Outcome(err)).Inc()
}
