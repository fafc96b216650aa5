// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PointsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamboard",
		Name:      "points_granted_total",
		Help:      "Sum of positive point deltas written to the ledger.",
	})

	PointsDeducted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamboard",
		Name:      "points_deducted_total",
		Help:      "Sum of absolute negative point deltas written to the ledger.",
	})

	BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamboard",
		Name:      "badges_awarded_total",
		Help:      "Badges awarded, by badge name.",
	}, []string{"badge"})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamboard",
		Name:      "task_status_transitions_total",
		Help:      "Committed task status transitions, by target status.",
	}, []string{"to"})

	SecondaryEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamboard",
		Name:      "secondary_effect_failures_total",
		Help:      "Failures of effects that run after a committed primary write.",
	}, []string{"effect"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamboard",
		Name:      "notifications_total",
		Help:      "Outbound notifications, by outcome.",
	}, []string{"outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamboard",
		Name:      "http_requests_total",
		Help:      "HTTP requests, by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "teamboard",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
