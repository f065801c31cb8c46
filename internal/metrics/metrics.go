// Package metrics declares the engine's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DiscoveryDuration tracks discovery query latency by operation.
	DiscoveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_discovery_duration_seconds",
		Help:    "Discovery operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"operation"})

	// SocialTransitions counts social-graph operations by result kind.
	SocialTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_social_operations_total",
		Help: "Social graph operations by operation and result",
	}, []string{"operation", "result"})

	// RateLimitDecisions counts limiter outcomes.
	RateLimitDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_rate_limit_decisions_total",
		Help: "Rate limiter decisions by action and outcome",
	}, []string{"action", "outcome"})

	// NotificationsDropped counts intents dropped because the queue was full.
	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_notifications_dropped_total",
		Help: "Notification intents dropped on a full queue",
	})

	// NotificationsDelivered counts sink writes by outcome.
	NotificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_notifications_delivered_total",
		Help: "Notification intents handed to the sink by outcome",
	}, []string{"outcome"})
)

// ObserveDiscovery records the duration of a discovery operation since start.
func ObserveDiscovery(operation string, start time.Time) {
	DiscoveryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Result returns "ok" for nil errors and the error kind label otherwise.
func Result(kind string) string {
	if kind == "" {
		return "ok"
	}
	return kind
}
