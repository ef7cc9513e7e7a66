package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Live chat pushes, labelled by whether a connection was found.
	ChatPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_pushes_total",
			Help: "Chat messages pushed to live connections",
		},
		[]string{"delivered"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Notification records created, by type",
		},
		[]string{"type"},
	)

	PaymentsFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_finalized_total",
			Help: "Milestone payments finalized",
		},
	)

	GatewayCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_gateway_calls_total",
			Help: "Payment gateway calls, by operation and outcome",
		},
		[]string{"operation", "status"},
	)
)
