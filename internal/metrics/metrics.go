package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PaymentsInitiatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_initiated_total",
			Help: "Payments opened against the gateway",
		},
	)

	WebhooksReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_received_total",
			Help: "Gateway delivery notifications by verification result",
		},
		[]string{"result"}, // settled, failed, duplicate, inconclusive, malformed, unknown, error
	)

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Settlement attempts by outcome",
		},
		[]string{"outcome"},
	)

	SettledAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settled_amount_total",
			Help: "Sum of settled payment amounts (smallest currency unit)",
		},
	)
)
