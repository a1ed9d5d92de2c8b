package paypal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesman_paypal_gateway_requests_total",
			Help: "PayPal API calls by operation and outcome (success, gateway_error, transport_error).",
		},
		[]string{"operation", "outcome"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesman_paypal_gateway_request_duration_seconds",
			Help:    "Latency of PayPal API calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

const (
	outcomeSuccess        = "success"
	outcomeGatewayError   = "gateway_error"
	outcomeTransportError = "transport_error"
)
