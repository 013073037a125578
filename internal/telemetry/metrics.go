// Package telemetry holds Prometheus metrics for business-level
// observability.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters and histograms the services record into.
type Metrics struct {
	// Cart
	CartMutations *prometheus.CounterVec
	CartValue     prometheus.Histogram

	// Coupons
	CouponsApplied prometheus.Counter

	// Orders
	OrdersCreated  *prometheus.CounterVec
	OrdersCanceled prometheus.Counter
	OrderValue     prometheus.Histogram

	// Payments
	PaymentSucceeded *prometheus.CounterVec
	PaymentFailed    *prometheus.CounterVec

	// Webhooks
	WebhookReceived  *prometheus.CounterVec
	WebhookProcessed *prometheus.CounterVec
	WebhookFailed    *prometheus.CounterVec
}

// NewMetrics creates all metrics under the given namespace and registers
// them with the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith registers the metrics with reg. Tests pass a fresh
// registry so parallel test packages never collide.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "dokan"
	}

	factory := promauto.With(reg)

	return &Metrics{
		CartMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cart_mutations_total",
				Help:      "Total cart mutations",
			},
			[]string{"op"}, // op: add, update, remove, clear
		),
		CartValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cart_value_cents",
				Help:      "Cart total after mutation, in cents",
				Buckets:   prometheus.ExponentialBuckets(100, 4, 10),
			},
		),
		CouponsApplied: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "coupons_applied_total",
				Help:      "Total successful coupon applications",
			},
		),
		OrdersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_created_total",
				Help:      "Total orders created at checkout",
			},
			[]string{"payment_type"},
		),
		OrdersCanceled: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_canceled_total",
				Help:      "Total pending orders canceled",
			},
		),
		OrderValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "order_value_cents",
				Help:      "Order total at creation, in cents",
				Buckets:   prometheus.ExponentialBuckets(100, 4, 10),
			},
		),
		PaymentSucceeded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_succeeded_total",
				Help:      "Total payments settled as PAID",
			},
			[]string{"payment_type"},
		),
		PaymentFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_failed_total",
				Help:      "Total payments settled as FAILED",
			},
			[]string{"payment_type"},
		),
		WebhookReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_received_total",
				Help:      "Total webhook deliveries received",
			},
			[]string{"event_type"},
		),
		WebhookProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_processed_total",
				Help:      "Total webhook deliveries applied or absorbed",
			},
			[]string{"event_type"},
		),
		WebhookFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_failed_total",
				Help:      "Total webhook deliveries that errored",
			},
			[]string{"event_type", "reason"}, // reason: bad_signature, storage, bad_payload
		),
	}
}
