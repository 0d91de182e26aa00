package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records the order lifecycle: checkouts, gateway callbacks,
// shipment events, push notifications and badge awards.
type OrderMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	checkouts        *prometheus.CounterVec
	callbacks        *prometheus.CounterVec
	shipmentEvents   *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	badgesAwarded    *prometheus.CounterVec
}

// NewOrderMetrics registers the collectors on reg. A nil registerer yields a
// no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		checkoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Duration of checkout requests, including the gateway call.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method_kind"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_total",
			Help: "Checkouts by payment method kind and outcome.",
		}, []string{"method_kind", "outcome"}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_callbacks_total",
			Help: "Gateway callbacks by resulting action.",
		}, []string{"result"}),
		shipmentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shipment_events_total",
			Help: "Recorded shipment events by canonical status.",
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_notifications_total",
			Help: "Push notification dispatch attempts by result.",
		}, []string{"result"}),
		badgesAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Badges granted by rule key.",
		}, []string{"rule"}),
	}
	reg.MustRegister(m.checkoutDuration, m.checkouts, m.callbacks, m.shipmentEvents, m.notifications, m.badgesAwarded)
	return m
}

// ObserveCheckout records one finished checkout.
func (m *OrderMetrics) ObserveCheckout(methodKind, outcome string, duration time.Duration) {
	if m == nil || m.checkouts == nil {
		return
	}
	kind := normalizeLabel(methodKind)
	m.checkoutDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.checkouts.WithLabelValues(kind, normalizeLabel(outcome)).Inc()
}

// IncCallback counts a gateway callback by result (transitioned, duplicate, ignored, ...).
func (m *OrderMetrics) IncCallback(result string) {
	if m == nil || m.callbacks == nil {
		return
	}
	m.callbacks.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncShipmentEvent counts a recorded shipment event. Free-text labels collapse to "other".
func (m *OrderMetrics) IncShipmentEvent(status string, known bool) {
	if m == nil || m.shipmentEvents == nil {
		return
	}
	if !known {
		status = "other"
	}
	m.shipmentEvents.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncNotification counts a push dispatch attempt.
func (m *OrderMetrics) IncNotification(result string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(result)).Inc()
}

// AddBadgesAwarded counts granted badges for rule.
func (m *OrderMetrics) AddBadgesAwarded(rule string, n int) {
	if m == nil || m.badgesAwarded == nil || n <= 0 {
		return
	}
	m.badgesAwarded.WithLabelValues(normalizeLabel(rule)).Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
