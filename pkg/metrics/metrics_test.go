package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.ObserveCheckout("gateway", "created", 250*time.Millisecond)
	m.ObserveCheckout("gateway", "payment_setup_failed", 10*time.Millisecond)
	m.IncCallback("transitioned")
	m.IncCallback("duplicate")
	m.IncCallback("duplicate")
	m.IncShipmentEvent("en_route", true)
	m.IncShipmentEvent("en bodega", false)
	m.IncNotification("sent")
	m.AddBadgesAwarded("first_purchase", 2)
	m.AddBadgesAwarded("first_share", 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "payment_callbacks_total", "result", "duplicate")
	require.NoError(t, err)
	assert.Equal(t, float64(2), got)

	got, err = fetchCounterValue(mfs, "shipment_events_total", "status", "other")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)

	got, err = fetchCounterValue(mfs, "badges_awarded_total", "rule", "first_purchase")
	require.NoError(t, err)
	assert.Equal(t, float64(2), got)
	_, err = fetchCounterValue(mfs, "badges_awarded_total", "rule", "first_share")
	require.Error(t, err)

	sum, err := fetchHistogramSum(mfs, "checkout_duration_seconds", "method_kind", "gateway")
	require.NoError(t, err)
	assert.InDelta(t, 0.26, sum, 0.0001)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.checkouts.WithLabelValues("gateway", "created")))
}

func TestNilRecordersAreSafe(t *testing.T) {
	var m *OrderMetrics
	m.ObserveCheckout("immediate", "created", time.Second)
	m.IncCallback("x")
	m.IncNotification("sent")
	m.AddBadgesAwarded("r", 1)
	NewOrderMetrics(nil).IncShipmentEvent("delivered", true)

	var h *HTTPMetrics
	h.Observe("GET", "/x", 200, time.Millisecond)
}

func TestHTTPMetricsLabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTPMetrics(reg)
	h.Observe("POST", "/comprar", 201, 5*time.Millisecond)
	h.Observe("POST", "/comprar", 201, 5*time.Millisecond)
	h.Observe("GET", "", 404, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(h.requests.WithLabelValues("POST", "/comprar", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.requests.WithLabelValues("GET", "unknown", "404")))
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
