package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBookingMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveTransition("Paid", "Approved", "ok")
	m.ObserveTransition("Paid", "Approved", "ok")
	m.ObserveNotification("approved", false)
	m.ObserveDelivery("sms", "dead")
	m.ObserveHTTP("GET", 404, 0.01)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.transitions.WithLabelValues("Paid", "Approved", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notifications.WithLabelValues("approved", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.deliveries.WithLabelValues("sms", "dead")))
}

func TestBookingMetrics_NilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveTransition("a", "b", "ok")
	m.ObservePayment("callback", "verified")
	m.ObserveNotification("paid", true)
	m.ObserveDelivery("email", "delivered")
	m.ObserveHTTP("POST", 200, 0.2)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(201))
	assert.Equal(t, "4xx", statusClass(409))
	assert.Equal(t, "5xx", statusClass(502))
}
