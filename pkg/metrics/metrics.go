package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics counts lifecycle activity. A nil *BookingMetrics is a valid
// no-op recorder.
type BookingMetrics struct {
	transitions   *prometheus.CounterVec
	payments      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "care",
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Booking status transitions by outcome",
		}, []string{"from", "to", "result"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "care",
			Subsystem: "payment",
			Name:      "verifications_total",
			Help:      "Payment callback verifications by result",
		}, []string{"source", "result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "care",
			Subsystem: "notify",
			Name:      "enqueued_total",
			Help:      "Notifications enqueued into the outbox",
		}, []string{"event", "result"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "care",
			Subsystem: "outbox",
			Name:      "deliveries_total",
			Help:      "Outbox delivery attempts by channel and result",
		}, []string{"channel", "result"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "care",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitions, m.payments, m.notifications, m.deliveries, m.httpLatency)
	return m
}

func (m *BookingMetrics) ObserveTransition(from, to, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to, result).Inc()
}

func (m *BookingMetrics) ObservePayment(source, result string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(source, result).Inc()
}

func (m *BookingMetrics) ObserveNotification(event string, ok bool) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, resultLabel(ok)).Inc()
}

func (m *BookingMetrics) ObserveDelivery(channel, result string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(channel, result).Inc()
}

func (m *BookingMetrics) ObserveHTTP(method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpLatency.WithLabelValues(method, statusClass(status)).Observe(seconds)
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
