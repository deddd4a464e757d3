package metrics

import "github.com/prometheus/client_golang/prometheus"

// MailMetrics counts outbound mail attempts and tracks the SMTP breaker state.
type MailMetrics struct {
	sent    *prometheus.CounterVec
	breaker prometheus.Gauge
}

func NewMailMetrics(reg prometheus.Registerer) *MailMetrics {
	if reg == nil {
		return &MailMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mail_messages_total",
		Help: "Outbound mail messages, by template and outcome.",
	}, []string{"template", "outcome"})
	breaker := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mail_breaker_open",
		Help: "1 while the SMTP circuit breaker is open.",
	})
	reg.MustRegister(sent, breaker)
	return &MailMetrics{sent: sent, breaker: breaker}
}

func (m *MailMetrics) IncSent(template, outcome string) {
	if m == nil || m.sent == nil {
		return
	}
	m.sent.WithLabelValues(normalizeLabel(template), normalizeLabel(outcome)).Inc()
}

func (m *MailMetrics) SetBreakerOpen(open bool) {
	if m == nil || m.breaker == nil {
		return
	}
	if open {
		m.breaker.Set(1)
		return
	}
	m.breaker.Set(0)
}
