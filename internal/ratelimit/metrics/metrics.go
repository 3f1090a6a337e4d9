package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions   *prometheus.CounterVec
	StoreErrors *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clandestine_ratelimit_decisions_total",
			Help: "Rate limit decisions by rule and outcome",
		}, []string{"rule", "outcome"}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clandestine_ratelimit_store_errors_total",
			Help: "Rate limit store failures; requests are let through when these occur",
		}, []string{"rule"}),
	}
}

func (m *Metrics) Allowed(rule string) {
	m.Decisions.WithLabelValues(rule, "allowed").Inc()
}

func (m *Metrics) Denied(rule string) {
	m.Decisions.WithLabelValues(rule, "denied").Inc()
}

func (m *Metrics) StoreError(rule string) {
	m.StoreErrors.WithLabelValues(rule).Inc()
}
