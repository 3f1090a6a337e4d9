package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Requests     *prometheus.CounterVec
	Latency      *prometheus.HistogramVec
	BreakerState prometheus.Gauge
	BreakerTrips prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clandestine_backend_requests_total",
			Help: "Requests forwarded to the data backend by path and status class",
		}, []string{"method", "path", "status"}),
		Latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clandestine_backend_request_duration_seconds",
			Help:    "Latency of requests forwarded to the data backend",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		BreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clandestine_backend_breaker_open",
			Help: "1 while the backend circuit breaker is open",
		}),
		BreakerTrips: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clandestine_backend_breaker_trips_total",
			Help: "Number of times the backend circuit breaker opened",
		}),
	}
}

func (m *Metrics) ObserveRequest(method, path, status string, seconds float64) {
	m.Requests.WithLabelValues(method, path, status).Inc()
	m.Latency.WithLabelValues(method, path).Observe(seconds)
}

func (m *Metrics) BreakerOpened() {
	m.BreakerTrips.Inc()
	m.BreakerState.Set(1)
}

func (m *Metrics) BreakerClosed() {
	m.BreakerState.Set(0)
}
