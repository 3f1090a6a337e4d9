package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agenghermawan/clandestineproject/internal/stats"
)

// Metrics mirrors the dashboard counters as gauges.
type Metrics struct {
	Records *prometheus.GaugeVec
}

func New() *Metrics {
	return &Metrics{
		Records: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "clandestine_dashboard_records",
			Help: "Leaked record counts shown on the admin dashboard, by field",
		}, []string{"field"}),
	}
}

// Observe implements stats.Observer.
func (m *Metrics) Observe(s stats.Snapshot) {
	for _, c := range s.Counters {
		m.Records.WithLabelValues(c.Label).Set(float64(c.Value))
	}
}
