package agent

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports dispatch counters in Prometheus format.
type Metrics struct {
	dispatches *prometheus.CounterVec
}

// NewMetrics registers the pipeline metrics on reg and returns the handle.
// Passing nil registers nothing and yields a no-op handle.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vocalagent",
			Subsystem: "dispatcher",
			Name:      "dispatches_total",
			Help:      "Dispatch attempts by action tag and terminal phase.",
		}, []string{"action", "phase"}),
	}
	if reg != nil {
		reg.MustRegister(m.dispatches)
	}
	return m
}

func (m *Metrics) observe(action string, phase Phase) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(action, string(phase)).Inc()
}
