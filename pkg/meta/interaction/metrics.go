package interaction

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records invocation phases, vetoes and durations
type Metrics struct {
	phases   *prometheus.CounterVec
	vetoes   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		phases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metamodel",
			Subsystem: "interaction",
			Name:      "phases_total",
			Help:      "Invocation phases entered, by member kind and phase.",
		}, []string{"kind", "phase"}),
		vetoes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metamodel",
			Subsystem: "interaction",
			Name:      "vetoes_total",
			Help:      "Invocations aborted by a veto, by member kind and phase.",
		}, []string{"kind", "phase"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "metamodel",
			Subsystem: "interaction",
			Name:      "duration_seconds",
			Help:      "Invocation duration, by member kind and final state.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "state"}),
	}
	if reg != nil {
		reg.MustRegister(m.phases, m.vetoes, m.duration)
	}
	return m
}

// Collectors returns the underlying collectors
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.phases, m.vetoes, m.duration}
}

func (m *Metrics) phase(kind string, s State) {
	if m != nil {
		m.phases.WithLabelValues(kind, s.String()).Inc()
	}
}

func (m *Metrics) veto(kind string, s State) {
	if m != nil {
		m.vetoes.WithLabelValues(kind, s.String()).Inc()
	}
}

func (m *Metrics) observe(kind string, s State, started time.Time) {
	if m != nil {
		m.duration.WithLabelValues(kind, s.String()).Observe(time.Since(started).Seconds())
	}
}
