package placement

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	ops     *prometheus.CounterVec
	repairs *prometheus.CounterVec
}

// NewMetrics registra los contadores en reg (si no es nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shelter",
			Subsystem: "placement",
			Name:      "operations_total",
			Help:      "Relationship operations by name and outcome.",
		}, []string{"op", "result"}),
		repairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shelter",
			Subsystem: "placement",
			Name:      "reconcile_repairs_total",
			Help:      "Inconsistencies fixed by the reconcile pass.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.ops, m.repairs)
	}
	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ops.WithLabelValues(op, result).Inc()
}

func (m *Metrics) repaired(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.repairs.WithLabelValues(kind).Add(float64(n))
}
