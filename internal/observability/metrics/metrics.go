package metrics

import "github.com/prometheus/client_golang/prometheus"

// AIMetrics exposes counters/histograms for generative AI flows.
type AIMetrics struct {
	operationsTotal  *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	discoveredTotal  *prometheus.CounterVec
}

func NewAIMetrics(reg prometheus.Registerer) *AIMetrics {
	m := &AIMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prospecta",
			Subsystem: "ai",
			Name:      "operations_total",
			Help:      "Total generative AI operations",
		}, []string{"operation", "status"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "prospecta",
			Subsystem: "ai",
			Name:      "operation_latency_seconds",
			Help:      "Latency of generative AI operations",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation"}),
		discoveredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prospecta",
			Subsystem: "discovery",
			Name:      "prospects_total",
			Help:      "Prospect candidates by discovery outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operationsTotal, m.operationLatency, m.discoveredTotal)
	return m
}

func (m *AIMetrics) ObserveOperation(operation, status string) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

func (m *AIMetrics) ObserveLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.operationLatency.WithLabelValues(operation).Observe(seconds)
}

// ObserveDiscovered records candidate counts per dedupe outcome
// ("inserted" or "duplicate").
func (m *AIMetrics) ObserveDiscovered(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.discoveredTotal.WithLabelValues(outcome).Add(float64(n))
}
