package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestAIMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAIMetrics(reg)
	m.ObserveOperation("discover", "ok")
	m.ObserveLatency("discover", 12.5)
	m.ObserveDiscovered("inserted", 3)
	m.ObserveDiscovered("duplicate", 1)
}

func TestAIMetricsNilSafe(t *testing.T) {
	var m *AIMetrics
	m.ObserveOperation("messages", "error")
	m.ObserveLatency("messages", 0.1)
	m.ObserveDiscovered("inserted", 0)
}
