// Package metrics exposes prometheus instruments for document generation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	batchOnce    sync.Once
	batchMetrics *BatchMetrics
)

// Batch returns the process-wide batch metrics, registering them on first use.
func Batch() *BatchMetrics {
	batchOnce.Do(func() {
		batchMetrics = newBatchMetrics(prometheus.DefaultRegisterer)
	})
	return batchMetrics
}

// BatchMetrics counts batch runs and per-item outcomes.
type BatchMetrics struct {
	runs     *prometheus.CounterVec
	items    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newBatchMetrics(registerer prometheus.Registerer) *BatchMetrics {
	m := &BatchMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taxdoc_batch_runs_total",
			Help: "Number of batch document generation runs.",
		}, []string{"kind"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taxdoc_batch_items_total",
			Help: "Per-item outcomes across batch runs.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taxdoc_batch_duration_seconds",
			Help:    "Wall-clock duration of batch runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	registerer.MustRegister(m.runs, m.items, m.duration)
	return m
}

func (m *BatchMetrics) IncRun(kind string) {
	m.runs.WithLabelValues(kind).Inc()
}

func (m *BatchMetrics) AddItems(kind, outcome string, n int) {
	if n <= 0 {
		return
	}
	m.items.WithLabelValues(kind, outcome).Add(float64(n))
}

func (m *BatchMetrics) ObserveDuration(kind string, seconds float64) {
	m.duration.WithLabelValues(kind).Observe(seconds)
}
