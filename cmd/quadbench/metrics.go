package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	ops      *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	items    prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		ops: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quadbench_ops_total",
			Help: "The total number of tree operations performed, by operation",
		}, []string{"op"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quadbench_op_errors_total",
			Help: "The total number of tree operations that returned an error, by operation",
		}, []string{"op"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quadbench_op_duration_seconds",
			Help:    "The time a single tree operation takes, lock wait included",
			Buckets: prometheus.ExponentialBuckets(0.0000005, 2, 20),
		}, []string{"op"}),
		items: f.NewGauge(prometheus.GaugeOpts{
			Name: "quadbench_items",
			Help: "The number of items in the tree after the last completed phase",
		}),
	}
}

func (m *metrics) observe(op string, start time.Time, err error) {
	m.ops.WithLabelValues(op).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.errors.WithLabelValues(op).Inc()
	}
}
