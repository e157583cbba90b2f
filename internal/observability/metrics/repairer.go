package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RepairerMetrics instruments the index-repair worker.
type RepairerMetrics struct {
	registry *prometheus.Registry

	repairTotal    *prometheus.CounterVec
	repairDuration *prometheus.HistogramVec
	sweepRepaired  prometheus.Gauge
}

func NewRepairerMetrics(service string) *RepairerMetrics {
	registry := prometheus.NewRegistry()

	repairTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docscan",
			Subsystem: "repairer",
			Name:      "record_repair_total",
			Help:      "Total record re-index attempts by status.",
		},
		[]string{"service", "status"},
	)
	repairDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docscan",
			Subsystem: "repairer",
			Name:      "record_repair_duration_seconds",
			Help:      "Record re-index duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	sweepRepaired := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docscan",
			Subsystem: "repairer",
			Name:      "sweep_repaired_records",
			Help:      "Records re-indexed by the most recent full sweep.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(repairTotal, repairDuration, sweepRepaired)

	return &RepairerMetrics{
		registry:       registry,
		repairTotal:    repairTotal,
		repairDuration: repairDuration,
		sweepRepaired:  sweepRepaired,
	}
}

func (m *RepairerMetrics) ObserveRepair(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.repairTotal.WithLabelValues(service, status).Inc()
	m.repairDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *RepairerMetrics) SetSweepRepaired(count int) {
	m.sweepRepaired.Set(float64(count))
}

func (m *RepairerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
