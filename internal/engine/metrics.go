package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the instrumentation surface of a sync pass. A nil *Metrics is
// valid and records nothing, which keeps tests and one-shot runs free of a
// registry.
type Metrics struct {
	rowsSynced    *prometheus.CounterVec
	tableFailures *prometheus.CounterVec
	watermark     *prometheus.GaugeVec
	passDuration  prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rowsSynced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warehouse_sync",
			Name:      "rows_synced_total",
			Help:      "Rows loaded into the warehouse, per table.",
		}, []string{"table"}),
		tableFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warehouse_sync",
			Name:      "table_failures_total",
			Help:      "Table syncs that ended in an error, per table.",
		}, []string{"table"}),
		watermark: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "warehouse_sync",
			Name:      "watermark_row_id",
			Help:      "Last synced row id, per table.",
		}, []string{"table"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "warehouse_sync",
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a full sync pass.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
	reg.MustRegister(m.rowsSynced, m.tableFailures, m.watermark, m.passDuration)
	return m
}

func (m *Metrics) ObserveRows(table string, n int) {
	if m == nil {
		return
	}
	m.rowsSynced.WithLabelValues(table).Add(float64(n))
}

func (m *Metrics) ObserveFailure(table string) {
	if m == nil {
		return
	}
	m.tableFailures.WithLabelValues(table).Inc()
}

func (m *Metrics) ObserveWatermark(table string, rowID int64) {
	if m == nil {
		return
	}
	m.watermark.WithLabelValues(table).Set(float64(rowID))
}

func (m *Metrics) ObservePass(d time.Duration) {
	if m == nil {
		return
	}
	m.passDuration.Observe(d.Seconds())
}
