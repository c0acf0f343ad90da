// Package metrics exposes prometheus instrumentation for process generation
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	formatBinary = "binary"
	formatText   = "text"
)

// Metrics holds all Prometheus metrics for a generation run
type Metrics struct {
	registry *prometheus.Registry

	recordsTotal   *prometheus.CounterVec
	bytesWritten   *prometheus.CounterVec
	segmentSize    *prometheus.HistogramVec
	recordDuration prometheus.Histogram
	catalogErrors  prometheus.Counter
}

// NewMetrics creates all metrics and registers them on reg.
// A nil registry gets a fresh one.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "procgen_records_total",
				Help: "Total number of process records attempted",
			},
			[]string{"status"},
		),

		bytesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "procgen_bytes_written_total",
				Help: "Total bytes written per output format",
			},
			[]string{"format"},
		),

		segmentSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "procgen_segment_size_bytes",
				Help:    "Size of generated code and data segments in bytes",
				Buckets: prometheus.LinearBuckets(16, 16, 12),
			},
			[]string{"segment"},
		),

		recordDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "procgen_record_duration_seconds",
				Help:    "Time spent writing one record pair",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),

		catalogErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "procgen_catalog_errors_total",
				Help: "Total number of records that could not be cataloged",
			},
		),
	}
}

// RecordGenerated records a successfully written record pair
func (m *Metrics) RecordGenerated(codeSize, dataSize int, binaryBytes int64, duration time.Duration) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(statusSuccess).Inc()
	m.bytesWritten.WithLabelValues(formatBinary).Add(float64(binaryBytes))
	// Three text characters per binary byte
	m.bytesWritten.WithLabelValues(formatText).Add(float64(3 * binaryBytes))
	m.segmentSize.WithLabelValues("code").Observe(float64(codeSize))
	m.segmentSize.WithLabelValues("data").Observe(float64(dataSize))
	m.recordDuration.Observe(duration.Seconds())
}

// RecordFailed records a record pair that could not be written
func (m *Metrics) RecordFailed(duration time.Duration) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(statusError).Inc()
	m.recordDuration.Observe(duration.Seconds())
}

// RecordCatalogError records a failed catalog write
func (m *Metrics) RecordCatalogError() {
	if m == nil {
		return
	}
	m.catalogErrors.Inc()
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current metric values in the Prometheus text
// format, suitable for the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
