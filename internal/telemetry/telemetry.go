// Package telemetry instruments the pipeline with Prometheus metrics. The
// CLI can dump a registry snapshot in text exposition format.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesProcessed    *prometheus.CounterVec
	lyapunovExponent  *prometheus.GaugeVec
	bitBalance        *prometheus.GaugeVec
	screenAttempts    *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics set on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaoscrypt_operations_total",
				Help: "Total number of pipeline operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chaoscrypt_operation_duration_seconds",
				Help:    "Pipeline operation latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"operation"},
		),
		bytesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaoscrypt_bytes_processed_total",
				Help: "Total number of pixel bytes encrypted or decrypted",
			},
			[]string{"direction"},
		),
		lyapunovExponent: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chaoscrypt_lyapunov_exponent",
				Help: "Most recent Lyapunov exponent estimate by system and rank",
			},
			[]string{"system", "rank"},
		),
		bitBalance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chaoscrypt_bitstream_balance",
				Help: "Fraction of ones in the most recent bitstream by system",
			},
			[]string{"system"},
		),
		screenAttempts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chaoscrypt_seed_screen_attempts",
				Help: "Candidates drawn during the most recent seed expansion by system",
			},
			[]string{"system"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.bytesProcessed,
		m.lyapunovExponent,
		m.bitBalance,
		m.screenAttempts,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveOperation records the outcome and latency of one operation.
func (m *Metrics) ObserveOperation(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(op, status).Inc()
	m.operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddBytes(direction string, n int) {
	m.bytesProcessed.WithLabelValues(direction).Add(float64(n))
}

func (m *Metrics) SetExponent(system, rank string, v float64) {
	m.lyapunovExponent.WithLabelValues(system, rank).Set(v)
}

func (m *Metrics) SetBitBalance(system string, v float64) {
	m.bitBalance.WithLabelValues(system).Set(v)
}

func (m *Metrics) SetScreenAttempts(system string, n int) {
	m.screenAttempts.WithLabelValues(system).Set(float64(n))
}

// WriteTextfile writes the registry in Prometheus text format to path,
// atomically, for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
