// Package metrics provides Prometheus counters for the request log finalizer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the finalizer does with each request's log block. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	FlushesTotal     prometheus.Counter
	EntriesTotal     prometheus.Counter
	BytesTotal       prometheus.Counter
	WriteErrorsTotal prometheus.Counter
	SkippedTotal     prometheus.Counter
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FlushesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "reqlog_flushes_total",
			Help: "Total number of request log blocks written to the log file",
		}),
		EntriesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "reqlog_entries_total",
			Help: "Total number of log entries written to the log file",
		}),
		BytesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "reqlog_bytes_total",
			Help: "Total number of bytes written to the log file",
		}),
		WriteErrorsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "reqlog_write_errors_total",
			Help: "Total number of failed writes to the log file",
		}),
		SkippedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "reqlog_skipped_total",
			Help: "Total number of log blocks dropped because the log file lock was poisoned",
		}),
	}
}

// Flushed records a successful write of n entries totalling size bytes.
func (m *Metrics) Flushed(n, size int) {
	if m == nil {
		return
	}
	m.FlushesTotal.Inc()
	m.EntriesTotal.Add(float64(n))
	m.BytesTotal.Add(float64(size))
}

// WriteFailed records a failed write.
func (m *Metrics) WriteFailed() {
	if m == nil {
		return
	}
	m.WriteErrorsTotal.Inc()
}

// Skipped records a log block dropped without attempting a write.
func (m *Metrics) Skipped() {
	if m == nil {
		return
	}
	m.SkippedTotal.Inc()
}
