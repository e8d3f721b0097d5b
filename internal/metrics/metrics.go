// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the cost-management engine.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - It mirrors the storage abstraction pattern used elsewhere in the
//     project (storage.Store + factory), keeping concrete metric systems
//     isolated in subpackages.
//
// The primary use case is instrumentation of engine operations (ingest,
// schema evolution, reporting) without coupling the core logic to a specific
// metrics system.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a latency/duration style value.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)      {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                              { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordOp measures one engine operation: latency plus success/failure.
// op is the operation name ("ingest", "evolve_schema", "summarize", ...);
// table is the affected table.
func RecordOp(op, table string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"op":     op,
		"table":  table,
		"status": status,
	}

	backend.IncCounter("cost_engine_ops_total", 1, lbls)
	backend.ObserveDuration("cost_engine_op_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a record-level counter for the given table.
//
// Typical kinds mirror the ingestion stages, e.g.:
//   - "normalized"
//   - "derived"
//   - "written"
//   - "rejected"
func RecordRows(table, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("cost_engine_records_total", float64(delta), Labels{
		"table": table,
		"kind":  kind,
	})
}
