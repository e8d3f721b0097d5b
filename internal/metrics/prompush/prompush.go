// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the engine labels (op, table, status) onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint; engine runs are batch-shaped, so
//     there is no long-lived process to scrape.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus.
package prompush

import (
	"fmt"

	"costengine/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	opCounter     *prometheus.CounterVec // "cost_engine_ops_total"
	opDuration    *prometheus.SummaryVec // "cost_engine_op_duration_seconds"
	recordCounter *prometheus.CounterVec // "cost_engine_records_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name. gatewayURL: base URL of the server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "cost_engine"
	}

	reg := prometheus.NewRegistry()

	opCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cost_engine_ops_total",
			Help: "Total engine operations, partitioned by op, table, and status.",
		},
		[]string{"op", "table", "status"},
	)
	opDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "cost_engine_op_duration_seconds",
			Help:       "Duration of engine operations in seconds, partitioned by op, table, and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"op", "table", "status"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cost_engine_records_total",
			Help: "Record-level counts per table and stage (normalized, derived, written, rejected).",
		},
		[]string{"table", "kind"},
	)

	if err := reg.Register(opCounter); err != nil {
		return nil, fmt.Errorf("prompush: register op counter: %w", err)
	}
	if err := reg.Register(opDuration); err != nil {
		return nil, fmt.Errorf("prompush: register op summary: %w", err)
	}
	if err := reg.Register(recordCounter); err != nil {
		return nil, fmt.Errorf("prompush: register record counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		opCounter:     opCounter,
		opDuration:    opDuration,
		recordCounter: recordCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "cost_engine_ops_total":
		if b.opCounter == nil {
			return
		}
		b.opCounter.WithLabelValues(labels["op"], labels["table"], labels["status"]).Add(delta)

	case "cost_engine_records_total":
		if b.recordCounter == nil {
			return
		}
		b.recordCounter.WithLabelValues(labels["table"], labels["kind"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveDuration(name string, value float64, labels metrics.Labels) {
	if name != "cost_engine_op_duration_seconds" || b.opDuration == nil {
		return
	}
	b.opDuration.WithLabelValues(labels["op"], labels["table"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
