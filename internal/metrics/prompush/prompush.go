// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the common labels (job, step, status) onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint, since the connector is a
//     short-lived batch process.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can
// swap to alternative backends (e.g. Datadog, StatsD) without changes to the
// core sync logic.
package prompush

import (
	"fmt"

	"targetmysql/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // "target_step_total"
	stepDuration *prometheus.SummaryVec // "target_step_duration_seconds"

	tableCounter   *prometheus.CounterVec // "target_tables_total"
	messageCounter *prometheus.CounterVec // "target_messages_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often same as the sync job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "target_mysql"
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key; step/status/outcome/kind are
	// dynamic labels on the collectors themselves.
	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "target_step_total",
			Help: "Total number of sync step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "target_step_duration_seconds",
			Help:       "Duration of sync steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	tableCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "target_tables_total",
			Help: "Table reconciliation outcomes (prepared, unchanged).",
		},
		[]string{"outcome"},
	)
	messageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "target_messages_total",
			Help: "Upstream messages processed per kind (schema, record, state, ...).",
		},
		[]string{"kind"},
	)

	if err := reg.Register(stepCounter); err != nil {
		return nil, fmt.Errorf("prompush: register step counter: %w", err)
	}
	if err := reg.Register(stepDuration); err != nil {
		return nil, fmt.Errorf("prompush: register step summary: %w", err)
	}
	if err := reg.Register(tableCounter); err != nil {
		return nil, fmt.Errorf("prompush: register table counter: %w", err)
	}
	if err := reg.Register(messageCounter); err != nil {
		return nil, fmt.Errorf("prompush: register message counter: %w", err)
	}

	return &Backend{
		gatewayURL:     gatewayURL,
		jobName:        jobName,
		reg:            reg,
		stepCounter:    stepCounter,
		stepDuration:   stepDuration,
		tableCounter:   tableCounter,
		messageCounter: messageCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "target_step_total":
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case "target_tables_total":
		if b.tableCounter == nil {
			return
		}
		b.tableCounter.WithLabelValues(labels["outcome"]).Add(delta)

	case "target_messages_total":
		if b.messageCounter == nil {
			return
		}
		b.messageCounter.WithLabelValues(labels["kind"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "target_step_duration_seconds" || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
