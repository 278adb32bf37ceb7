// Package datadog ships the connector's metrics to a DogStatsD endpoint.
//
// It adapts metrics.Backend to the official statsd client: counter and
// histogram observations are forwarded as-is, and metric labels become
// "key:value" tags, so target_step_total{step=prepare_table,status=success}
// arrives as target_step_total tagged step:prepare_table, status:success.
// The backend is installed globally via metrics.SetBackend; Flush maps to
// closing the client, which drains its buffer at process shutdown.
package datadog

import (
	"fmt"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"targetmysql/internal/metrics"
)

// Config holds the DogStatsD connection settings, typically sourced from
// the metrics.options section of the target config.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or
	// "unix:///var/run/datadog/dsd.socket". Required.
	Addr string

	// Namespace is an optional prefix for all metric names, e.g. "target.".
	Namespace string

	// GlobalTags are appended to every metric, e.g.
	// []string{"env:prod", "service:target-mysql"}.
	GlobalTags []string
}

// Backend forwards connector metrics to a DogStatsD agent.
type Backend struct {
	client *statsd.Client
}

// NewBackend connects to the configured DogStatsD endpoint.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	opts := []statsd.Option{}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

// IncCounter forwards a counter increment as a DogStatsD count.
// Fractional deltas are truncated; the connector only emits whole counts.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	b.client.Count(name, int64(delta), labelsToTags(labels), 1)
}

// ObserveHistogram forwards a duration observation as a DogStatsD histogram.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	b.client.Histogram(name, value, labelsToTags(labels), 1)
}

// Flush closes the client, draining any buffered datagrams.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// labelsToTags converts metric labels to sorted "key:value" tags. Sorting
// keeps the tag set stable across calls regardless of map iteration order.
func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
