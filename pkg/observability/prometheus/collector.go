package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shellkitio/shellkit/pkg/async"
)

// LoopCollector exposes event loop counters as Prometheus metrics by reading
// a stats snapshot on every scrape, so the loop itself stays free of any
// metrics dependency.
type LoopCollector struct {
	loop *async.EventLoop

	submitted *prometheus.Desc
	completed *prometheus.Desc
	retried   *prometheus.Desc
	pending   *prometheus.Desc
	workers   *prometheus.Desc
}

// NewLoopCollector creates a collector over the given loop.
func NewLoopCollector(loop *async.EventLoop) *LoopCollector {
	return &LoopCollector{
		loop: loop,
		submitted: prometheus.NewDesc(
			"shellkit_loop_tasks_submitted_total",
			"Total number of tasks accepted by the event loop", nil, nil),
		completed: prometheus.NewDesc(
			"shellkit_loop_tasks_completed_total",
			"Total number of tasks whose closure has finished", nil, nil),
		retried: prometheus.NewDesc(
			"shellkit_loop_dispatch_retries_total",
			"Total number of dispatch attempts deferred by a full queue", nil, nil),
		pending: prometheus.NewDesc(
			"shellkit_loop_tasks_pending",
			"Tracked tasks not yet reaped", nil, nil),
		workers: prometheus.NewDesc(
			"shellkit_loop_workers",
			"Configured worker count", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *LoopCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.submitted
	ch <- c.completed
	ch <- c.retried
	ch <- c.pending
	ch <- c.workers
}

// Collect implements prometheus.Collector.
func (c *LoopCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.loop.Stats()
	ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.CounterValue, float64(stats.Submitted))
	ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue, float64(stats.Completed))
	ch <- prometheus.MustNewConstMetric(c.retried, prometheus.CounterValue, float64(stats.Retried))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(stats.Pending))
	ch <- prometheus.MustNewConstMetric(c.workers, prometheus.GaugeValue, float64(stats.Workers))
}

// RegisterLoop registers a collector for the loop on the default registry.
func RegisterLoop(loop *async.EventLoop) error {
	return DefaultRegisterer.Register(NewLoopCollector(loop))
}
