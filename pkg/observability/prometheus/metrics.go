package prometheus

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DefaultRegistry is the default Prometheus registry
	DefaultRegistry = prometheus.NewRegistry()

	// DefaultRegisterer is the default Prometheus registerer
	DefaultRegisterer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "shellkit"}, DefaultRegistry)

	metricsOnce sync.Once
	metrics     *Metrics
)

// Metrics holds the bridge-facing Prometheus metrics. It implements
// bridge.Recorder.
type Metrics struct {
	BridgeCallsTotal   *prometheus.CounterVec
	BridgeCallDuration *prometheus.HistogramVec
	BridgeClients      prometheus.Gauge
}

// GetMetrics returns the global metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics(DefaultRegisterer)
	})
	return metrics
}

// NewMetrics creates the bridge metrics collection.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = DefaultRegisterer
	}

	return &Metrics{
		BridgeCallsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "shellkit_bridge_calls_total",
				Help: "Total number of bridge action calls",
			},
			[]string{"action", "status"}, // status: ok, error, unknown
		),
		BridgeCallDuration: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shellkit_bridge_call_duration_seconds",
				Help:    "Bridge action call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action", "status"},
		),
		BridgeClients: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "shellkit_bridge_clients",
				Help: "Number of connected front-end clients",
			},
		),
	}
}

// RecordCall records one bridge action call.
func (m *Metrics) RecordCall(action, status string, elapsed time.Duration) {
	m.BridgeCallsTotal.WithLabelValues(action, status).Inc()
	m.BridgeCallDuration.WithLabelValues(action, status).Observe(elapsed.Seconds())
}

// SetClientCount updates the connected client gauge.
func (m *Metrics) SetClientCount(n int) {
	m.BridgeClients.Set(float64(n))
}

// Handler returns an HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
}
