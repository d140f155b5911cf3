package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RPCMetrics holds Prometheus metrics for RPC handling.
type RPCMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewRPCMetrics creates and registers RPC metrics on the given registry.
func NewRPCMetrics(reg prometheus.Registerer) *RPCMetrics {
	m := &RPCMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "RPC requests by procedure and status code.",
		}, []string{"procedure", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}

	reg.MustRegister(m.Requests, m.Duration)
	return m
}

// Observe records one finished RPC.
func (m *RPCMetrics) Observe(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(procedure, code).Inc()
	m.Duration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}
