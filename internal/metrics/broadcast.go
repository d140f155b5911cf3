package metrics

import "github.com/prometheus/client_golang/prometheus"

// BroadcastMetrics holds Prometheus metrics for live bill viewers.
type BroadcastMetrics struct {
	ActiveConnections  prometheus.Gauge
	MessagesSent       prometheus.Counter
	ConnectionsReaped  prometheus.Counter
	ConnectionsRefused prometheus.Counter
}

// NewBroadcastMetrics creates and registers broadcast metrics on the given registry.
func NewBroadcastMetrics(reg prometheus.Registerer) *BroadcastMetrics {
	m := &BroadcastMetrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_connections",
			Help:      "Number of live bill viewer connections.",
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "messages_sent_total",
			Help:      "Invalidation messages handed to viewer connections.",
		}),
		ConnectionsReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "connections_reaped_total",
			Help:      "Connections dropped after a failed or stalled send.",
		}),
		ConnectionsRefused: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "connections_refused_total",
			Help:      "Connections refused because the bill had too many viewers.",
		}),
	}

	reg.MustRegister(m.ActiveConnections, m.MessagesSent, m.ConnectionsReaped, m.ConnectionsRefused)
	return m
}

// Connected records a newly registered connection.
func (m *BroadcastMetrics) Connected() {
	if m != nil {
		m.ActiveConnections.Inc()
	}
}

// Reaped records a connection dropped by a broadcast.
func (m *BroadcastMetrics) Reaped() {
	if m != nil {
		m.ConnectionsReaped.Inc()
		m.ActiveConnections.Dec()
	}
}

// Closed records a connection removed without a failed send.
func (m *BroadcastMetrics) Closed() {
	if m != nil {
		m.ActiveConnections.Dec()
	}
}

// Refused records a connection turned away at the viewer cap.
func (m *BroadcastMetrics) Refused() {
	if m != nil {
		m.ConnectionsRefused.Inc()
	}
}

// Sent records one message queued to a connection.
func (m *BroadcastMetrics) Sent() {
	if m != nil {
		m.MessagesSent.Inc()
	}
}
