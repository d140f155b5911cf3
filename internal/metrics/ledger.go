package metrics

import "github.com/prometheus/client_golang/prometheus"

// LedgerMetrics holds Prometheus metrics for bill ledger operations.
type LedgerMetrics struct {
	Operations *prometheus.CounterVec
	Claims     *prometheus.CounterVec
}

// NewLedgerMetrics creates and registers ledger metrics on the given registry.
// liveBills reports how many bills currently hold a mailbox.
func NewLedgerMetrics(reg prometheus.Registerer, liveBills func() int) *LedgerMetrics {
	m := &LedgerMetrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by operation and result.",
		}, []string{"operation", "result"}),
		Claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "claims_total",
			Help:      "Applied claims by effect (added, updated, removed, unchanged).",
		}, []string{"effect"}),
	}

	reg.MustRegister(m.Operations, m.Claims)
	if liveBills != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "live_bills",
			Help:      "Bills with queued or running operations.",
		}, func() float64 { return float64(liveBills()) }))
	}
	return m
}

// ObserveOperation counts one ledger operation.
func (m *LedgerMetrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, result(err)).Inc()
}

// ObserveClaim counts the effect of an applied claim.
func (m *LedgerMetrics) ObserveClaim(effect string) {
	if m == nil {
		return
	}
	m.Claims.WithLabelValues(effect).Inc()
}
