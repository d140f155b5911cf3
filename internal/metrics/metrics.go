// Package metrics defines the Prometheus metrics exported by the server.
//
// Each concern gets its own struct registered on a caller-supplied
// Registerer, so tests can use a throwaway registry. All Observe/Inc helpers
// are safe to call on a nil receiver, which disables the metric.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitclaim"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// result labels an operation outcome.
func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
