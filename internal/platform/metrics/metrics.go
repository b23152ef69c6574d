// Package metrics exposes Prometheus instrumentation for the MCP server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles the server's Prometheus collectors behind one registry so tests
// can run with isolated instances instead of the global default registerer.
type Set struct {
	registry *prometheus.Registry

	ActiveSessions  prometheus.Gauge
	SessionsCreated prometheus.Counter
	ToolCalls       *prometheus.CounterVec
}

// New registers the server's collectors on a fresh registry.
func New() *Set {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Set{
		registry: registry,
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "veil_mcp_active_sessions",
			Help: "Number of live MCP sessions.",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "veil_mcp_sessions_created_total",
			Help: "Sessions created since process start.",
		}),
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veil_mcp_tool_calls_total",
			Help: "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
	}
}

// RecordToolCall increments the tool-call counter for one invocation.
func (s *Set) RecordToolCall(tool string, err error) {
	if s == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.ToolCalls.WithLabelValues(tool, outcome).Inc()
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
