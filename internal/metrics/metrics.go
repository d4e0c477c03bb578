// Package metrics provides Prometheus metrics for the MCP server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the server.
type Metrics struct {
	ToolCallsTotal       *prometheus.CounterVec
	ToolCallDuration     *prometheus.HistogramVec
	BackendRequestsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry so the
// server never collides with default-registry users.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		ToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamhood_mcp_tool_calls_total",
				Help: "Total number of tool calls by tool and status.",
			},
			[]string{"tool", "status"},
		),
		ToolCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "teamhood_mcp_tool_call_duration_seconds",
				Help:    "Tool call duration by tool.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		BackendRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamhood_mcp_backend_requests_total",
				Help: "Total number of Teamhood API requests by method and status code.",
			},
			[]string{"method", "code"},
		),
		registry: reg,
	}

	reg.MustRegister(m.ToolCallsTotal)
	reg.MustRegister(m.ToolCallDuration)
	reg.MustRegister(m.BackendRequestsTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordToolCall increments the tool call counter.
func (m *Metrics) RecordToolCall(tool, status string) {
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
}

// ObserveToolCallDuration records how long a tool call took.
func (m *Metrics) ObserveToolCallDuration(tool string, seconds float64) {
	m.ToolCallDuration.WithLabelValues(tool).Observe(seconds)
}

// RecordBackendRequest increments the API request counter.
func (m *Metrics) RecordBackendRequest(method, code string) {
	m.BackendRequestsTotal.WithLabelValues(method, code).Inc()
}
