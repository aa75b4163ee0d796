// Package metrics holds the Prometheus collectors of the CAD service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ToolCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cad_tool_calls_total",
		Help: "Total tool invocations",
	}, []string{"tool"})
	ToolFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cad_tool_failures_total",
		Help: "Total tool invocations that returned an error",
	}, []string{"tool"})
	ToolDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cad_tool_duration_ms",
		Help:    "Tool call duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"tool"})
	DocumentLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cad_document_loads_total",
		Help: "Total document loads by store backend",
	}, []string{"backend"})
	DocumentWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cad_document_writes_total",
		Help: "Total document writes by store backend",
	}, []string{"backend"})
	SessionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cad_sessions_open",
		Help: "Number of open document sessions",
	})
)

func init() {
	prometheus.MustRegister(ToolCallsTotal)
	prometheus.MustRegister(ToolFailuresTotal)
	prometheus.MustRegister(ToolDurationMs)
	prometheus.MustRegister(DocumentLoadsTotal)
	prometheus.MustRegister(DocumentWritesTotal)
	prometheus.MustRegister(SessionsOpen)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
