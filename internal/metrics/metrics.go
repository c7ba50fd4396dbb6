// Package metrics exposes store and tool instrumentation as Prometheus
// collectors on a dedicated registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hvacquote"

// Registry owns the collectors. It satisfies project.Metrics.
type Registry struct {
	reg *prometheus.Registry

	mutations       *prometheus.CounterVec
	persistDuration prometheus.Histogram
	persistFailures prometheus.Counter
	activeItems     prometheus.Gauge
	toolCalls       *prometheus.CounterVec
}

// New builds a registry with the Go runtime and process collectors plus the
// estimator's own metrics.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Project store mutations by operation.",
		}, []string{"op"}),
		persistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persist_duration_seconds",
			Help:      "Time spent writing a project and its index entry.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Project writes that failed.",
		}),
		activeItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_project_items",
			Help:      "Line items in the active project.",
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "MCP tool calls by tool and outcome.",
		}, []string{"tool", "outcome"}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.mutations,
		r.persistDuration,
		r.persistFailures,
		r.activeItems,
		r.toolCalls,
	)
	return r
}

// ObserveMutation counts a store mutation.
func (r *Registry) ObserveMutation(op string) {
	r.mutations.WithLabelValues(op).Inc()
}

// ObservePersist records a project write.
func (r *Registry) ObservePersist(d time.Duration, err error) {
	r.persistDuration.Observe(d.Seconds())
	if err != nil {
		r.persistFailures.Inc()
	}
}

// SetActiveItems sets the active project's item count.
func (r *Registry) SetActiveItems(n int) {
	r.activeItems.Set(float64(n))
}

// ObserveToolCall counts an MCP tool call.
func (r *Registry) ObserveToolCall(tool string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer returns the underlying registry for scraping in tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
