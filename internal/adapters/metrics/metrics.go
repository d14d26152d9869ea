// Package metrics exposes dispatcher counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

type Recorder struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry, including the Go
// runtime and process collectors.
func NewRecorder() *Recorder {
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weeklypoll_events_total",
			Help: "Chat events handled, by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Recorder{
		registry: registry,
		events:   events,
	}
}

var _ ports.DispatchMetrics = (*Recorder)(nil)

func (r *Recorder) ObserveEvent(kind, outcome string) {
	r.events.WithLabelValues(kind, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
