// Package metrics exposes viewer activity to prometheus: render group builds
// and reuses, UI actions and connected sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hepevd"

// Metrics holds the viewer's collectors on their own registry
type Metrics struct {
	registry *prometheus.Registry

	groupBuilds  *prometheus.CounterVec
	groupReuses  *prometheus.CounterVec
	actions      *prometheus.CounterVec
	sessions     prometheus.Gauge
	eventLoads   *prometheus.CounterVec
	eventVersion prometheus.Gauge
}

// New registers every collector, plus the go and process collectors, on a
// fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Labels: view (2D, 3D), layer (hits, mc, markers, ...)
		groupBuilds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "groups",
			Name:      "built_total",
			Help:      "Render groups built on a cache miss",
		}, []string{"view", "layer"}),
		groupReuses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "groups",
			Name:      "reused_total",
			Help:      "Render groups served from the cache",
		}, []string{"view", "layer"}),

		// Labels: action (property, type, marker, ...), changed (true, false)
		actions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "actions_total",
			Help:      "UI actions received from clients",
		}, []string{"action", "changed"}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "sessions",
			Help:      "Connected viewer sessions",
		}),

		// Labels: source (file, api, store)
		eventLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "loaded_total",
			Help:      "Events made current",
		}, []string{"source"}),
		eventVersion: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "version",
			Help:      "Version of the current event",
		}),
	}
}

// GroupBuilt records a cache miss
func (m *Metrics) GroupBuilt(view, layer string) {
	m.groupBuilds.WithLabelValues(view, layer).Inc()
}

// GroupReused records a cache hit
func (m *Metrics) GroupReused(view, layer string) {
	m.groupReuses.WithLabelValues(view, layer).Inc()
}

// Action records a UI action
func (m *Metrics) Action(action string, changed bool) {
	c := "false"
	if changed {
		c = "true"
	}
	m.actions.WithLabelValues(action, c).Inc()
}

// SessionOpened increments the session gauge
func (m *Metrics) SessionOpened() {
	m.sessions.Inc()
}

// SessionClosed decrements the session gauge
func (m *Metrics) SessionClosed() {
	m.sessions.Dec()
}

// EventLoaded records a new current event
func (m *Metrics) EventLoaded(source string, version uint64) {
	m.eventLoads.WithLabelValues(source).Inc()
	m.eventVersion.Set(float64(version))
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
