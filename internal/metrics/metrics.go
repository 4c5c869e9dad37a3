// Package metrics exposes registry activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/1broseidon/winstack/internal/windows"
)

// Metrics holds the collectors fed by registry events. Each instance owns its
// own prometheus.Registry so tests and multiple daemons do not collide.
type Metrics struct {
	registry     *prometheus.Registry
	windows      prometheus.Gauge
	version      prometheus.Gauge
	actions      *prometheus.CounterVec
	focusChanges prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		windows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "winstack_windows",
			Help: "Number of windows in the registry.",
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "winstack_registry_version",
			Help: "Version of the latest registry snapshot.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "winstack_actions_total",
			Help: "Registry mutations by action.",
		}, []string{"action"}),
		focusChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "winstack_focus_changes_total",
			Help: "Number of times the focused window changed.",
		}),
	}
	m.registry.MustRegister(m.windows, m.version, m.actions, m.focusChanges)
	return m
}

// Observe records one registry event.
func (m *Metrics) Observe(ev windows.Event) {
	m.actions.WithLabelValues(string(ev.Action)).Inc()
	if ev.FocusChanged {
		m.focusChanges.Inc()
	}
	m.windows.Set(float64(ev.Snapshot.Len()))
	m.version.Set(float64(ev.Snapshot.Version()))
}

// Observer adapts Observe for windows.Registry.Subscribe.
func (m *Metrics) Observer() windows.Observer {
	return m.Observe
}

// Sync sets the gauges from a snapshot, for use before any event arrives.
func (m *Metrics) Sync(snap *windows.Snapshot) {
	m.windows.Set(float64(snap.Len()))
	m.version.Set(float64(snap.Version()))
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
