// Package metrics exposes Prometheus counters/gauges for the routing loop and keepalive
// worker. Neither the teacher nor the distilled spec calls for metrics; this is ambient
// observability plumbing per SPEC_FULL.md §8, pulled from the wider example pack.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors the router package reports through.
type Metrics struct {
	routes           prometheus.Gauge
	destinations     prometheus.Gauge
	framesForwarded  prometheus.Counter
	framesDropped    prometheus.Counter
	keepaliveFrames  prometheus.Counter
}

// New registers and returns the collectors on reg. Pass prometheus.NewRegistry() for
// isolated tests, or prometheus.DefaultRegisterer for the process-wide registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matrixrouter",
			Name:      "active_routes",
			Help:      "Number of active routes in the matrix.",
		}),
		destinations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matrixrouter",
			Name:      "destinations",
			Help:      "Number of configured destinations.",
		}),
		framesForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matrixrouter",
			Name:      "frames_forwarded_total",
			Help:      "Video frames successfully forwarded to a destination sender.",
		}),
		framesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matrixrouter",
			Name:      "frames_dropped_total",
			Help:      "Video frames that failed to send to a destination sender.",
		}),
		keepaliveFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matrixrouter",
			Name:      "keepalive_frames_total",
			Help:      "Black keepalive frames sent while no routes were active.",
		}),
	}
	reg.MustRegister(m.routes, m.destinations, m.framesForwarded, m.framesDropped, m.keepaliveFrames)
	return m
}

// ObserveTick implements router.Metrics.
func (m *Metrics) ObserveTick(routes, destinations int) {
	m.routes.Set(float64(routes))
	m.destinations.Set(float64(destinations))
}

// FrameForwarded implements router.Metrics.
func (m *Metrics) FrameForwarded() { m.framesForwarded.Inc() }

// FrameDropped implements router.Metrics.
func (m *Metrics) FrameDropped() { m.framesDropped.Inc() }

// KeepaliveFrame implements router.Metrics.
func (m *Metrics) KeepaliveFrame() { m.keepaliveFrames.Inc() }
