// Package metrics exports gameplay counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/handstrike/internal/target"
	"github.com/ayusman/handstrike/internal/trigger"
)

const namespace = "handstrike"

// Collector counts frames, detector failures, actions and hits.
type Collector struct {
	registry *prometheus.Registry

	frames   prometheus.Counter
	failures prometheus.Counter
	actions  *prometheus.CounterVec
	hits     *prometheus.CounterVec
	points   *prometheus.CounterVec
}

// New creates a Collector on its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_processed_total",
			Help:      "Camera frames that reached gesture classification.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detect_failures_total",
			Help:      "Frames the hand detector failed on.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Punches and shots fired.",
		}, []string{"kind"}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hits_total",
			Help:      "Actions that hit a target.",
		}, []string{"target"}),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_total",
			Help:      "Points awarded.",
		}, []string{"target"}),
	}
	c.registry.MustRegister(c.frames, c.failures, c.actions, c.hits, c.points)
	return c
}

func (c *Collector) FrameProcessed() { c.frames.Inc() }

func (c *Collector) DetectFailed() { c.failures.Inc() }

func (c *Collector) ActionFired(kind trigger.ActionKind) {
	c.actions.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) TargetHit(typ target.Type, points int) {
	c.hits.WithLabelValues(string(typ)).Inc()
	if points > 0 {
		c.points.WithLabelValues(string(typ)).Add(float64(points))
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics page.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
