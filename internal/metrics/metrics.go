// Package metrics exposes Prometheus instruments for generation and
// interaction timing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
)

// Recorder owns a registry so tests and multiple servers do not collide on
// the global one.
type Recorder struct {
	registry *prometheus.Registry

	generateSeconds    *prometheus.HistogramVec
	cellsTotal         *prometheus.CounterVec
	interactionSeconds prometheus.Histogram
	staleSettles       prometheus.Counter
	clicks             prometheus.Counter
}

// NewRecorder registers the heat map instruments on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generateSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "heatmap_generate_seconds",
			Help:    "Time spent generating a grid.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
		}, []string{"mode"}),
		cellsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heatmap_cells_generated_total",
			Help: "Grid cells generated.",
		}, []string{"mode"}),
		interactionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "heatmap_interaction_seconds",
			Help:    "Time from a committed configuration change to the settled frame.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
		staleSettles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "heatmap_stale_settles_total",
			Help: "Frame-settled notifications dropped because a newer change started.",
		}),
		clicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "heatmap_cell_clicks_total",
			Help: "Cell clicks reported by the page.",
		}),
	}
	r.registry.MustRegister(r.generateSeconds, r.cellsTotal, r.interactionSeconds, r.staleSettles, r.clicks)
	return r
}

// ObserveGenerate records one Generate call.
func (r *Recorder) ObserveGenerate(mode heatmap.Mode, size heatmap.GridSize, d time.Duration) {
	r.generateSeconds.WithLabelValues(mode.String()).Observe(d.Seconds())
	r.cellsTotal.WithLabelValues(mode.String()).Add(float64(size.Cells()))
}

// ObserveInteraction records a published readout.
func (r *Recorder) ObserveInteraction(seconds float64) {
	r.interactionSeconds.Observe(seconds)
}

// StaleSettle counts a dropped notification.
func (r *Recorder) StaleSettle() {
	r.staleSettles.Inc()
}

// Click counts a reported cell click.
func (r *Recorder) Click() {
	r.clicks.Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
