// Package metrics exposes prometheus collectors for a viewer process.
//
// All Record methods are no-ops on a nil *Registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Render run outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
)

// Registry holds all metrics for the viewer
type Registry struct {
	// Render Metrics
	RenderRunsTotal       *prometheus.CounterVec
	RenderRunDuration     prometheus.Histogram
	RenderTicksTotal      prometheus.Counter
	RenderTickDuration    prometheus.Histogram
	RenderPrimitivesTotal *prometheus.CounterVec
	RenderInFlight        prometheus.Gauge

	// Session Metrics
	DatasetLoadsTotal *prometheus.CounterVec
	DatasetElements   prometheus.Gauge
	SelectionsTotal   prometheus.Counter

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initRenderMetrics()
	r.initSessionMetrics()
	return r
}

func (r *Registry) initRenderMetrics() {
	r.RenderRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "primeview_render_runs_total",
			Help: "Total number of render runs by outcome",
		},
		[]string{"outcome"},
	)

	r.RenderRunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "primeview_render_run_duration_seconds",
			Help:    "Wall time from start to completion of a render run",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
	)

	r.RenderTicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "primeview_render_ticks_total",
			Help: "Total number of render ticks that did work",
		},
	)

	r.RenderTickDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "primeview_render_tick_duration_seconds",
			Help:    "Time spent emitting primitives in one tick",
			Buckets: []float64{0.0005, 0.001, 0.004, 0.008, 0.016, 0.033, 0.1},
		},
	)

	r.RenderPrimitivesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "primeview_render_primitives_total",
			Help: "Total number of primitives emitted by kind",
		},
		[]string{"kind"},
	)

	r.RenderInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "primeview_render_in_flight",
			Help: "1 while a render run is in progress",
		},
	)
}

func (r *Registry) initSessionMetrics() {
	r.DatasetLoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "primeview_dataset_loads_total",
			Help: "Total number of dataset loads by status",
		},
		[]string{"status"},
	)

	r.DatasetElements = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "primeview_dataset_elements",
			Help: "Number of elements in the displayed dataset",
		},
	)

	r.SelectionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "primeview_selections_total",
			Help: "Total number of element selections",
		},
	)
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordRunStart marks a render run in flight.
func (r *Registry) RecordRunStart() {
	if r == nil {
		return
	}
	r.RenderInFlight.Set(1)
}

// RecordRun records the end of a render run.
func (r *Registry) RecordRun(outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.RenderInFlight.Set(0)
	r.RenderRunsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeCompleted {
		r.RenderRunDuration.Observe(duration.Seconds())
	}
}

// RecordTick records the primitives emitted by one tick.
func (r *Registry) RecordTick(points, lines int, duration time.Duration) {
	if r == nil {
		return
	}
	r.RenderTicksTotal.Inc()
	r.RenderTickDuration.Observe(duration.Seconds())
	r.RenderPrimitivesTotal.WithLabelValues("point").Add(float64(points))
	r.RenderPrimitivesTotal.WithLabelValues("line").Add(float64(lines))
}

// RecordLoad records a dataset load; elements is ignored on failure.
func (r *Registry) RecordLoad(err error, elements int) {
	if r == nil {
		return
	}
	if err != nil {
		r.DatasetLoadsTotal.WithLabelValues("error").Inc()
		return
	}
	r.DatasetLoadsTotal.WithLabelValues("ok").Inc()
	r.DatasetElements.Set(float64(elements))
}

// RecordSelection counts an element selection.
func (r *Registry) RecordSelection() {
	if r == nil {
		return
	}
	r.SelectionsTotal.Inc()
}
