// Package metrics exposes Prometheus collectors for the forecast service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup results
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Registry holds every collector the service records to
type Registry struct {
	registry *prometheus.Registry

	GenerationDuration *prometheus.HistogramVec
	CacheLookups       *prometheus.CounterVec
	FetchFailures      *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
	WarmRuns           *prometheus.CounterVec
}

// NewRegistry creates and registers all collectors on a private registry
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecast_generation_duration_seconds",
				Help:    "Time to fetch inputs and synthesize one forecast",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"result"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_cache_lookups_total",
				Help: "Forecast cache lookups by result",
			},
			[]string{"result"},
		),
		FetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_fetch_failures_total",
				Help: "Upstream fetches that fell back to defaults, by source",
			},
			[]string{"source"},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_events_published_total",
				Help: "Forecast events written to Kafka by status",
			},
			[]string{"status"},
		),
		WarmRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_warm_runs_total",
				Help: "Scheduled cache warm attempts per asset by result",
			},
			[]string{"result"},
		),
	}

	r.registry.MustRegister(
		r.GenerationDuration,
		r.CacheLookups,
		r.FetchFailures,
		r.EventsPublished,
		r.WarmRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveGeneration records how long a generation took
func (r *Registry) ObserveGeneration(start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	r.GenerationDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
