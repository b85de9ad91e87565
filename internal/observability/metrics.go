// Package observability provides Prometheus metrics for the API surface.
// The aggregation and resolution cores stay metric-free; counters are
// incremented from the orchestration layer only.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics backed by a private registry so
// tests never collide on the default global one.
type Metrics struct {
	registry *prometheus.Registry

	TaxonomySearches prometheus.Counter
	NameResolutions  *prometheus.CounterVec // outcome: matched | unmatched
	DexUpdates       *prometheus.CounterVec // mode: rebuild | incremental | merge
	DexSpeciesCount  prometheus.Gauge
	RequestDuration  *prometheus.HistogramVec // handler label
}

// NewMetrics creates and registers all metrics.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.TaxonomySearches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "birddex_taxonomy_searches_total",
		Help: "Total number of taxonomy search requests",
	})
	m.NameResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birddex_name_resolutions_total",
		Help: "Total number of species name resolutions by outcome",
	}, []string{"outcome"})
	m.DexUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birddex_dex_updates_total",
		Help: "Total number of dex aggregation runs by mode",
	}, []string{"mode"})
	m.DexSpeciesCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "birddex_dex_species",
		Help: "Species count of the most recently written dex",
	})
	m.RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "birddex_request_duration_seconds",
		Help:    "API request duration by handler",
		Buckets: prometheus.DefBuckets,
	}, []string{"handler"})

	collectors := []prometheus.Collector{
		m.TaxonomySearches,
		m.NameResolutions,
		m.DexUpdates,
		m.DexSpeciesCount,
		m.RequestDuration,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return m, nil
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
