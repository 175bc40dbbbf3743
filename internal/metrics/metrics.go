// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ProjectionsCached = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "site_projections_cached",
			Help: "Number of site projections currently held in memory.",
		})

	ProjectionLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_projection_load_total",
			Help: "Cumulative number of site projections fetched from the builder API.",
		})

	ProjectionLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_projection_load_errors_total",
			Help: "Cumulative number of failed site projection fetches.",
		})

	ProjectionEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_projection_evict_total",
			Help: "Cumulative number of projections evicted or invalidated.",
		})

	SectionsRenderedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sections_rendered_total",
			Help: "Sections rendered, by mode.",
		}, []string{"mode"})

	SectionFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "section_fallback_total",
			Help: "Sections rendered as placeholders, by reason (unresolved, error).",
		}, []string{"reason"})

	EditorSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editor_saves_total",
			Help: "Field editor save attempts, by result.",
		}, []string{"result"})

	EditorSuggestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editor_suggestions_total",
			Help: "Smart suggestion requests, by result.",
		}, []string{"result"})

	PreviewUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "preview_updates_total",
			Help: "Debounced draft updates delivered to the preview bridge.",
		})

	PreviewSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "preview_subscribers",
			Help: "Open live-preview WebSocket connections.",
		})
)

func init() {
	prometheus.MustRegister(
		ProjectionsCached,
		ProjectionLoadTotal,
		ProjectionLoadErrorsTotal,
		ProjectionEvictTotal,
		SectionsRenderedTotal,
		SectionFallbackTotal,
		EditorSavesTotal,
		EditorSuggestionsTotal,
		PreviewUpdatesTotal,
		PreviewSubscribers,
	)
}
