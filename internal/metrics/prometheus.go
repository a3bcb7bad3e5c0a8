// Package metrics provides Prometheus metrics for the inspection pipeline
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Extraction metrics
	AnnotationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_annotations_total",
			Help: "Total number of candidate annotations located on drawings",
		},
		[]string{"family"},
	)

	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_records_total",
			Help: "Damage records handed to the store, by outcome",
		},
		[]string{"result"},
	)

	SpansSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_spans_skipped_total",
			Help: "Spans skipped during import, by cause",
		},
		[]string{"reason"},
	)

	// Photo lookup metrics
	PhotoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_photo_lookups_total",
			Help: "Photo pattern lookups, by listing cache result",
		},
		[]string{"cache"},
	)

	PhotoLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inspection_photo_lookup_duration_seconds",
			Help:    "Time spent listing one photo folder",
			Buckets: prometheus.DefBuckets,
		},
	)

	ImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inspection_import_duration_seconds",
			Help:    "Time taken to import one drawing",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"status"},
	)
)

// RecordAnnotation counts a located annotation.
func RecordAnnotation(unspecified bool) {
	family := "structured"
	if unspecified {
		family = "unspecified"
	}
	AnnotationsTotal.WithLabelValues(family).Inc()
}

// RecordOutcome counts a store outcome ("inserted", "unchanged", "error").
func RecordOutcome(result string) {
	RecordsTotal.WithLabelValues(result).Inc()
}

// RecordSpanSkipped counts a skipped span.
func RecordSpanSkipped(reason string) {
	SpansSkipped.WithLabelValues(reason).Inc()
}

// RecordPhotoLookup counts a lookup and, on a miss, the listing time.
func RecordPhotoLookup(hit bool, duration time.Duration) {
	if hit {
		PhotoLookups.WithLabelValues("hit").Inc()
		return
	}
	PhotoLookups.WithLabelValues("miss").Inc()
	PhotoLookupDuration.Observe(duration.Seconds())
}

// RecordImport observes the duration of a drawing import.
func RecordImport(status string, duration time.Duration) {
	ImportDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
