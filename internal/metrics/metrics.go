// Package metrics exposes Prometheus collectors for the catalog.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
)

var (
	catalogBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_books",
			Help: "Number of books currently in the catalog",
		},
	)

	catalogCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_capacity",
			Help: "Maximum number of books the catalog holds",
		},
	)

	catalogEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_events_total",
			Help: "Total number of catalog mutations by type",
		},
		[]string{"type"},
	)
)

// Sizer reports the current catalog size and bound.
type Sizer interface {
	Len() int
	Capacity() int
}

// Recorder updates the catalog collectors from store events.
type Recorder struct {
	sizer Sizer
}

// NewRecorder creates a Recorder and publishes the initial size and capacity.
func NewRecorder(s Sizer) *Recorder {
	r := &Recorder{sizer: s}
	catalogCapacity.Set(float64(s.Capacity()))
	catalogBooks.Set(float64(s.Len()))
	return r
}

// Observe counts the event and refreshes the size gauge.
func (r *Recorder) Observe(e model.CatalogEvent) {
	catalogEventsTotal.WithLabelValues(string(e.Type)).Inc()
	catalogBooks.Set(float64(r.sizer.Len()))
}
