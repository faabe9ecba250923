package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	validatorAttribute = "attribute"
	validatorBoard     = "board"

	resultValid   = "valid"
	resultInvalid = "invalid"
	resultError   = "error"
)

var (
	validationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pcbshop_validation_total",
			Help: "Total number of option validations by validator and result.",
		},
		[]string{"validator", "result"}, // result: valid, invalid or error
	)

	validationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pcbshop_validation_duration_seconds",
			Help:    "Time taken to load options and validate, in seconds.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"validator"},
	)

	snapshotsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pcbshop_snapshots_published_total",
			Help: "Total number of option snapshots written by kind.",
		},
		[]string{"kind"},
	)
)

func observeValidation(validator, result string, start time.Time) {
	validationTotal.WithLabelValues(validator, result).Inc()
	validationDuration.WithLabelValues(validator).Observe(time.Since(start).Seconds())
}
