package renderer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	configureDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "card_configure_duration_seconds",
		Help:    "Time spent configuring a confirmation card.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	configureTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "card_configure_total",
		Help: "Total configure calls grouped by outcome.",
	}, []string{"result"})

	categoryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "card_category_total",
		Help: "Bound cards grouped by ride category.",
	}, []string{"category"})
)
