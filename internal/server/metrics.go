package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "happydash_updates_total",
		Help: "Dashboard updates by outcome.",
	}, []string{"outcome"})

	updateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "happydash_update_duration_seconds",
		Help:    "Time spent filtering and summarizing one update.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	updateRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "happydash_update_rows",
		Help:    "Rows in the filtered view.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)
