package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breakwater_dispatches_total",
			Help: "Total number of finalized dispatches by pool and outcome.",
		},
		[]string{"pool", "outcome"},
	)

	dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "breakwater_dispatch_duration_seconds",
			Help:    "Time from dispatch to finalization in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pool"},
	)
)
