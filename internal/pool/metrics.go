package pool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Per-pool metrics, registered once per process via promauto. Label
// cardinality is bounded by the set of pool keys, which is fixed at
// integration time.
var (
	tasksSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breakwater_pool_tasks_submitted_total",
			Help: "Total number of tasks submitted to a pool, including rejected ones.",
		},
		[]string{"pool"},
	)

	tasksRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breakwater_pool_tasks_rejected_total",
			Help: "Total number of tasks rejected because the queue was at its rejection threshold.",
		},
		[]string{"pool"},
	)

	poolQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "breakwater_pool_queue_depth",
			Help: "Tasks currently waiting in a pool queue.",
		},
		[]string{"pool"},
	)

	poolWorkers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "breakwater_pool_workers",
			Help: "Number of workers in a pool.",
		},
		[]string{"pool"},
	)
)
