package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasksGenerated counts tasks created, by source: manual, routine, wish.
	TasksGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_tasks_generated_total",
			Help: "Total number of tasks created",
		},
		[]string{"source"},
	)

	TasksCarriedOver = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_tasks_carried_over_total",
			Help: "Total number of stale tasks moved to today",
		},
	)

	ReorderFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_reorder_failures_total",
			Help: "Total number of failed position writes during reorder",
		},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)
)

func IncrementTaskGeneration(source string) {
	TasksGenerated.WithLabelValues(source).Inc()
}

func AddCarriedOver(n int) {
	TasksCarriedOver.Add(float64(n))
}

func IncrementReorderFailure() {
	ReorderFailures.Inc()
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
