package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus instruments for the scheduling and
// timeline engine.
type Metrics struct {
	OccurrencesGenerated prometheus.Counter
	TimelineQueries      prometheus.Counter
	TimelineQueryTime    prometheus.Histogram
	StatusTransitions    *prometheus.CounterVec
	ConsistencyFailures  prometheus.Counter
}

func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OccurrencesGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "occurrences_generated_total",
			Help:      "Schedule occurrences created by contract expansion",
		}),
		TimelineQueries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timeline_queries_total",
			Help:      "Unified timeline queries served",
		}),
		TimelineQueryTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "timeline_query_seconds",
			Help:      "Time spent composing the unified timeline",
			Buckets:   prometheus.DefBuckets,
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Work item status transitions applied",
		}, []string{"kind", "to"}),
		ConsistencyFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consistency_failures_total",
			Help:      "Secondary status updates that failed after a primary write",
		}),
	}
}
