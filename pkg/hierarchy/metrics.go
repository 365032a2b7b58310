package hierarchy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authorizeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hierarchy",
		Subsystem: "enforcer",
		Name:      "requests_total",
		Help:      "Total number of authorization decisions broken down by action and result.",
	}, []string{"action", "result"})

	authorizeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hierarchy",
		Subsystem: "enforcer",
		Name:      "latency_seconds",
		Help:      "Latency distribution for authorization decisions.",
		Buckets: []float64{
			0.0005, 0.001, 0.002, 0.005,
			0.01, 0.02, 0.05, 0.1,
			0.2, 0.5, 1, 2,
		},
	}, []string{"action", "result"})

	propagationBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hierarchy",
		Subsystem: "propagator",
		Name:      "batches_total",
		Help:      "Total number of materialized grant batches written per trigger.",
	}, []string{"trigger"})

	propagationRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hierarchy",
		Subsystem: "propagator",
		Name:      "rows_total",
		Help:      "Total number of materialized grant rows upserted per trigger.",
	}, []string{"trigger"})

	reconcileCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hierarchy",
		Subsystem: "reconciler",
		Name:      "corrections_total",
		Help:      "Total number of materialized grant rows corrected during reconciliation.",
	})
)

func recordAuthorizeMetrics(action Action, allowed bool, latency time.Duration) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	labels := prometheus.Labels{
		"action": string(action),
		"result": result,
	}
	authorizeRequests.With(labels).Inc()
	authorizeLatency.With(labels).Observe(latency.Seconds())
}

func recordPropagationMetrics(trigger string, rows int) {
	propagationBatches.WithLabelValues(trigger).Inc()
	propagationRows.WithLabelValues(trigger).Add(float64(rows))
}
