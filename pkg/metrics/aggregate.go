package metrics

import "github.com/prometheus/client_golang/prometheus"

// AggregateMetrics tracks optimistic concurrency on the user aggregate.
type AggregateMetrics struct {
	conflicts *prometheus.CounterVec
	exhausted *prometheus.CounterVec
}

// NewAggregateMetrics registers the aggregate metrics on the provided registerer.
func NewAggregateMetrics(reg prometheus.Registerer) *AggregateMetrics {
	if reg == nil {
		return &AggregateMetrics{}
	}
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "user_aggregate_conflicts_total",
		Help: "Version conflicts detected while saving the user aggregate.",
	}, []string{"operation"})
	exhausted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "user_aggregate_retries_exhausted_total",
		Help: "Aggregate mutations that gave up after the retry budget.",
	}, []string{"operation"})
	reg.MustRegister(conflicts, exhausted)
	return &AggregateMetrics{
		conflicts: conflicts,
		exhausted: exhausted,
	}
}

// IncConflict counts one lost version race.
func (a *AggregateMetrics) IncConflict(operation string) {
	if a == nil || a.conflicts == nil {
		return
	}
	a.conflicts.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncExhausted counts a mutation that was rejected after all retries.
func (a *AggregateMetrics) IncExhausted(operation string) {
	if a == nil || a.exhausted == nil {
		return
	}
	a.exhausted.WithLabelValues(normalizeLabel(operation)).Inc()
}
