package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shift_planner"

// Outcome labels for allocation runs.
const (
	OutcomeSuccess   = "success"
	OutcomeExhausted = "exhausted"
	OutcomeNoWorkers = "no_workers"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

type Metrics struct {
	AllocationRuns        *prometheus.CounterVec
	AllocationDuration    prometheus.Histogram
	PlaceholdersGenerated prometheus.Counter
	SuggestionsAccepted   prometheus.Counter
	SuggestionsDeclined   prometheus.Counter
}

// New registers the collectors on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AllocationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_runs_total",
			Help:      "Auto-assign runs by outcome.",
		}, []string{"outcome"}),
		AllocationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allocation_duration_seconds",
			Help:      "Time spent computing an allocation plan.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		PlaceholdersGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placeholders_generated_total",
			Help:      "Placeholders produced by successful allocation runs.",
		}),
		SuggestionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_accepted_total",
			Help:      "Suggestions turned into committed shifts.",
		}),
		SuggestionsDeclined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_declined_total",
			Help:      "Suggestions discarded by a decline.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.AllocationRuns,
			m.AllocationDuration,
			m.PlaceholdersGenerated,
			m.SuggestionsAccepted,
			m.SuggestionsDeclined,
		)
	}

	return m
}
