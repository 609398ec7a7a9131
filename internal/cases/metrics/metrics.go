package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the cases module: creation volume,
// lifecycle movement, and denied access attempts.
type Metrics struct {
	CasesCreated       prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	MutationsDenied    prometheus.Counter
	TransitionRejected prometheus.Counter
}

// New creates a new Metrics instance with all cases module metrics registered.
func New() *Metrics {
	return &Metrics{
		CasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sutura_cases_created_total",
			Help: "Total number of case reports created",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sutura_case_status_transitions_total",
			Help: "Committed case status transitions by from/to state",
		}, []string{"from", "to"}),
		MutationsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sutura_case_mutations_denied_total",
			Help: "Case mutations denied by the scoping engine",
		}),
		TransitionRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sutura_case_transitions_rejected_total",
			Help: "Case status changes rejected by the lifecycle table",
		}),
	}
}
