package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the tasks module.
type Metrics struct {
	TasksCreated       prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	MutationsDenied    prometheus.Counter
	TransitionRejected prometheus.Counter
}

// New creates a new Metrics instance with all tasks module metrics registered.
func New() *Metrics {
	return &Metrics{
		TasksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sutura_tasks_created_total",
			Help: "Total number of tasks created",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sutura_task_status_transitions_total",
			Help: "Committed task status transitions by from/to state",
		}, []string{"from", "to"}),
		MutationsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sutura_task_mutations_denied_total",
			Help: "Task mutations denied by the edit permission matrix",
		}),
		TransitionRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sutura_task_transitions_rejected_total",
			Help: "Task status changes rejected by the lifecycle table",
		}),
	}
}
