package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the users module.
type Metrics struct {
	UsersCreated    *prometheus.CounterVec
	MutationsDenied prometheus.Counter
}

// New creates a new Metrics instance with all users module metrics registered.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sutura_users_created_total",
			Help: "Total number of accounts created, by role",
		}, []string{"role"}),
		MutationsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sutura_user_mutations_denied_total",
			Help: "Account mutations denied by role gating",
		}),
	}
}
