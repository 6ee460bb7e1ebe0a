// Package metrics holds the engine's prometheus counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SignupsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outings_signups_accepted_total", Help: "Total admitted signup requests"},
	)
	SignupsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outings_signups_rejected_total", Help: "Total signup requests rejected by a rule or capacity check"},
	)
	SignupConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outings_signup_conflicts_total", Help: "Total signups rejected by a store uniqueness constraint"},
	)
	WaitlistJoins = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outings_waitlist_joins_total", Help: "Total accepted waitlist entries"},
	)
	Cancellations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outings_cancellations_total", Help: "Total cancelled registrations"},
	)
)

// Register adds every counter to the default registry.
func Register() {
	prometheus.MustRegister(SignupsAccepted, SignupsRejected, SignupConflicts, WaitlistJoins, Cancellations)
}
