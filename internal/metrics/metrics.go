// Package metrics defines package-level Prometheus metric variables for the
// waitlist API. Call Register() once at startup to expose them on the
// default registry, or RegisterWith() to use an isolated registry in tests.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SignupsAccepted counts signups successfully written to the store.
	SignupsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waitlist_signups_total",
		Help: "Total signups accepted onto the waitlist.",
	})

	// SignupsRejected counts rejected signup attempts, labelled by reason.
	// Valid reasons: honeypot, invalid_email, duplicate, rate_limited, storage.
	SignupsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waitlist_signups_rejected_total",
		Help: "Rejected signup attempts, by reason (honeypot|invalid_email|duplicate|rate_limited|storage).",
	}, []string{"reason"})

	// AdminActions counts authenticated admin operations, by action name.
	AdminActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waitlist_admin_actions_total",
		Help: "Authenticated admin operations, by action.",
	}, []string{"action"})

	// CountFallbacks counts /count requests served the degraded default
	// response because the store was unreachable.
	CountFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waitlist_count_fallbacks_total",
		Help: "Count requests answered with the degraded default response.",
	})
)

// Register registers all metrics with prometheus.DefaultRegisterer.
// Call once at process startup.
func Register() {
	RegisterWith(prometheus.DefaultRegisterer)
}

// RegisterWith registers all metrics with the given registerer.
// Use an isolated prometheus.NewRegistry() in tests to avoid conflicts.
func RegisterWith(reg prometheus.Registerer) {
	reg.MustRegister(
		SignupsAccepted,
		SignupsRejected,
		AdminActions,
		CountFallbacks,
	)
}
