package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		reconcileOutcomes,
		sessionRotations,
		staleSendsReattached,
	)
}

var reconcileOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "session_reconcile_outcomes_total",
		Help: "Reconciliation runs by displayed source (rotated|remote|local|empty).",
	},
	[]string{"source"},
)

var sessionRotations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "session_rotations_total",
		Help: "Session rotations by cause (inactivity|clear_history|anonymity_toggle|delete_all).",
	},
	[]string{"cause"},
)

var staleSendsReattached = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stale_sends_reattached_total",
		Help: "Chat replies that landed after a rotation and were attached to the new session.",
	},
)

func IncReconcileOutcome(source string) {
	reconcileOutcomes.WithLabelValues(norm(source)).Inc()
}

func IncSessionRotation(cause string) {
	sessionRotations.WithLabelValues(norm(cause)).Inc()
}

func IncStaleSendReattached() { staleSendsReattached.Inc() }
