package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(retentionDropsTotal, auditEventsTotal)
}

var retentionDropsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "retention_drops_total",
		Help: "Entries removed by the age-based sweeps, by ledger (messages|audit).",
	},
	[]string{"ledger"},
)

var auditEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "audit_events_total",
		Help: "Audit ledger appends by event name.",
	},
	[]string{"event"},
)

func AddRetentionDrops(ledger string, n int) {
	if n > 0 {
		retentionDropsTotal.WithLabelValues(norm(ledger)).Add(float64(n))
	}
}

func IncAuditEvent(event string) {
	auditEventsTotal.WithLabelValues(norm(event)).Inc()
}
