package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		crisisDetectionsTotal,
		crisisReportsForwarded,
		crisisReportFailures,
	)
}

var crisisDetectionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "crisis_detections_total",
		Help: "Classifier hits by tier and language.",
	},
	[]string{"tier", "language"},
)

var crisisReportsForwarded = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "crisis_reports_forwarded_total",
		Help: "Crisis reports delivered to the remote collector.",
	},
)

var crisisReportFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "crisis_report_failures_total",
		Help: "Crisis reports that could not be delivered (fire-and-forget).",
	},
)

func IncCrisisDetection(tier, language string) {
	crisisDetectionsTotal.WithLabelValues(norm(tier), norm(language)).Inc()
}

func IncCrisisReportForwarded() { crisisReportsForwarded.Inc() }
func IncCrisisReportFailure()   { crisisReportFailures.Inc() }
