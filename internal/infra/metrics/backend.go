package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(remoteCallLatencyMs, remoteCallErrors)
}

var remoteCallLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "remote_call_latency_ms",
		Help:    "Remote backend call latency distribution in milliseconds.",
		Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	},
	[]string{"endpoint"},
)

var remoteCallErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "remote_call_errors_total",
		Help: "Remote backend failures (timeout, abort, non-2xx, decode) by endpoint.",
	},
	[]string{"endpoint"},
)

func ObserveRemoteCall(endpoint string, ms float64) {
	remoteCallLatencyMs.WithLabelValues(norm(endpoint)).Observe(ms)
}

func IncRemoteCallError(endpoint string) {
	remoteCallErrors.WithLabelValues(norm(endpoint)).Inc()
}
