package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(upstreamLatencyMs, upstreamRetriesTotal) }

var upstreamLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "upstream_calls_latency_ms",
		Help:    "Completion call latency distribution in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 180000},
	},
	[]string{"model", "success"},
)

var upstreamRetriesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "upstream_retries_total",
		Help: "Count of completion attempts retried after a transient failure.",
	},
)

func ObserveUpstreamCall(model string, latencyMs int, success bool) {
	upstreamLatencyMs.WithLabelValues(norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncUpstreamRetry() {
	upstreamRetriesTotal.Inc()
}
