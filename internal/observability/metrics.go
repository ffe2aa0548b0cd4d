// Package observability exposes service-level Prometheus collectors shared
// across binaries.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workloadAppliedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workload_service",
		Subsystem: "store",
		Name:      "last_event_applied_timestamp_seconds",
		Help:      "Unix timestamp of the most recent event applied to the aggregate store.",
	})
	summaryServedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workload_service",
		Subsystem: "api",
		Name:      "summaries_served_total",
		Help:      "Number of summary queries served grouped by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(workloadAppliedGauge, summaryServedCounter)
}

// RecordWorkloadApplied updates the apply watermark gauge.
func RecordWorkloadApplied(ts time.Time) {
	if ts.IsZero() {
		return
	}
	workloadAppliedGauge.Set(float64(ts.Unix()))
}

// RecordSummaryServed counts a summary query outcome (ok, not_found, error).
func RecordSummaryServed(outcome string) {
	summaryServedCounter.WithLabelValues(outcome).Inc()
}
