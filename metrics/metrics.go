// Package metrics exposes Prometheus instrumentation for the work-time service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SummariesEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worktime_summaries_evaluated_total",
			Help: "Total number of annual work summaries run through the alert registry",
		},
		[]string{"source"},
	)

	AlertsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worktime_alerts_triggered_total",
			Help: "Total number of alerts triggered, by alert name",
		},
		[]string{"alert"},
	)

	ActivityConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "worktime_activity_conflicts_total",
			Help: "Total number of activities rejected for overlapping existing ones",
		},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "worktime_alert_scan_duration_seconds",
			Help:    "Time taken by one alert scan over all users",
			Buckets: prometheus.DefBuckets,
		},
	)

	ScanFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "worktime_alert_scan_failures_total",
			Help: "Total number of users the alert scan could not summarize",
		},
	)
)

// RecordEvaluation counts one evaluation and the alerts it produced.
func RecordEvaluation(source string, alertNames []string) {
	SummariesEvaluated.WithLabelValues(source).Inc()
	for _, name := range alertNames {
		AlertsTriggered.WithLabelValues(name).Inc()
	}
}
