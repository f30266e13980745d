package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels computations that completed.
	OutcomeSuccess = "success"
	// OutcomeError labels computations that failed (upstream fetch or
	// request issues).
	OutcomeError = "error"
)

var (
	computationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insulin_engine",
			Name:      "computations_total",
			Help:      "Total number of IOB/statistics computations handled, partitioned by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	computationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "insulin_engine",
			Name:      "computation_seconds",
			Help:      "Computation latency in seconds, including care portal fetches.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"operation"},
	)

	carePortalErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "insulin_engine",
			Name:      "care_portal_errors_total",
			Help:      "Total number of failed care portal fetches.",
		},
	)
)

// Register attaches the engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		computationsTotal,
		computationDurationSeconds,
		carePortalErrorsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveComputation records one computation's duration and outcome.
func ObserveComputation(operation string, duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	computationsTotal.WithLabelValues(operation, label).Inc()
	if duration < 0 {
		duration = 0
	}
	computationDurationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}

// CarePortalError counts one failed upstream fetch.
func CarePortalError() {
	carePortalErrorsTotal.Inc()
}
