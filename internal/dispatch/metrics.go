package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	pkgerrors "github.com/tombee/awsdeck/pkg/errors"
)

var (
	// callsTotal counts AWS calls by resource, operation and outcome
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awsdeck_dispatch_calls_total",
			Help: "Total AWS calls by resource, operation and outcome",
		},
		[]string{"resource", "operation", "outcome"},
	)

	// callDuration tracks AWS call latency including transport retries
	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "awsdeck_dispatch_call_duration_seconds",
			Help:    "AWS call duration by resource and operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "operation"},
	)

	// recordsTotal counts records produced by list and describe
	recordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awsdeck_dispatch_records_total",
			Help: "Total records mapped by resource",
		},
		[]string{"resource"},
	)
)

// recordCall records one AWS call. The outcome label is "ok" or the error
// classification, "internal" when unclassified.
func recordCall(resource, op string, duration time.Duration, err error) {
	callsTotal.WithLabelValues(resource, op, outcome(err)).Inc()
	callDuration.WithLabelValues(resource, op).Observe(duration.Seconds())
}

// recordRecords adds n mapped records for resource.
func recordRecords(resource string, n int) {
	recordsTotal.WithLabelValues(resource).Add(float64(n))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	errorType, _ := pkgerrors.Classify(err)
	return errorType
}
