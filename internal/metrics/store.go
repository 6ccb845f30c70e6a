package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Document store and pipeline metrics.
var (
	StoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_requests_total",
			Help:      "Total number of document store requests",
		},
		[]string{"role", "op", "status"}, // status: "ok" / "error"
	)

	StoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_request_duration_seconds",
			Help:      "Document store request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"role", "op"},
	)

	BulkItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_items_total",
			Help:      "Bulk ingestion items by outcome",
		},
		[]string{"index", "result"}, // result: "success" / "failure"
	)

	AuditFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_failures_total",
			Help:      "Audited updates whose history snapshot could not be written",
		},
		[]string{"stage", "kind"}, // stage: "fetch" / "archive"
	)

	FlowEventsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flow_events_returned",
			Help:      "Number of events returned per flow reconstruction",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 300},
		},
	)
)

var registerOnce sync.Once

// Register registers every collector with the default registry. Must be called once from main;
// later calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,
			StoreRequestsTotal,
			StoreRequestDuration,
			BulkItemsTotal,
			AuditFailuresTotal,
			FlowEventsReturned,
		)
	})
}

// ObserveStore records one store call.
func ObserveStore(role, op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreRequestsTotal.WithLabelValues(role, op, status).Inc()
	StoreRequestDuration.WithLabelValues(role, op).Observe(time.Since(start).Seconds())
}
