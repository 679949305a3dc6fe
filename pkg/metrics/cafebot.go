package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cafebot"

// 日志批次结果
const (
	BatchShipped = "shipped"
	BatchDropped = "dropped"
)

var (
	// AuditOutcomesTotal counts terminal /audit outcomes
	AuditOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_outcomes_total",
			Help:      "Total number of /audit invocations by terminal outcome",
		},
		[]string{"outcome"},
	)

	// InvitesIssuedTotal counts invite links created
	InvitesIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invites_issued_total",
			Help:      "Total number of single-use invite links created",
		},
	)

	// LogBatchesTotal counts log batches handed to the backend
	LogBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_batches_total",
			Help:      "Total number of log batches by upload result",
		},
		[]string{"result"},
	)

	// LogRecordsTotal counts log records by upload result
	LogRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_records_total",
			Help:      "Total number of log records by upload result",
		},
		[]string{"result"},
	)
)

func botCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		AuditOutcomesTotal,
		InvitesIssuedTotal,
		LogBatchesTotal,
		LogRecordsTotal,
	}
}

// RecordAuditOutcome counts one terminal /audit outcome.
func RecordAuditOutcome(outcome string) {
	AuditOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordInviteIssued counts one created invite link.
func RecordInviteIssued() {
	InvitesIssuedTotal.Inc()
}

// RecordLogBatch counts one shipped or dropped batch of n records.
func RecordLogBatch(result string, n int) {
	LogBatchesTotal.WithLabelValues(result).Inc()
	LogRecordsTotal.WithLabelValues(result).Add(float64(n))
}
