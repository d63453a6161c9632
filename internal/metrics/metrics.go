// Package metrics holds the Prometheus instrumentation the transaction
// engine and storage backends report through, trimmed from the teacher
// pack's much larger per-subsystem metrics struct down to the counters and
// histograms this module's commit path and codec actually produce.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors registered for one engine
// instance.
type Metrics struct {
	TxnOperationsTotal  *prometheus.CounterVec
	CommitsTotal        prometheus.Counter
	CommitConflictsTotal prometheus.Counter
	ReadDuration        prometheus.Histogram
	NodeEncodedBytes    prometheus.Histogram
}

// New creates and registers a Metrics instance. lakehouseName becomes a
// constant label so metrics from multiple engines embedded in one process
// can be told apart.
func New(lakehouseName string) *Metrics {
	labels := prometheus.Labels{"lakehouse": lakehouseName}

	return &Metrics{
		TxnOperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "trinitylake",
			Subsystem:   "txn",
			Name:        "operations_total",
			Help:        "Total number of transaction engine operations, by operation name.",
			ConstLabels: labels,
		}, []string{"op"}),
		CommitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "trinitylake",
			Subsystem:   "txn",
			Name:        "commits_total",
			Help:        "Total number of successful commitTransaction calls.",
			ConstLabels: labels,
		}),
		CommitConflictsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "trinitylake",
			Subsystem:   "txn",
			Name:        "commit_conflicts_total",
			Help:        "Total number of commitTransaction calls that lost the conditional-create race.",
			ConstLabels: labels,
		}),
		ReadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "trinitylake",
			Subsystem:   "tree",
			Name:        "read_duration_seconds",
			Help:        "Latency of findLatestRoot (listing and reading the latest root).",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		NodeEncodedBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "trinitylake",
			Subsystem:   "codec",
			Name:        "node_encoded_bytes",
			Help:        "Size in bytes of an encoded root node.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(64, 4, 10),
		}),
	}
}

// RecordOperation increments the per-operation counter. Safe to call with
// a nil *Metrics (no-op), so callers that did not configure metrics don't
// need to guard every call site.
func (m *Metrics) RecordOperation(op string) {
	if m == nil {
		return
	}
	m.TxnOperationsTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) RecordCommit() {
	if m == nil {
		return
	}
	m.CommitsTotal.Inc()
}

func (m *Metrics) RecordCommitConflict() {
	if m == nil {
		return
	}
	m.CommitConflictsTotal.Inc()
}

func (m *Metrics) ObserveReadDuration(seconds float64) {
	if m == nil {
		return
	}
	m.ReadDuration.Observe(seconds)
}

func (m *Metrics) ObserveNodeEncodedBytes(n int) {
	if m == nil {
		return
	}
	m.NodeEncodedBytes.Observe(float64(n))
}
