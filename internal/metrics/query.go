package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voterquery",
			Name:      "queries_total",
			Help:      "Classified questions by intent and language",
		},
		[]string{"intent", "language"},
	)

	RetrievalEmptyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voterquery",
			Name:      "retrieval_empty_total",
			Help:      "Retrievals that produced no matches",
		},
		[]string{"intent"},
	)

	SnapshotRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "voterquery",
			Name:      "snapshot_records",
			Help:      "Records in the active snapshot",
		},
	)

	SnapshotReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voterquery",
			Name:      "snapshot_reloads_total",
			Help:      "Snapshot reloads by outcome",
		},
		[]string{"status"},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers query pipeline metrics. Must be called once
// from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(RetrievalEmptyTotal)
	prometheus.MustRegister(SnapshotRecords)
	prometheus.MustRegister(SnapshotReloadsTotal)
	queryMetricsRegistered = true
}
