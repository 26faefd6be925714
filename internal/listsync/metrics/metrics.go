package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the list sync module.
type Metrics struct {
	// Sync outcomes by list and status
	SyncOutcome *prometheus.CounterVec

	// Records ingested per successful sync, by list
	RecordsIngested *prometheus.CounterVec

	// Delisted entities removed per sync, by list
	RecordsRemoved *prometheus.CounterVec

	// Full sync duration per list
	SyncLatency *prometheus.HistogramVec
}

// New creates a new Metrics instance with all list sync metrics registered.
func New() *Metrics {
	return &Metrics{
		SyncOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_listsync_outcomes_total",
			Help: "Total list sync runs by list and outcome",
		}, []string{"list", "status"}), // status: "succeeded", "failed", "skipped"

		RecordsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_listsync_records_ingested_total",
			Help: "Total entities upserted by successful syncs, by list",
		}, []string{"list"}),

		RecordsRemoved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_listsync_records_removed_total",
			Help: "Total delisted entities removed by successful syncs, by list",
		}, []string{"list"}),

		SyncLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vigil_listsync_duration_seconds",
			Help:    "Duration of a full list sync including download and persistence",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"list"}),
	}
}

// IncrementOutcome records the outcome of a list sync.
func (m *Metrics) IncrementOutcome(list, status string) {
	if m != nil {
		m.SyncOutcome.WithLabelValues(list, status).Inc()
	}
}

// AddRecordsIngested records how many entities a sync upserted.
func (m *Metrics) AddRecordsIngested(list string, n int) {
	if m != nil {
		m.RecordsIngested.WithLabelValues(list).Add(float64(n))
	}
}

// AddRecordsRemoved records how many delisted entities a sync removed.
func (m *Metrics) AddRecordsRemoved(list string, n int) {
	if m != nil {
		m.RecordsRemoved.WithLabelValues(list).Add(float64(n))
	}
}

// ObserveSyncLatency records the duration of a list sync.
func (m *Metrics) ObserveSyncLatency(list string, d time.Duration) {
	if m != nil {
		m.SyncLatency.WithLabelValues(list).Observe(d.Seconds())
	}
}
