package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the screening module.
type Metrics struct {
	// Screening outcomes by classification of the best match
	Outcome *prometheus.CounterVec

	// Candidates surviving the name floor per request
	Candidates prometheus.Histogram

	// End-to-end screen latency
	ScreenLatency prometheus.Histogram
}

// New creates a new Metrics instance with all screening module metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_screening_outcomes_total",
			Help: "Total screening requests by classification of the best match",
		}, []string{"classification"}), // classification: "HIT", "REVIEW", "CLEAR"

		Candidates: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_screening_candidates",
			Help:    "Number of candidates surviving the name floor per request",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		ScreenLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_screening_duration_seconds",
			Help:    "Duration of full screening including alias scan and scoring",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementOutcome records the classification of a screening request.
func (m *Metrics) IncrementOutcome(classification string) {
	if m != nil {
		m.Outcome.WithLabelValues(classification).Inc()
	}
}

// ObserveCandidates records how many candidates passed the name floor.
func (m *Metrics) ObserveCandidates(n int) {
	if m != nil {
		m.Candidates.Observe(float64(n))
	}
}

// ObserveScreenLatency records the total screening duration.
func (m *Metrics) ObserveScreenLatency(d time.Duration) {
	if m != nil {
		m.ScreenLatency.Observe(d.Seconds())
	}
}
