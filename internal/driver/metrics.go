package driver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "mcdp"

// Metrics holds the Prometheus collectors of a Driver.
//
// Thread Safety: all operations are thread-safe via Prometheus's internal
// locking.
type Metrics struct {
	// QueriesTotal counts queries.
	// Labels: kind (solve, solve_r, implementations), status (ok,
	// infeasible, iteration_limit, error)
	QueriesTotal *prometheus.CounterVec

	// QueryDuration measures wall time per query.
	// Labels: kind
	QueryDuration *prometheus.HistogramVec

	// Iterations observes the Kleene iterations recorded per query.
	Iterations prometheus.Histogram

	// AntichainSize observes the number of points in each answer.
	AntichainSize prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		QueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "queries_total",
			Help:      "Queries answered, by kind and outcome.",
		}, []string{"kind", "status"}),
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "query_duration_seconds",
			Help:      "Wall time per query.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"kind"}),
		Iterations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "kleene_iterations",
			Help:      "Kleene iterations recorded per query.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		AntichainSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "antichain_size",
			Help:      "Points in the answer of each query.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

func (m *Metrics) observe(kind QueryKind, status string, elapsed time.Duration, iterations, size int) {
	m.QueriesTotal.WithLabelValues(string(kind), status).Inc()
	m.QueryDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	m.Iterations.Observe(float64(iterations))
	if status == StatusOK {
		m.AntichainSize.Observe(float64(size))
	}
}
