package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "water_quality"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	Analyses           *prometheus.CounterVec // labels: outcome={potable,not_potable}
	ScoringErrors      *prometheus.CounterVec // labels: kind={missing_field,invalid_value}
	ValidationWarnings prometheus.Counter
	Confidence         prometheus.Histogram

	// Session metrics.
	ActiveSessions  prometheus.Gauge
	SessionsEvicted prometheus.Counter
	HistoryClears   prometheus.Counter

	// Results feed metrics.
	ResultsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
	PublishEnabled   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.Analyses,
		m.ScoringErrors,
		m.ValidationWarnings,
		m.Confidence,
		m.ActiveSessions,
		m.SessionsEvicted,
		m.HistoryClears,
		m.ResultsPublished,
		m.PublishErrors,
		m.PublishEnabled,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Scored measurements by potability outcome.",
		}, []string{"outcome"}),
		ScoringErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_errors_total",
			Help:      "Measurements rejected before a result was produced, by error kind.",
		}, []string{"kind"}),
		ValidationWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_warnings_total",
			Help:      "Advisory plausibility warnings issued.",
		}),
		Confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confidence_score",
			Help:      "Distribution of confidence scores.",
			Buckets:   []float64{5, 10, 20, 30, 40, 50, 60, 70, 80, 85, 90, 95, 100},
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently holding a history ledger.",
		}),
		SessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Sessions discarded after exceeding the idle TTL.",
		}),
		HistoryClears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_clears_total",
			Help:      "Explicit history clear operations.",
		}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_published_total",
			Help:      "History entries written to the results topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed writes to the results topic.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publish_enabled",
			Help:      "1 when the results feed is enabled, 0 otherwise.",
		}),
	}
}
