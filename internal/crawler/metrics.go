package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for crawler runs.
//
// All metrics are prefixed with "crawler_" for namespacing.
type Metrics struct {
	// Session discovery
	SessionsScannedTotal  *prometheus.CounterVec
	SessionsDegradedTotal prometheus.Counter

	// Registration extraction
	RegistrationsExtractedTotal prometheus.Counter
	RegistrationsMissingTotal   prometheus.Counter

	// Timeline assembly
	FractionsAssignedTotal prometheus.Counter
	SessionsExcludedTotal  prometheus.Counter

	RunDuration prometheus.Histogram
}

// NewMetrics creates and registers crawler metrics on the given registerer.
// Pass prometheus.DefaultRegisterer for the process-wide registry, or a
// fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SessionsScannedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_sessions_scanned_total",
				Help: "Total number of acquisition sessions scanned",
			},
			[]string{"kind"},
		),

		SessionsDegradedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_sessions_degraded_total",
				Help: "Total number of sessions scanned with missing or unreadable artifacts",
			},
		),

		RegistrationsExtractedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_registrations_extracted_total",
				Help: "Total number of registration records extracted from export archives",
			},
		),

		RegistrationsMissingTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_registrations_missing_total",
				Help: "Total number of sessions without a usable registration artifact",
			},
		),

		FractionsAssignedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_fractions_assigned_total",
				Help: "Total number of treatment fractions assembled",
			},
		),

		SessionsExcludedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_sessions_excluded_total",
				Help: "Total number of sessions excluded from the treatment timeline",
			},
		),

		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawler_run_duration_seconds",
				Help:    "Duration of a full patient directory crawl in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
	}
}

func (m *Metrics) observeRun(seconds float64) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(seconds)
}

func (m *Metrics) recordSession(kind string, degraded bool) {
	if m == nil {
		return
	}
	m.SessionsScannedTotal.WithLabelValues(kind).Inc()
	if degraded {
		m.SessionsDegradedTotal.Inc()
	}
}

func (m *Metrics) recordRegistration(found bool) {
	if m == nil {
		return
	}
	if found {
		m.RegistrationsExtractedTotal.Inc()
	} else {
		m.RegistrationsMissingTotal.Inc()
	}
}

func (m *Metrics) recordTimeline(fractions, excluded int) {
	if m == nil {
		return
	}
	m.FractionsAssignedTotal.Add(float64(fractions))
	m.SessionsExcludedTotal.Add(float64(excluded))
}
