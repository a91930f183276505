package metrics

import (
	"time"

	"go-linkedin-sweeper/internal/processor"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job outcome label values.
const (
	OutcomeDismissed = "dismissed"
	OutcomeSkipped   = "skipped"
	OutcomeKept      = "kept"
	OutcomeFailed    = "failed"
	OutcomeMalformed = "malformed"
	OutcomeSaved     = "saved"
)

type Metrics struct {
	JobsTotal    *prometheus.CounterVec
	PagesTotal   prometheus.Counter
	PageDuration prometheus.Histogram
	DismissedBy  *prometheus.CounterVec
}

// New registers the sweeper metrics on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		JobsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sweeper_jobs_total",
				Help: "Jobs seen by the sweeper, by outcome",
			},
			[]string{"outcome"},
		),
		PagesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "sweeper_pages_total",
				Help: "Search result pages processed",
			},
		),
		PageDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sweeper_page_duration_seconds",
				Help:    "Time to process one page including dismiss calls",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
			},
		),
		DismissedBy: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sweeper_dismissed_total",
				Help: "Dismissed jobs by matching rule",
			},
			[]string{"reason"},
		),
	}
}

// ObservePage records one processed page.
func (m *Metrics) ObservePage(stats processor.Stats, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PagesTotal.Inc()
	m.PageDuration.Observe(elapsed.Seconds())

	m.JobsTotal.WithLabelValues(OutcomeDismissed).Add(float64(stats.Dismissed))
	m.JobsTotal.WithLabelValues(OutcomeSkipped).Add(float64(stats.Skipped))
	m.JobsTotal.WithLabelValues(OutcomeKept).Add(float64(stats.Kept))
	m.JobsTotal.WithLabelValues(OutcomeFailed).Add(float64(stats.Failed))
	m.JobsTotal.WithLabelValues(OutcomeMalformed).Add(float64(stats.Malformed))
	m.JobsTotal.WithLabelValues(OutcomeSaved).Add(float64(stats.Saved))

	m.DismissedBy.WithLabelValues("title").Add(float64(stats.DismissedByTitle))
	m.DismissedBy.WithLabelValues("company").Add(float64(stats.DismissedByCompany))
}
