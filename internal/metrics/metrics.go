// Package metrics exposes planner and source metrics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cognicore/semplan/internal/source"
	"github.com/cognicore/semplan/pkg/semplan"
)

// Metrics holds the collectors of one process. Each instance owns its
// registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	plans            *prometheus.CounterVec
	planKeywords     prometheus.Histogram
	invalidBids      prometheus.Counter
	campaignBudget   *prometheus.GaugeVec
	sourceCandidates *prometheus.CounterVec
	sourceErrors     *prometheus.CounterVec
	sourceDuration   *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "semplan_plans_total",
			Help: "Planning runs by outcome.",
		}, []string{"outcome"}),
		planKeywords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "semplan_plan_keywords",
			Help:    "Unique keywords per successful plan.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 8),
		}),
		invalidBids: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semplan_invalid_bids_total",
			Help: "Keywords whose bid was flagged because the constraints gave no usable ceiling.",
		}),
		campaignBudget: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "semplan_last_campaign_budget",
			Help: "Monthly budget of each campaign type in the most recent plan.",
		}, []string{"type"}),
		sourceCandidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "semplan_source_candidates_total",
			Help: "Keyword candidates gathered per source kind.",
		}, []string{"source"}),
		sourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "semplan_source_errors_total",
			Help: "Failed source fetches per source kind.",
		}, []string{"source"}),
		sourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "semplan_source_duration_seconds",
			Help:    "Time spent fetching each source.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.plans, m.planKeywords, m.invalidBids, m.campaignBudget,
		m.sourceCandidates, m.sourceErrors, m.sourceDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveSource implements source.Observer.
func (m *Metrics) ObserveSource(r source.Report) {
	kind := r.Kind.String()
	m.sourceDuration.WithLabelValues(kind).Observe(r.Duration.Seconds())
	if r.Err != nil {
		m.sourceErrors.WithLabelValues(kind).Inc()
		return
	}
	m.sourceCandidates.WithLabelValues(kind).Add(float64(r.Count))
}

// ObservePlan records the outcome of a planning run.
func (m *Metrics) ObservePlan(plan *semplan.Plan, err error) {
	if err != nil || plan == nil {
		m.plans.WithLabelValues("error").Inc()
		return
	}
	m.plans.WithLabelValues("ok").Inc()
	m.planKeywords.Observe(float64(len(plan.Keywords)))
	m.invalidBids.Add(float64(plan.Bids.Invalid))
	for _, c := range plan.Campaigns {
		m.campaignBudget.WithLabelValues(string(c.Type)).Set(c.Budget)
	}
}

var _ source.Observer = (*Metrics)(nil)
