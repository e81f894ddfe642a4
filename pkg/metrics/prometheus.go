package metrics

import (
	"time"

	"GigCredit/internal/domain/models"
	domrepo "GigCredit/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ domrepo.Metrics = (*Recorder)(nil)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scores      prometheus.Histogram
	profiles    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// Option configures a Recorder.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
}

// WithRegisterer registers the collectors on reg instead of the default registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// New creates a new Prometheus metrics recorder. Collectors are registered
// on construction, so the default registry only tolerates one Recorder.
func New(opts ...Option) *Recorder {
	o := options{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}
	factory := promauto.With(o.registerer)

	return &Recorder{
		scores: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gigcredit_credit_score",
				Help:    "Distribution of calculated credit scores",
				Buckets: prometheus.LinearBuckets(100, 100, 10),
			},
		),
		profiles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gigcredit_profiles_scored_total",
				Help: "Total number of profiles scored, by risk level",
			},
			[]string{"risk_level"},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gigcredit_loan_transitions_total",
				Help: "Total number of loan lifecycle transitions",
			},
			[]string{"event"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gigcredit_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gigcredit_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordScore records a freshly calculated score and its band.
func (r *Recorder) RecordScore(score int, risk models.RiskLevel) {
	r.scores.Observe(float64(score))
	r.profiles.WithLabelValues(string(risk)).Inc()
}

// RecordLoanTransition counts a loan lifecycle event.
func (r *Recorder) RecordLoanTransition(event models.EventType) {
	r.transitions.WithLabelValues(string(event)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency.
func (r *Recorder) RecordLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}
