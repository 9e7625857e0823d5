package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/lantern/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the journey collectors.
type Metrics struct {
	registry        *prometheus.Registry
	transitions     *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	gatewayDuration prometheus.Histogram
}

// NewMetrics creates the collectors on a private registry, so several
// instances (one per test, say) never collide.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lantern_transitions_total",
				Help: "Accepted journey transitions",
			},
			[]string{"from", "to", "trigger"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lantern_rejections_total",
				Help: "Refused journey triggers",
			},
			[]string{"trigger", "reason"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lantern_submissions_total",
				Help: "Lantern service calls by outcome",
			},
			[]string{"outcome"},
		),
		gatewayDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lantern_gateway_duration_seconds",
				Help:    "Duration of lantern service calls",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	m.registry.MustRegister(m.transitions, m.rejections, m.submissions, m.gatewayDuration)
	return m
}

// Registry exposes the registry, e.g. to add process collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.transitions.WithLabelValues(string(e.From), string(e.To), string(e.Trigger)).Inc()
		},
		OnRejected: func(_ context.Context, e *domain.RejectionEvent) {
			m.rejections.WithLabelValues(string(e.Trigger), Reason(e.Err)).Inc()
		},
		OnSubmission: func(_ context.Context, e *domain.SubmissionEvent) {
			m.submissions.WithLabelValues(Outcome(e.Err)).Inc()
			m.gatewayDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Reason gives a low cardinality label for a refused trigger.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrStaleCompletion):
		return "stale"
	case errors.Is(err, domain.ErrControllerClosed):
		return "closed"
	case errors.Is(err, domain.ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, domain.ErrEmptyWish):
		return "empty_wish"
	case errors.Is(err, domain.ErrWishTooLong):
		return "wish_too_long"
	case errors.Is(err, domain.ErrDuplicateWish):
		return "duplicate_wish"
	case errors.Is(err, domain.ErrInvalidWishText):
		return "invalid_text"
	}
	return "other"
}

// Outcome gives a low cardinality label for a gateway call.
func Outcome(err error) string {
	var gwErr *domain.GatewayError
	switch {
	case err == nil:
		return "created"
	case errors.As(err, &gwErr):
		return string(gwErr.Kind)
	}
	return "error"
}
