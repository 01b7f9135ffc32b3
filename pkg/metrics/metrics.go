// Package metrics holds the Prometheus collectors of the booking workflow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method becomes a no-op.
type Metrics struct {
	gatherer        prometheus.Gatherer
	transitions     *prometheus.CounterVec
	paymentCalls    *prometheus.HistogramVec
	sweepOutcomes   *prometheus.CounterVec
	sweepRuns       prometheus.Counter
	notifyFailures  *prometheus.CounterVec
	documentReviews *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "transitions_total",
			Help:      "Booking state transitions by kind and outcome.",
		}, []string{"transition", "outcome"}),
		paymentCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "booking",
			Name:      "payment_call_seconds",
			Help:      "Latency of payment authorizer calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "result"}),
		sweepOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "sweep_bookings_total",
			Help:      "Bookings handled by the expiry sweeper by outcome.",
		}, []string{"outcome"}),
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "sweep_runs_total",
			Help:      "Completed expiry sweeper runs.",
		}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "notification_failures_total",
			Help:      "Notifications that could not be delivered.",
		}, []string{"type"}),
		documentReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "document_reviews_total",
			Help:      "Document review decisions.",
		}, []string{"decision"}),
	}

	reg.MustRegister(
		m.transitions,
		m.paymentCalls,
		m.sweepOutcomes,
		m.sweepRuns,
		m.notifyFailures,
		m.documentReviews,
	)

	return m
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Transition(transition, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(transition, outcome).Inc()
}

func (m *Metrics) PaymentCall(operation, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.paymentCalls.WithLabelValues(operation, result).Observe(took.Seconds())
}

func (m *Metrics) SweepOutcome(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.sweepOutcomes.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) SweepRun() {
	if m == nil {
		return
	}
	m.sweepRuns.Inc()
}

func (m *Metrics) NotifyFailure(kind string) {
	if m == nil {
		return
	}
	m.notifyFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) DocumentReview(decision string) {
	if m == nil {
		return
	}
	m.documentReviews.WithLabelValues(decision).Inc()
}
