package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes Prometheus observability primitives for trueup.
type Metrics struct {
	webhookEvents    *prometheus.CounterVec
	reconcileRuns    *prometheus.CounterVec
	checkoutAttempts *prometheus.CounterVec
	refreshCycles    *prometheus.CounterVec
}

// NewMetrics registers and returns Prometheus metrics for telemetry.
func NewMetrics() *Metrics {
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trueup_webhook_events_total",
		Help: "Counts inbound webhook events by type and outcome.",
	}, []string{"type", "outcome"})

	reconcileRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trueup_reconcile_runs_total",
		Help: "Counts reconciliation runs by entity and outcome.",
	}, []string{"entity", "outcome"})

	checkoutAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trueup_checkout_attempts_total",
		Help: "Counts checkout attempts by outcome.",
	}, []string{"outcome"})

	refreshCycles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trueup_refresh_cycles_total",
		Help: "Counts scheduled refresh cycles by outcome.",
	}, []string{"outcome"})

	prometheus.MustRegister(webhookEvents, reconcileRuns, checkoutAttempts, refreshCycles)

	return &Metrics{
		webhookEvents:    webhookEvents,
		reconcileRuns:    reconcileRuns,
		checkoutAttempts: checkoutAttempts,
		refreshCycles:    refreshCycles,
	}
}

func (m *Metrics) ObserveWebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) ObserveReconcile(entity, outcome string) {
	if m == nil {
		return
	}
	m.reconcileRuns.WithLabelValues(entity, outcome).Inc()
}

func (m *Metrics) ObserveCheckout(outcome string) {
	if m == nil {
		return
	}
	m.checkoutAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRefreshCycle(outcome string) {
	if m == nil {
		return
	}
	m.refreshCycles.WithLabelValues(outcome).Inc()
}

// Module provides the shared metrics registry handles.
var Module = fx.Module("telemetry",
	fx.Provide(NewMetrics),
)
