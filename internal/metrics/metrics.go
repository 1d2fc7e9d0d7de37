package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	domain "github.com/oshokin/door-sentry/internal/domain/device"
	"github.com/oshokin/door-sentry/internal/notify"
)

// namespace prefixes every metric name.
const namespace = "door_sentry"

// Metrics holds the controller collectors on a private registry.
type Metrics struct {
	// registry is served by Handler.
	registry *prometheus.Registry

	events           *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	triggers         *prometheus.CounterVec
	reconfigurations prometheus.Counter
	connectAttempts  prometheus.Counter
	state            *prometheus.GaugeVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Classified input lines by event kind.",
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification POSTs by outcome.",
		}, []string{"result"}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_total",
			Help:      "Local trigger GETs by outcome.",
		}, []string{"result"}),
		reconfigurations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconfigurations_total",
			Help:      "Completed in-band reconfigurations.",
		}),
		connectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Wireless link checks made while connecting.",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Controller state; 1 for the current one.",
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		m.events,
		m.notifications,
		m.triggers,
		m.reconfigurations,
		m.connectAttempts,
		m.state,
	)

	m.StateChanged(domain.StateBooting, domain.ModeUnknown)

	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// StateChanged marks state as the current one.
func (m *Metrics) StateChanged(state domain.State, _ domain.Mode) {
	for _, s := range domain.States {
		value := 0.0
		if s == state {
			value = 1
		}

		m.state.WithLabelValues(s.String()).Set(value)
	}
}

// EventClassified counts one classified line.
func (m *Metrics) EventClassified(kind domain.EventKind) {
	m.events.WithLabelValues(kind.String()).Inc()
}

// NotificationSent counts one notification attempt.
func (m *Metrics) NotificationSent(result notify.Result) {
	m.notifications.WithLabelValues(result.Label()).Inc()
}

// TriggerSent counts one trigger attempt.
func (m *Metrics) TriggerSent(result notify.Result) {
	m.triggers.WithLabelValues(result.Label()).Inc()
}

// Reconfigured counts one completed reconfiguration.
func (m *Metrics) Reconfigured() {
	m.reconfigurations.Inc()
}

// ConnectAttempt counts one link check.
func (m *Metrics) ConnectAttempt() {
	m.connectAttempts.Inc()
}
