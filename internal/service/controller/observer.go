package controller

import (
	domain "github.com/oshokin/door-sentry/internal/domain/device"
	"github.com/oshokin/door-sentry/internal/notify"
)

// Observer receives controller activity for metrics and health reporting.
// Calls happen on the controller goroutine and must not block.
type Observer interface {
	StateChanged(state domain.State, mode domain.Mode)
	EventClassified(kind domain.EventKind)
	NotificationSent(result notify.Result)
	TriggerSent(result notify.Result)
	Reconfigured()
}

// StateObserverFunc adapts a state callback to an Observer that ignores everything else.
type StateObserverFunc func(state domain.State, mode domain.Mode)

// StateChanged calls f.
func (f StateObserverFunc) StateChanged(state domain.State, mode domain.Mode) { f(state, mode) }

// EventClassified does nothing.
func (StateObserverFunc) EventClassified(domain.EventKind) {}

// NotificationSent does nothing.
func (StateObserverFunc) NotificationSent(notify.Result) {}

// TriggerSent does nothing.
func (StateObserverFunc) TriggerSent(notify.Result) {}

// Reconfigured does nothing.
func (StateObserverFunc) Reconfigured() {}

// observers fans every call out to a list of observers.
type observers []Observer

// StateChanged forwards to every observer.
func (o observers) StateChanged(state domain.State, mode domain.Mode) {
	for _, ob := range o {
		ob.StateChanged(state, mode)
	}
}

// EventClassified forwards to every observer.
func (o observers) EventClassified(kind domain.EventKind) {
	for _, ob := range o {
		ob.EventClassified(kind)
	}
}

// NotificationSent forwards to every observer.
func (o observers) NotificationSent(result notify.Result) {
	for _, ob := range o {
		ob.NotificationSent(result)
	}
}

// TriggerSent forwards to every observer.
func (o observers) TriggerSent(result notify.Result) {
	for _, ob := range o {
		ob.TriggerSent(result)
	}
}

// Reconfigured forwards to every observer.
func (o observers) Reconfigured() {
	for _, ob := range o {
		ob.Reconfigured()
	}
}
