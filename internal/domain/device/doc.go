// Package device contains the core domain types of the door sentry.
//
// It defines the operating Mode with its persisted text encoding, the
// Configuration shared by both modes, the Event union produced by the
// classifier, and the controller State names.
package device
