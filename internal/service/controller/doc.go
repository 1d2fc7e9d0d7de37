// Package controller runs the door sentry state machine.
//
// The Controller owns the device Configuration, the operating mode and the
// debounce state. It boots from the config store, connects the network,
// classifies input lines, dispatches notifications and drives the in-band
// reconfiguration sequence. Run wires it to the settings file, the storage
// backend, the input source and the optional health and metrics endpoints.
package controller
