// Package config defines the controller settings file and provides helpers to
// load, validate and save it in YAML format.
//
// These settings describe the host: storage backend, input source, network
// link, endpoints and timing. The device Configuration the operator changes
// in-band lives in the config store, not here.
package config
