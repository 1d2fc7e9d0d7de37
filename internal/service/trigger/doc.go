// Package trigger implements the local trigger server that receives the
// Detector-mode GET pulse and runs a desktop action for it.
package trigger
