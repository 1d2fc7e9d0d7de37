// Package version exposes build metadata of the door-sentry binaries.
//
// Version, Commit and BuildTime can be injected with -ldflags "-X"; when they
// are not, Commit and BuildTime come from the VCS stamp Go embeds in the binary.
package version
