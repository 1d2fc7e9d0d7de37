package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the semantic version of the build, set via ldflags.
	Version = "0.1.0-dev"
	// Commit is the short git SHA, set via ldflags; falls back to the VCS stamp.
	Commit = ""
	// BuildTime is the UTC build timestamp, set via ldflags; falls back to the VCS stamp.
	BuildTime = ""
)

// unknown is printed for metadata that is neither injected nor stamped.
const unknown = "unknown"

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns version, commit, build time and toolchain on one line.
func Full() string {
	commit, built := stamp()

	return fmt.Sprintf("door-sentry %s (commit %s, built %s, %s %s/%s)",
		Version, commit, built, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// stamp returns Commit and BuildTime, filling blanks from the Go VCS build info.
func stamp() (string, string) {
	commit, built := Commit, BuildTime

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "":
				commit = s.Value
				if len(commit) > 7 {
					commit = commit[:7]
				}
			case s.Key == "vcs.time" && built == "":
				built = s.Value
			}
		}
	}

	if commit == "" {
		commit = unknown
	}

	if built == "" {
		built = unknown
	}

	return commit, built
}
