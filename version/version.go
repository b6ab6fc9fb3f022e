// Package version holds build information injected at link time.
package version

import "runtime"

// These are set via -ldflags at build time.
var (
	// GitRelease is the release tag (e.g. v0.3.0).
	GitRelease = "dev"

	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"

	// GitCommitDate is the date of that commit.
	GitCommitDate = "unknown"
)

// GoInfo is the Go toolchain version used for the build.
var GoInfo = runtime.Version()
