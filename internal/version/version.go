// Package version provides version information for MutedVoice.
package version

// These variables are set at build time via ldflags.
var (
	// Version is the semantic version of MutedVoice.
	Version = "0.1.0"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)
