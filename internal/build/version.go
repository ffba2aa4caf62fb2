// Package build provides version and build information for gxctl.
// It must not import other internal packages.
package build

import "fmt"

var (
	// Version information - set via ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// IsDevBuild returns true if running a development build (not a release).
func IsDevBuild() bool {
	return Version == "dev"
}

// String returns the one-line version banner printed by 'gxctl version'.
func String() string {
	return fmt.Sprintf("gxctl %s (commit %s, built %s)", Version, Commit, BuildDate)
}
