// Package version carries build information set via ldflags.
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"

	FullVersion = fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
)
