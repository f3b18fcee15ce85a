// Package version carries twinctl build metadata.
package version

import "runtime"

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/ixp-twin/twinctl/pkg/version.Version=v1.0.0 \
//	  -X github.com/ixp-twin/twinctl/pkg/version.GitCommit=abc1234 \
//	  -X github.com/ixp-twin/twinctl/pkg/version.BuildDate=2026-01-01T00:00:00Z"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Build is the metadata printed by "twinctl version --json".
type Build struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// Get returns the build metadata of the running binary.
func Get() Build {
	return Build{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// IsDev reports whether the binary was built without version ldflags.
func IsDev() bool {
	return Version == "dev"
}

// Info returns a one-line version string for display.
func Info() string {
	return Version + " (" + GitCommit + ") built " + BuildDate
}
