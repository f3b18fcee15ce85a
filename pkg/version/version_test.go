package version

import (
	"runtime"
	"testing"
)

func TestDefaults(t *testing.T) {
	if !IsDev() {
		t.Errorf("default Version = %q, want dev", Version)
	}
	if GitCommit != "unknown" {
		t.Errorf("default GitCommit = %q, want %q", GitCommit, "unknown")
	}
}

func TestInfo(t *testing.T) {
	defer func(v, c, d string) { Version, GitCommit, BuildDate = v, c, d }(Version, GitCommit, BuildDate)
	Version, GitCommit, BuildDate = "v1.2.0", "abc1234", "2026-10-01T00:00:00Z"

	if got := Info(); got != "v1.2.0 (abc1234) built 2026-10-01T00:00:00Z" {
		t.Errorf("Info() = %q", got)
	}
	b := Get()
	if b.Version != "v1.2.0" || b.GitCommit != "abc1234" || b.GoVersion != runtime.Version() {
		t.Errorf("Get() = %+v", b)
	}
	if IsDev() {
		t.Error("IsDev() = true for a stamped build")
	}
}
