package version

import (
	"strings"
	"testing"
)

func TestPlainMatchesComponents(t *testing.T) {
	want := major + "." + minor + "." + patch + pre
	if Plain != want {
		t.Errorf("Plain = %q, want %q", Plain, want)
	}
	if strings.Contains(Plain, "\x1b") {
		t.Errorf("Plain must carry no terminal escapes: %q", Plain)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "crossforge/") {
		t.Errorf("UserAgent = %q, want crossforge/ prefix", ua)
	}
	if !strings.Contains(ua, Plain) {
		t.Errorf("UserAgent = %q, must include the plain version", ua)
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origPlain := Plain
	origGitCommit := GitCommit
	origBuildDate := BuildDate
	defer func() {
		Plain = origPlain
		GitCommit = origGitCommit
		BuildDate = origBuildDate
	}()

	// Simulate build-time ldflags.
	Plain = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2026-01-15T10:30:00Z"

	if UserAgent() != "crossforge/1.2.3" {
		t.Errorf("UserAgent = %q, want %q", UserAgent(), "crossforge/1.2.3")
	}
	if GitCommit != "abc123def456" {
		t.Errorf("GitCommit = %q, want %q", GitCommit, "abc123def456")
	}
	if BuildDate != "2026-01-15T10:30:00Z" {
		t.Errorf("BuildDate = %q, want %q", BuildDate, "2026-01-15T10:30:00Z")
	}
}
