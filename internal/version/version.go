// Package version carries the crossforge release identity. The variables
// can be overridden at build time via -ldflags.
package version

import "github.com/fatih/color"

const (
	major = "0"
	minor = "2"
	patch = "0"
	pre   = "-dev"
)

var (
	// Plain is the undecorated semantic version, used wherever the string
	// leaves the terminal (JSON output, HTTP User-Agent).
	Plain = major + "." + minor + "." + patch + pre

	// Version is the terminal rendering of Plain.
	Version = color.New(color.FgCyan, color.Bold).Sprint(major) + "." +
		color.New(color.FgGreen, color.Bold).Sprint(minor) + "." +
		color.New(color.FgMagenta, color.Bold).Sprint(patch) + pre

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// UserAgent identifies crossforge to download mirrors.
func UserAgent() string {
	return "crossforge/" + Plain
}
