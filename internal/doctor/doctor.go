// Package doctor checks host prerequisites before a build is attempted and
// tells the operator how to fix what is missing.
package doctor

import (
	"fmt"
	"os/exec"
	"strings"
)

// Check names one host prerequisite.
type Check struct {
	Name string
	// Binaries are tried in order; any one of them satisfies the check.
	Binaries []string
	// Required checks block a build when unsatisfied; advisory ones only
	// warn.
	Required    bool
	Remediation string
}

// Result is the outcome of a single check.
type Result struct {
	Check Check
	// Path is the resolved binary on success.
	Path string
	OK   bool
}

// Checks lists what a host needs before crossforge can run. crosstool-NG
// and the GNU build system do the real work, so this is about their host
// dependencies, not ours.
var Checks = []Check{
	{
		Name:        "C compiler",
		Binaries:    []string{"gcc", "cc"},
		Required:    true,
		Remediation: "install gcc (e.g. apt install build-essential, dnf group install c-development)",
	},
	{
		Name:        "C++ compiler",
		Binaries:    []string{"g++", "c++"},
		Required:    true,
		Remediation: "install g++ (usually part of the same package group as gcc)",
	},
	{
		Name:        "make",
		Binaries:    []string{"gmake", "make"},
		Required:    true,
		Remediation: "install GNU make",
	},
	{
		Name:        "tar",
		Binaries:    []string{"tar"},
		Required:    true,
		Remediation: "install tar with xz support",
	},
	{
		Name:        "bison",
		Binaries:    []string{"bison"},
		Remediation: "crosstool-ng needs bison to build; install it before the first run",
	},
	{
		Name:        "flex",
		Binaries:    []string{"flex"},
		Remediation: "crosstool-ng needs flex to build; install it before the first run",
	},
	{
		Name:        "makeinfo",
		Binaries:    []string{"makeinfo"},
		Remediation: "install texinfo; some toolchain components refuse to build without it",
	},
}

// LookPath is swapped out in tests.
var LookPath = exec.LookPath

// RunChecks evaluates every check against the current host.
func RunChecks() []Result {
	results := make([]Result, 0, len(Checks))
	for _, c := range Checks {
		res := Result{Check: c}
		for _, bin := range c.Binaries {
			if path, err := LookPath(bin); err == nil {
				res.Path = path
				res.OK = true
				break
			}
		}
		results = append(results, res)
	}
	return results
}

// FirstMissingRequired returns an error describing the first failed
// required check, or nil when the host can build.
func FirstMissingRequired(results []Result) error {
	for _, r := range results {
		if r.Check.Required && !r.OK {
			return fmt.Errorf("doctor: no %s found (tried %s); %s",
				strings.ToLower(r.Check.Name),
				strings.Join(r.Check.Binaries, ", "),
				r.Check.Remediation)
		}
	}
	return nil
}
