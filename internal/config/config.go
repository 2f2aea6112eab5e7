// Package config carries the pinned toolchain versions and the per-run
// settings for a crossforge invocation. The merged Config value is passed
// explicitly between pipeline stages; nothing reads it from a shared file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the optional per-project override file.
const ManifestName = "crossforge.toml"

// KeepWorkEnv preserves transient build directories when set to a truthy
// value, for diagnosing failed builds.
const KeepWorkEnv = "CROSSFORGE_KEEP_WORK"

// CtNG pins the crosstool-NG release used to bootstrap target environments.
type CtNG struct {
	Version string
	URL     string
	SHA256  string
}

// Config is the full set of knobs for one run.
type Config struct {
	// GCCVersion must match the GCC shipped by the pinned crosstool-NG
	// release; the versioned include directory is flattened using it.
	GCCVersion string

	CtNG CtNG

	// Targets are processed sequentially, in order.
	Targets []string

	WorkDir string
	DistDir string

	// Jobs bounds make-level parallelism inside a single target's build.
	Jobs int

	// KeepWork skips removal of transient build directories after a run.
	KeepWork bool
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		GCCVersion: "13.2.0",
		CtNG: CtNG{
			Version: "1.26.0",
			URL:     "http://crosstool-ng.org/download/crosstool-ng/crosstool-ng-1.26.0.tar.xz",
			SHA256:  "e8ce69c5c8ca8d904e6923ccf86c53576761b9cf219e2e69235b139c8e1b74fc",
		},
		Targets: []string{
			"x86_64-linux-gnu",
			"aarch64-linux-gnu",
			"armv7l-linux-gnueabihf",
			"riscv64-linux-gnu",
			"powerpc64le-linux-gnu",
			"s390x-linux-gnu",
		},
		WorkDir: "work",
		DistDir: "dist",
		Jobs:    runtime.NumCPU(),
	}
}

type manifest struct {
	Toolchain toolchainSection `toml:"toolchain"`
	Build     buildSection     `toml:"build"`
}

type toolchainSection struct {
	GCC        string `toml:"gcc"`
	CtNGVer    string `toml:"ctng_version"`
	CtNGURL    string `toml:"ctng_url"`
	CtNGSHA256 string `toml:"ctng_sha256"`
}

type buildSection struct {
	Targets  []string `toml:"targets"`
	Jobs     int      `toml:"jobs"`
	KeepWork bool     `toml:"keep_work"`
	WorkDir  string   `toml:"work_dir"`
	DistDir  string   `toml:"dist_dir"`
}

// FindManifest walks upward from startDir looking for crossforge.toml.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load returns the defaults merged with an optional crossforge.toml found by
// upward search from startDir, then with the process environment. The
// returned path is empty when no manifest was found.
func Load(startDir string) (Config, string, error) {
	cfg := Default()
	path, found, err := FindManifest(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if found {
		if err := mergeManifest(&cfg, path); err != nil {
			return Config{}, "", err
		}
	}
	if truthy(os.Getenv(KeepWorkEnv)) {
		cfg.KeepWork = true
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

func mergeManifest(cfg *Config, path string) error {
	var m manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("toolchain", "gcc") {
		cfg.GCCVersion = m.Toolchain.GCC
	}
	if meta.IsDefined("toolchain", "ctng_version") {
		cfg.CtNG.Version = m.Toolchain.CtNGVer
	}
	if meta.IsDefined("toolchain", "ctng_url") {
		cfg.CtNG.URL = m.Toolchain.CtNGURL
	}
	if meta.IsDefined("toolchain", "ctng_sha256") {
		cfg.CtNG.SHA256 = m.Toolchain.CtNGSHA256
	}
	if meta.IsDefined("build", "targets") {
		cfg.Targets = m.Build.Targets
	}
	if meta.IsDefined("build", "jobs") {
		cfg.Jobs = m.Build.Jobs
	}
	if meta.IsDefined("build", "keep_work") {
		cfg.KeepWork = m.Build.KeepWork
	}
	if meta.IsDefined("build", "work_dir") {
		cfg.WorkDir = m.Build.WorkDir
	}
	if meta.IsDefined("build", "dist_dir") {
		cfg.DistDir = m.Build.DistDir
	}
	return nil
}

// Validate rejects configurations that would fail deep inside a build.
func (c Config) Validate() error {
	if strings.TrimSpace(c.GCCVersion) == "" {
		return errors.New("config: gcc version must not be empty")
	}
	if strings.TrimSpace(c.CtNG.Version) == "" {
		return errors.New("config: crosstool-ng version must not be empty")
	}
	if strings.TrimSpace(c.CtNG.URL) == "" {
		return errors.New("config: crosstool-ng url must not be empty")
	}
	if len(c.CtNG.SHA256) != 64 || !isHex(c.CtNG.SHA256) {
		return fmt.Errorf("config: crosstool-ng sha256 must be 64 hex characters, got %q", c.CtNG.SHA256)
	}
	if len(c.Targets) == 0 {
		return errors.New("config: target list must not be empty")
	}
	for _, t := range c.Targets {
		if err := ValidateTriplet(t); err != nil {
			return err
		}
	}
	if c.Jobs < 1 {
		return fmt.Errorf("config: jobs must be positive, got %d", c.Jobs)
	}
	if strings.TrimSpace(c.WorkDir) == "" || strings.TrimSpace(c.DistDir) == "" {
		return errors.New("config: work_dir and dist_dir must not be empty")
	}
	return nil
}

// ValidateTriplet checks that s looks like a cpu-os-abi target triplet.
func ValidateTriplet(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("config: empty target triplet")
	}
	if strings.ContainsAny(s, " /\\") {
		return fmt.Errorf("config: invalid target triplet %q", s)
	}
	if strings.Count(s, "-") < 2 {
		return fmt.Errorf("config: target triplet %q must have at least three components", s)
	}
	return nil
}

// HasTarget reports whether name is one of the configured targets.
func (c Config) HasTarget(name string) bool {
	for _, t := range c.Targets {
		if t == name {
			return true
		}
	}
	return false
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
