// Package workspace defines the on-disk layout of the transient work tree
// and the dist output directory. Every pipeline stage derives its paths from
// here so targets stay independent of each other.
package workspace

import (
	"fmt"
	"path/filepath"
)

// Paths resolves locations inside one run's work tree. Per-target paths are
// keyed by (GCC version, target) so a version bump never reuses stale state.
type Paths struct {
	Root       string
	GCCVersion string
}

// New returns a Paths rooted at root for the given GCC version.
func New(root, gccVersion string) Paths {
	return Paths{Root: root, GCCVersion: gccVersion}
}

// CtNGDir holds everything related to the shared crosstool-NG installation.
func (p Paths) CtNGDir() string { return filepath.Join(p.Root, "ctng") }

// CtNGArchive is the downloaded source tarball for the pinned release.
func (p Paths) CtNGArchive(version string) string {
	return filepath.Join(p.CtNGDir(), fmt.Sprintf("crosstool-ng-%s.tar.xz", version))
}

// CtNGSrcDir is where the source tarball extracts to.
func (p Paths) CtNGSrcDir(version string) string {
	return filepath.Join(p.CtNGDir(), "src", "crosstool-ng-"+version)
}

// CtNGInstallDir is the local installation prefix for ct-ng.
func (p Paths) CtNGInstallDir() string { return filepath.Join(p.CtNGDir(), "install") }

// CtNGBin is the installed ct-ng executable; its presence is the cache-hit
// check for the host tool bootstrap.
func (p Paths) CtNGBin() string { return filepath.Join(p.CtNGInstallDir(), "bin", "ct-ng") }

// StampFile records completed pipeline stages across runs.
func (p Paths) StampFile() string { return filepath.Join(p.Root, "stamps.mp") }

// TargetDir is the root of everything transient for one target.
func (p Paths) TargetDir(target string) string {
	return filepath.Join(p.Root, p.GCCVersion, target)
}

// EnvDir is the crosstool-NG working directory for the target; it holds the
// generated .config during a bootstrap.
func (p Paths) EnvDir(target string) string {
	return filepath.Join(p.TargetDir(target), "env")
}

// EnvConfig is the transient crosstool-NG configuration file.
func (p Paths) EnvConfig(target string) string {
	return filepath.Join(p.EnvDir(target), ".config")
}

// ToolchainDir is the install prefix for the target's bootstrap compiler
// and sysroot.
func (p Paths) ToolchainDir(target string) string {
	return filepath.Join(p.TargetDir(target), "toolchain")
}

// CrossTool is a bootstrap toolchain binary for target, e.g.
// CrossTool(target, "gcc") for the cross compiler driver.
func (p Paths) CrossTool(target, tool string) string {
	return filepath.Join(p.ToolchainDir(target), "bin", target+"-"+tool)
}

// BuildDir is where the GNU tree is configured and built.
func (p Paths) BuildDir(target string) string {
	return filepath.Join(p.TargetDir(target), "build")
}

// StageDir is the DESTDIR staging tree receiving installed libraries before
// normalization and packaging.
func (p Paths) StageDir(target string) string {
	return filepath.Join(p.TargetDir(target), "stage")
}

// LogFile receives the combined output of all delegated commands for the
// target.
func (p Paths) LogFile(target string) string {
	return filepath.Join(p.TargetDir(target), "build.log")
}

// ArchiveBase is the synthetic root directory inside the output archive,
// also used as the archive file stem.
func (p Paths) ArchiveBase(target string) string {
	return fmt.Sprintf("crossforge-%s-%s", p.GCCVersion, target)
}

// ArchivePath is the final archive location under distDir.
func (p Paths) ArchivePath(distDir, target string) string {
	return filepath.Join(distDir, p.ArchiveBase(target)+".tar.gz")
}
