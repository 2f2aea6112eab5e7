// Package libbuild configures the GNU build tree against a bootstrap cross
// compiler and builds the target libraries in dependency order.
package libbuild

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"crossforge/internal/runner"
	"crossforge/internal/workspace"
)

// Libraries lists the build order. Each later library links against the
// former: libgcc is the runtime support layer, libstdc++ sits on it, and
// libatomic depends on both.
var Libraries = []string{"libgcc", "libstdc++-v3", "libatomic"}

// Builder runs the library configure/build/install sequence for one target.
type Builder struct {
	Paths      workspace.Paths
	Runner     runner.Runner
	GCCVersion string
	Jobs       int
	// Log receives the output of delegated commands; may be nil.
	Log io.Writer
}

// SrcDir is where crosstool-NG leaves the extracted GCC sources for the
// target's environment.
func (b *Builder) SrcDir(target string) string {
	return filepath.Join(b.Paths.EnvDir(target), ".build", "src", "gcc-"+b.GCCVersion)
}

// configureArgs returns the library-only configure invocation: threads on,
// optional runtimes off. Nothing here produces a usable end compiler.
func (b *Builder) configureArgs(target string) []string {
	return []string{
		"--target=" + target,
		"--prefix=/",
		"--enable-languages=c,c++",
		"--enable-threads=posix",
		"--disable-libgomp",
		"--disable-libssp",
		"--disable-libquadmath",
		"--disable-libsanitizer",
		"--disable-multilib",
		"--disable-bootstrap",
		"--disable-nls",
		"--with-sysroot=" + filepath.Join(b.Paths.ToolchainDir(target), target, "sysroot"),
	}
}

// Build configures and builds the target libraries, then installs them into
// the staging tree via DESTDIR.
//
// The bootstrap compiler was produced without a host C library, so the
// minimal host compiler driver must be staged (all-gcc) before any target
// library can build. That step is a correctness constraint: reordering it
// after the library builds breaks the foreign-build case.
func (b *Builder) Build(ctx context.Context, target string) error {
	buildDir := b.Paths.BuildDir(target)
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	stage := b.Paths.StageDir(target)
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return err
	}

	// The cross tools are named explicitly; the PATH prepend covers the
	// helper binaries configure discovers on its own.
	toolEnv := []string{
		"PATH=" + filepath.Join(b.Paths.ToolchainDir(target), "bin") + string(os.PathListSeparator) + os.Getenv("PATH"),
		"CC_FOR_TARGET=" + b.Paths.CrossTool(target, "gcc"),
		"CXX_FOR_TARGET=" + b.Paths.CrossTool(target, "g++"),
	}

	steps := []runner.Spec{
		{
			Path: filepath.Join(b.SrcDir(target), "configure"),
			Args: b.configureArgs(target),
			Dir:  buildDir,
			Env:  toolEnv,
		},
		// Host driver first; see the package comment on ordering.
		{Path: "make", Args: []string{jobsFlag(b.Jobs), "all-gcc"}, Dir: buildDir, Env: toolEnv},
	}
	for _, lib := range Libraries {
		steps = append(steps, runner.Spec{
			Path: "make",
			Args: []string{jobsFlag(b.Jobs), "all-target-" + lib},
			Dir:  buildDir,
			Env:  toolEnv,
		})
	}
	for _, lib := range Libraries {
		steps = append(steps, runner.Spec{
			Path: "make",
			Args: []string{"install-target-" + lib, "DESTDIR=" + stage},
			Dir:  buildDir,
			Env:  toolEnv,
		})
	}

	for _, step := range steps {
		step.Stdout = b.Log
		step.Stderr = b.Log
		if err := b.Runner.Run(ctx, step); err != nil {
			return fmt.Errorf("libbuild: building %s for %s: %w", b.GCCVersion, target, err)
		}
	}
	return nil
}

func jobsFlag(jobs int) string {
	return fmt.Sprintf("-j%d", jobs)
}
