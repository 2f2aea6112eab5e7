// Package sysroot drives crosstool-NG to produce, per target, a minimal
// sysroot and bootstrap cross compiler - enough to compile the target
// libraries, never a usable end toolchain.
package sysroot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"crossforge/internal/runner"
	"crossforge/internal/workspace"
)

// Bootstrap runs the target environment bootstrap.
type Bootstrap struct {
	Paths      workspace.Paths
	Runner     runner.Runner
	GCCVersion string
	Jobs       int
	// Log receives the output of delegated commands; may be nil.
	Log io.Writer
}

// Build produces the bootstrap toolchain for target under
// Paths.ToolchainDir(target). The generated .config never outlives the
// bootstrap: it is removed after success so later runs regenerate it, and
// on failure the partially-built install prefix is purged so a retry does
// not observe half-built state.
func (b *Bootstrap) Build(ctx context.Context, target string) (err error) {
	envDir := b.Paths.EnvDir(target)
	if err := os.MkdirAll(envDir, 0o755); err != nil {
		return err
	}
	prefix := b.Paths.ToolchainDir(target)

	defer func() {
		if err != nil {
			_ = os.RemoveAll(prefix)
		}
		_ = os.Remove(b.Paths.EnvConfig(target))
	}()

	defconfig, err := DefconfigFor(target, b.GCCVersion, prefix)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(envDir, "defconfig"), []byte(defconfig), 0o644); err != nil {
		return err
	}

	steps := []runner.Spec{
		{Path: b.Paths.CtNGBin(), Args: []string{"defconfig"}, Dir: envDir},
		{Path: b.Paths.CtNGBin(), Args: []string{fmt.Sprintf("build.%d", b.Jobs)}, Dir: envDir},
	}
	for _, step := range steps {
		step.Stdout = b.Log
		step.Stderr = b.Log
		if err := b.Runner.Run(ctx, step); err != nil {
			return fmt.Errorf("sysroot: bootstrapping %s: %w", target, err)
		}
	}
	return nil
}
