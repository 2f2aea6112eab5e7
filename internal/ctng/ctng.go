// Package ctng bootstraps the shared crosstool-NG installation: download a
// pinned release, verify it, build it once, and reuse it read-only for
// every target afterwards.
package ctng

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"crossforge/internal/config"
	"crossforge/internal/fetch"
	"crossforge/internal/runner"
	"crossforge/internal/workspace"
)

// Bootstrap ties the collaborators needed to produce a working ct-ng.
type Bootstrap struct {
	Pin     config.CtNG
	Paths   workspace.Paths
	Runner  runner.Runner
	Fetcher fetch.Fetcher
	// Log receives the output of delegated commands; may be nil.
	Log io.Writer
}

// EnsureInstalled makes a working ct-ng executable available at
// Paths.CtNGBin, idempotently. A present executable is a cache hit and
// nothing is fetched or run. Any failure is fatal to the run; there are no
// retries beyond the single checksum re-fetch.
func (b *Bootstrap) EnsureInstalled(ctx context.Context) error {
	if _, err := os.Stat(b.Paths.CtNGBin()); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	archive := b.Paths.CtNGArchive(b.Pin.Version)
	if err := b.ensureArchive(ctx, archive); err != nil {
		return err
	}

	src := b.Paths.CtNGSrcDir(b.Pin.Version)
	// A partial previous extraction must not survive into this build.
	if err := os.RemoveAll(src); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		return err
	}
	if err := b.run(ctx, runner.Spec{
		Path: "tar",
		Args: []string{"-xf", archive, "-C", filepath.Dir(src)},
	}); err != nil {
		return fmt.Errorf("ctng: extracting %s: %w", archive, err)
	}
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("ctng: archive did not extract to %s: %w", src, err)
	}

	install := b.Paths.CtNGInstallDir()
	if err := os.MkdirAll(install, 0o755); err != nil {
		return err
	}
	steps := []runner.Spec{
		{Path: "./configure", Args: []string{"--prefix=" + install}, Dir: src},
		{Path: "make", Dir: src},
		{Path: "make", Args: []string{"install"}, Dir: src},
	}
	for _, step := range steps {
		if err := b.run(ctx, step); err != nil {
			return fmt.Errorf("ctng: building crosstool-ng %s: %w", b.Pin.Version, err)
		}
	}

	if _, err := os.Stat(b.Paths.CtNGBin()); err != nil {
		return fmt.Errorf("ctng: install completed but %s is missing: %w", b.Paths.CtNGBin(), err)
	}
	return nil
}

// ensureArchive leaves a checksum-verified source tarball at path. A
// mismatching file is deleted and re-fetched exactly once; a second
// mismatch aborts so a poisoned mirror cannot loop the build.
func (b *Bootstrap) ensureArchive(ctx context.Context, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := b.Fetcher.Fetch(ctx, b.Pin.URL, path); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	err := fetch.VerifyFile(path, b.Pin.SHA256)
	var ce *fetch.ChecksumError
	if !errors.As(err, &ce) {
		return err
	}

	if rmErr := os.Remove(path); rmErr != nil {
		return rmErr
	}
	if err := b.Fetcher.Fetch(ctx, b.Pin.URL, path); err != nil {
		return err
	}
	if err := fetch.VerifyFile(path, b.Pin.SHA256); err != nil {
		if errors.As(err, &ce) {
			_ = os.Remove(path)
		}
		return err
	}
	return nil
}

func (b *Bootstrap) run(ctx context.Context, spec runner.Spec) error {
	spec.Stdout = b.Log
	spec.Stderr = b.Log
	return b.Runner.Run(ctx, spec)
}
