package ctng

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crossforge/internal/config"
	"crossforge/internal/fetch"
	"crossforge/internal/runner"
	"crossforge/internal/testkit"
	"crossforge/internal/workspace"
)

const ctngVersion = "1.26.0"

func sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func newBootstrap(t *testing.T, goodBody []byte, bodies [][]byte) (*Bootstrap, *testkit.FakeRunner, *testkit.FakeFetcher) {
	t.Helper()
	paths := workspace.New(t.TempDir(), "13.2.0")
	pin := config.CtNG{
		Version: ctngVersion,
		URL:     "http://example.invalid/crosstool-ng.tar.xz",
		SHA256:  sum(goodBody),
	}
	fr := &testkit.FakeRunner{}
	ff := &testkit.FakeFetcher{Bodies: map[string][][]byte{pin.URL: bodies}}
	return &Bootstrap{Pin: pin, Paths: paths, Runner: fr, Fetcher: ff}, fr, ff
}

// extractingRunner simulates the tar extraction step by creating the source
// directory, so the configure/make steps have somewhere to run.
func extracting(paths workspace.Paths) func(spec runner.Spec) error {
	return func(spec runner.Spec) error {
		if spec.Path == "tar" {
			return os.MkdirAll(paths.CtNGSrcDir(ctngVersion), 0o755)
		}
		if spec.Path == "make" && len(spec.Args) == 1 && spec.Args[0] == "install" {
			bin := paths.CtNGBin()
			if err := os.MkdirAll(filepath.Dir(bin), 0o755); err != nil {
				return err
			}
			return os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755)
		}
		return nil
	}
}

func TestEnsureInstalledBuildsOnce(t *testing.T) {
	body := []byte("ctng source tarball")
	b, fr, ff := newBootstrap(t, body, [][]byte{body})
	fr.OnRun = extracting(b.Paths)

	if err := b.EnsureInstalled(context.Background()); err != nil {
		t.Fatalf("EnsureInstalled: %v", err)
	}
	lines := fr.CommandLines()
	if len(lines) != 4 {
		t.Fatalf("expected tar+configure+make+make install, got %v", lines)
	}
	if !strings.HasPrefix(lines[1], "./configure --prefix=") {
		t.Fatalf("second command = %q", lines[1])
	}
	if ff.FetchCount(b.Pin.URL) != 1 {
		t.Fatalf("fetch count = %d, want 1", ff.FetchCount(b.Pin.URL))
	}
}

func TestEnsureInstalledCacheHit(t *testing.T) {
	body := []byte("ctng source tarball")
	b, fr, ff := newBootstrap(t, body, [][]byte{body})
	bin := b.Paths.CtNGBin()
	if err := os.MkdirAll(filepath.Dir(bin), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := b.EnsureInstalled(context.Background()); err != nil {
		t.Fatalf("EnsureInstalled: %v", err)
	}
	if n := len(fr.Calls()); n != 0 {
		t.Fatalf("cache hit must not run anything, got %d calls", n)
	}
	if ff.FetchCount(b.Pin.URL) != 0 {
		t.Fatal("cache hit must not fetch")
	}
}

func TestChecksumMismatchRefetchesOnce(t *testing.T) {
	good := []byte("good tarball")
	b, fr, ff := newBootstrap(t, good, [][]byte{good})
	fr.OnRun = extracting(b.Paths)

	// Seed a stale cached download with the wrong content.
	archivePath := b.Paths.CtNGArchive(ctngVersion)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archivePath, []byte("corrupted"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := b.EnsureInstalled(context.Background()); err != nil {
		t.Fatalf("EnsureInstalled: %v", err)
	}
	if ff.FetchCount(b.Pin.URL) != 1 {
		t.Fatalf("fetch count = %d, want exactly 1 re-fetch", ff.FetchCount(b.Pin.URL))
	}
}

func TestChecksumMismatchTwiceAborts(t *testing.T) {
	good := []byte("good tarball")
	bad := []byte("still corrupted")
	b, fr, ff := newBootstrap(t, good, [][]byte{bad, bad})
	fr.OnRun = extracting(b.Paths)

	err := b.EnsureInstalled(context.Background())
	var ce *fetch.ChecksumError
	if !errors.As(err, &ce) {
		t.Fatalf("expected checksum error, got %v", err)
	}
	if ff.FetchCount(b.Pin.URL) != 2 {
		t.Fatalf("fetch count = %d, want 2 (initial + single re-fetch)", ff.FetchCount(b.Pin.URL))
	}
	// The poisoned file must not survive to taint the next invocation.
	testkit.MustNotExist(t, b.Paths.CtNGArchive(ctngVersion))
	// Nothing may have been built.
	if n := len(fr.Calls()); n != 0 {
		t.Fatalf("no build steps expected after checksum abort, got %v", fr.CommandLines())
	}
}

func TestBuildFailureIsFatal(t *testing.T) {
	body := []byte("ctng source tarball")
	b, fr, _ := newBootstrap(t, body, [][]byte{body})
	fr.OnRun = func(spec runner.Spec) error {
		if spec.Path == "tar" {
			return os.MkdirAll(b.Paths.CtNGSrcDir(ctngVersion), 0o755)
		}
		if spec.Path == "make" {
			return &runner.ExitError{Cmd: spec.CommandLine(), Code: 2}
		}
		return nil
	}

	err := b.EnsureInstalled(context.Background())
	var ee *runner.ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected exit error, got %v", err)
	}
}
