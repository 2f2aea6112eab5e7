package sysroot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crossforge/internal/runner"
	"crossforge/internal/testkit"
	"crossforge/internal/workspace"
)

func newBootstrap(t *testing.T) (*Bootstrap, *testkit.FakeRunner) {
	t.Helper()
	fr := &testkit.FakeRunner{}
	return &Bootstrap{
		Paths:      workspace.New(t.TempDir(), "13.2.0"),
		Runner:     fr,
		GCCVersion: "13.2.0",
		Jobs:       4,
	}, fr
}

func TestBuildRunsDefconfigThenBuild(t *testing.T) {
	b, fr := newBootstrap(t)
	target := "aarch64-linux-gnu"
	fr.OnRun = func(spec runner.Spec) error {
		// ct-ng defconfig materializes .config from the defconfig file.
		if len(spec.Args) == 1 && spec.Args[0] == "defconfig" {
			return os.WriteFile(filepath.Join(spec.Dir, ".config"), []byte("CT_ARCH_ARM=y\n"), 0o644)
		}
		return nil
	}

	if err := b.Build(context.Background(), target); err != nil {
		t.Fatalf("Build: %v", err)
	}
	lines := fr.CommandLines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 commands, got %v", lines)
	}
	if !strings.HasSuffix(lines[0], "ct-ng defconfig") {
		t.Fatalf("first command = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "ct-ng build.4") {
		t.Fatalf("second command = %q", lines[1])
	}
	// The transient configuration must not survive a successful bootstrap.
	testkit.MustNotExist(t, b.Paths.EnvConfig(target))
	// The defconfig the run was generated from was written.
	testkit.MustExist(t, filepath.Join(b.Paths.EnvDir(target), "defconfig"))
}

func TestBuildFailurePurgesInstallPrefix(t *testing.T) {
	b, fr := newBootstrap(t)
	target := "riscv64-linux-gnu"
	prefix := b.Paths.ToolchainDir(target)
	fr.OnRun = func(spec runner.Spec) error {
		if strings.HasPrefix(spec.Args[0], "build.") {
			// Simulate a build that died partway through installing.
			if err := os.MkdirAll(filepath.Join(prefix, "bin"), 0o755); err != nil {
				return err
			}
			return &runner.ExitError{Cmd: spec.CommandLine(), Code: 1}
		}
		return nil
	}

	err := b.Build(context.Background(), target)
	var ee *runner.ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected exit error, got %v", err)
	}
	testkit.MustNotExist(t, prefix)
}

func TestBuildRejectsUnknownArch(t *testing.T) {
	b, fr := newBootstrap(t)
	err := b.Build(context.Background(), "vax-linux-gnu")
	if err == nil {
		t.Fatal("expected error for unsupported architecture")
	}
	if n := len(fr.Calls()); n != 0 {
		t.Fatalf("nothing should run for an unsupported target, got %d calls", n)
	}
}

func TestDefconfigFor(t *testing.T) {
	cases := []struct {
		target string
		want   []string
	}{
		{"x86_64-linux-gnu", []string{"CT_ARCH_X86=y", "CT_ARCH_64=y", "CT_KERNEL_LINUX=y"}},
		{"aarch64-linux-gnu", []string{"CT_ARCH_ARM=y", "CT_ARCH_64=y", "CT_ARCH_LE=y"}},
		{"armv7l-linux-gnueabihf", []string{"CT_ARCH_ARM=y", "CT_ARCH_SUFFIX=\"v7l\"", "CT_ARCH_FLOAT_HW=y"}},
		{"s390x-linux-gnu", []string{"CT_ARCH_S390=y", "CT_ARCH_BE=y"}},
		{"powerpc64le-linux-gnu", []string{"CT_ARCH_POWERPC=y", "CT_ARCH_LE=y"}},
	}
	for _, tc := range cases {
		got, err := DefconfigFor(tc.target, "13.2.0", "/opt/prefix")
		if err != nil {
			t.Fatalf("DefconfigFor(%s): %v", tc.target, err)
		}
		for _, line := range tc.want {
			if !strings.Contains(got, line+"\n") {
				t.Errorf("DefconfigFor(%s) missing %q:\n%s", tc.target, line, got)
			}
		}
		if !strings.Contains(got, "CT_GCC_VERSION=\"13.2.0\"") {
			t.Errorf("DefconfigFor(%s) missing GCC version pin", tc.target)
		}
	}

	if _, err := DefconfigFor("mips-linux-gnu", "13.2.0", "/p"); err == nil {
		t.Error("expected error for unmapped architecture")
	}
	if _, err := DefconfigFor("garbage", "13.2.0", "/p"); err == nil {
		t.Error("expected error for malformed triplet")
	}
}
