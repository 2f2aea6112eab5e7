package workspace

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPerTargetPathsAreIndependent(t *testing.T) {
	p := New("/tmp/work", "13.2.0")
	a := p.TargetDir("aarch64-linux-gnu")
	b := p.TargetDir("riscv64-linux-gnu")
	if a == b {
		t.Fatal("target dirs must differ per target")
	}
	if !strings.Contains(a, "13.2.0") {
		t.Fatalf("target dir %q not keyed by version", a)
	}
	for _, sub := range []string{p.EnvDir("aarch64-linux-gnu"), p.BuildDir("aarch64-linux-gnu"), p.StageDir("aarch64-linux-gnu")} {
		if !strings.HasPrefix(sub, a+string(filepath.Separator)) {
			t.Fatalf("%q not under target dir %q", sub, a)
		}
	}
}

func TestCrossToolNaming(t *testing.T) {
	p := New("work", "13.2.0")
	got := p.CrossTool("aarch64-linux-gnu", "g++")
	want := filepath.Join(p.ToolchainDir("aarch64-linux-gnu"), "bin", "aarch64-linux-gnu-g++")
	if got != want {
		t.Fatalf("CrossTool = %q, want %q", got, want)
	}
}

func TestArchiveNaming(t *testing.T) {
	p := New("work", "13.2.0")
	got := p.ArchivePath("dist", "aarch64-linux-gnu")
	want := filepath.Join("dist", "crossforge-13.2.0-aarch64-linux-gnu.tar.gz")
	if got != want {
		t.Fatalf("ArchivePath = %q, want %q", got, want)
	}
	if p.ArchiveBase("aarch64-linux-gnu") != "crossforge-13.2.0-aarch64-linux-gnu" {
		t.Fatalf("ArchiveBase = %q", p.ArchiveBase("aarch64-linux-gnu"))
	}
}

func TestCtNGPathsSharedAcrossTargets(t *testing.T) {
	p := New("work", "13.2.0")
	if !strings.HasPrefix(p.CtNGBin(), p.CtNGInstallDir()) {
		t.Fatalf("CtNGBin %q not under install dir", p.CtNGBin())
	}
	if strings.Contains(p.CtNGDir(), "13.2.0") {
		t.Fatal("ct-ng installation must not be keyed by GCC version")
	}
	if p.CtNGArchive("1.26.0") != filepath.Join("work", "ctng", "crosstool-ng-1.26.0.tar.xz") {
		t.Fatalf("CtNGArchive = %q", p.CtNGArchive("1.26.0"))
	}
}
