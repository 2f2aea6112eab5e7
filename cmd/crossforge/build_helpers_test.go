package main

import (
	"path/filepath"
	"testing"

	"crossforge/internal/config"
)

func TestParseUIMode(t *testing.T) {
	cases := []struct {
		input string
		want  uiMode
		ok    bool
	}{
		{"auto", uiAuto, true},
		{"", uiAuto, true},
		{"ON", uiOn, true},
		{"tui", uiOn, true},
		{" off ", uiOff, true},
		{"plain", uiOff, true},
		{"fancy", uiAuto, false},
	}
	for _, tc := range cases {
		got, err := parseUIMode(tc.input)
		if tc.ok && err != nil {
			t.Fatalf("parseUIMode(%q) error: %v", tc.input, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("parseUIMode(%q) expected error", tc.input)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("parseUIMode(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestUIModeInteractive(t *testing.T) {
	if !uiOn.interactive() {
		t.Fatal("on must force the interactive display")
	}
	if uiOff.interactive() {
		t.Fatal("off must suppress the interactive display")
	}
	// auto never picks the display inside CI, terminal or not.
	t.Setenv("CI", "true")
	if uiAuto.interactive() {
		t.Fatal("auto must stay plain in CI")
	}
}

func TestResolveRootsAnchorsAtManifest(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "crossforge.toml")

	cfg := config.Default()
	work, dist, err := resolveRoots(cfg, manifest)
	if err != nil {
		t.Fatalf("resolveRoots: %v", err)
	}
	if work != filepath.Join(root, cfg.WorkDir) {
		t.Fatalf("work = %q, want under %q", work, root)
	}
	if dist != filepath.Join(root, cfg.DistDir) {
		t.Fatalf("dist = %q, want under %q", dist, root)
	}
}

func TestResolveRootsKeepsAbsolutePaths(t *testing.T) {
	cfg := config.Default()
	cfg.WorkDir = "/var/tmp/forge-work"
	cfg.DistDir = "/srv/forge-dist"

	work, dist, err := resolveRoots(cfg, "/anywhere/crossforge.toml")
	if err != nil {
		t.Fatalf("resolveRoots: %v", err)
	}
	if work != "/var/tmp/forge-work" {
		t.Fatalf("work = %q, absolute paths must not be re-anchored", work)
	}
	if dist != "/srv/forge-dist" {
		t.Fatalf("dist = %q, absolute paths must not be re-anchored", dist)
	}
}
