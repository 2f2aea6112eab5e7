package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"crossforge/internal/version"
)

func TestCollectVersionInfoDefaultsToDev(t *testing.T) {
	orig := version.Plain
	version.Plain = "   "
	defer func() { version.Plain = orig }()

	if got := collectVersionInfo().Version; got != "dev" {
		t.Fatalf("Version = %q, want dev fallback", got)
	}
}

func TestRenderVersionJSON(t *testing.T) {
	info := versionInfo{Version: "1.2.3", GitCommit: "abc123", BuildDate: ""}
	var buf bytes.Buffer
	opts := versionOptions{format: "json", showHash: true, showDate: true}
	if err := renderVersionJSON(&buf, info, opts); err != nil {
		t.Fatalf("renderVersionJSON: %v", err)
	}

	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Tool != "crossforge" {
		t.Fatalf("Tool = %q, want crossforge", payload.Tool)
	}
	if payload.GitCommit != "abc123" {
		t.Fatalf("GitCommit = %q, want abc123", payload.GitCommit)
	}
	if payload.BuildDate != "unknown" {
		t.Fatalf("BuildDate = %q, want unknown placeholder", payload.BuildDate)
	}
}

func TestRenderVersionPrettyHintsAtFlags(t *testing.T) {
	var buf bytes.Buffer
	renderVersionPretty(&buf, versionInfo{Version: "1.2.3"}, versionOptions{format: "pretty"})
	out := buf.String()
	if !strings.Contains(out, "crossforge 1.2.3") {
		t.Fatalf("missing version line: %q", out)
	}
	if !strings.Contains(out, "--full") {
		t.Fatalf("missing flag hint: %q", out)
	}
}
