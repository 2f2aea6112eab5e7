package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode decides how build progress is rendered. Toolchain builds run for
// hours and are routinely piped into CI logs, so the default only turns the
// interactive display on for a real terminal outside CI.
type uiMode int

const (
	uiAuto uiMode = iota
	uiOn
	uiOff
)

func parseUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiAuto, nil
	case "on", "tui":
		return uiOn, nil
	case "off", "plain":
		return uiOff, nil
	}
	return uiAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// interactive reports whether the bubbletea display should drive output.
func (m uiMode) interactive() bool {
	switch m {
	case uiOn:
		return true
	case uiOff:
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	return isTerminal(os.Stdout)
}
