// Package observ records how long each pipeline stage ran, per target, so
// a multi-hour build can be broken down after the fact.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// HostScope groups phases that belong to no single target, like the shared
// crosstool-NG bootstrap.
const HostScope = "host"

// Phase is one timed pipeline stage for one scope.
type Phase struct {
	Scope string
	Stage string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer accumulates phases in execution order.
type Timer struct {
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin opens a phase for the given scope (a target triplet, or HostScope)
// and returns its index for End.
func (t *Timer) Begin(scope, stage string) int {
	if scope == "" {
		scope = HostScope
	}
	t.phases = append(t.phases, Phase{Scope: scope, Stage: stage, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Summary renders the phases grouped by scope, in first-seen order, with a
// subtotal per target and a grand total. Targets run sequentially, so the
// subtotals are also the wall-clock shares.
func (t *Timer) Summary() string {
	if len(t.phases) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("timings:\n")

	var total time.Duration
	for _, scope := range t.scopes() {
		fmt.Fprintf(&b, "  %s\n", scope)
		var sub time.Duration
		n := 0
		for _, p := range t.phases {
			if p.Scope != scope {
				continue
			}
			sub += p.Dur
			n++
			fmt.Fprintf(&b, "    %-20s %9.1f ms", p.Stage, durationToMillis(p.Dur))
			if p.Note != "" {
				b.WriteString("  // " + p.Note)
			}
			b.WriteString("\n")
		}
		total += sub
		if n > 1 {
			fmt.Fprintf(&b, "    %-20s %9.1f ms\n", "subtotal", durationToMillis(sub))
		}
	}
	fmt.Fprintf(&b, "  %-22s %9.1f ms\n", "total", durationToMillis(total))
	return b.String()
}

// PhaseReport is the serializable form of a single phase.
type PhaseReport struct {
	Scope      string  `json:"scope"`
	Stage      string  `json:"stage"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates all phases with their total duration.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report converts the tracked phases into their serializable form.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		report.Phases[i] = PhaseReport{
			Scope:      p.Scope,
			Stage:      p.Stage,
			DurationMS: durationToMillis(p.Dur),
			Note:       p.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// scopes returns the distinct phase scopes in first-seen order.
func (t *Timer) scopes() []string {
	seen := make(map[string]bool, 4)
	out := make([]string, 0, 4)
	for _, p := range t.phases {
		if !seen[p.Scope] {
			seen[p.Scope] = true
			out = append(out, p.Scope)
		}
	}
	return out
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
