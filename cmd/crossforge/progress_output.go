package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"crossforge/internal/pipeline"
)

// consoleSink prints one line per stage transition, for non-interactive
// runs and CI logs.
type consoleSink struct {
	out   io.Writer
	quiet bool

	working *color.Color
	done    *color.Color
	skipped *color.Color
	failed  *color.Color
}

func newConsoleSink(out io.Writer, quiet bool) *consoleSink {
	return &consoleSink{
		out:     out,
		quiet:   quiet,
		working: color.New(color.FgYellow),
		done:    color.New(color.FgGreen),
		skipped: color.New(color.FgCyan),
		failed:  color.New(color.FgRed, color.Bold),
	}
}

func (s *consoleSink) OnEvent(evt pipeline.Event) {
	scope := evt.Target
	if scope == "" {
		scope = "host"
	}
	switch evt.Status {
	case pipeline.StatusWorking:
		if !s.quiet {
			fmt.Fprintf(s.out, "%s %s %s\n", s.working.Sprint("..."), scope, evt.Stage)
		}
	case pipeline.StatusDone:
		if !s.quiet {
			fmt.Fprintf(s.out, "%s %s %s (%s)\n", s.done.Sprint(" ok"), scope, evt.Stage, roundElapsed(evt.Elapsed))
		}
	case pipeline.StatusSkipped:
		if !s.quiet {
			fmt.Fprintf(s.out, "%s %s %s\n", s.skipped.Sprint(" --"), scope, evt.Stage)
		}
	case pipeline.StatusError:
		// Errors always print, quiet or not.
		fmt.Fprintf(s.out, "%s %s %s: %v\n", s.failed.Sprint("err"), scope, evt.Stage, evt.Err)
	}
}

func roundElapsed(d time.Duration) time.Duration {
	if d >= time.Second {
		return d.Round(100 * time.Millisecond)
	}
	return d.Round(time.Millisecond)
}
