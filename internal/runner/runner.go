// Package runner wraps external build-system invocations. Every call into
// crosstool-NG, configure or make goes through the Runner interface so tests
// can substitute a scripted fake instead of shelling out.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// tailLines is how many trailing output lines an ExitError carries.
const tailLines = 40

// Spec describes a single external command.
type Spec struct {
	Path string
	Args []string
	Dir  string
	// Env entries are appended to the inherited environment.
	Env []string
	// Stdout and Stderr, when set, receive a copy of the command output
	// (typically a per-target log file). The trailing lines are always
	// captured for error reporting regardless.
	Stdout io.Writer
	Stderr io.Writer
}

// CommandLine renders the spec the way a shell would show it.
func (s Spec) CommandLine() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, s.Path)
	for _, a := range s.Args {
		if strings.ContainsAny(a, " \t'\"$") {
			parts = append(parts, fmt.Sprintf("%q", a))
			continue
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Runner executes external commands, failing loudly on non-zero exit.
type Runner interface {
	Run(ctx context.Context, spec Spec) error
}

// ExitError reports a delegated command that returned non-zero.
type ExitError struct {
	Cmd  string
	Code int
	Tail []string
}

func (e *ExitError) Error() string {
	if len(e.Tail) == 0 {
		return fmt.Sprintf("command %q exited with status %d", e.Cmd, e.Code)
	}
	return fmt.Sprintf("command %q exited with status %d\nlast output:\n  %s",
		e.Cmd, e.Code, strings.Join(e.Tail, "\n  "))
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct {
	// PrintCommands echoes each command line to Echo before running it.
	PrintCommands bool
	Echo          io.Writer
}

// Run executes spec and blocks until it exits. Output is streamed to the
// spec sinks while the trailing lines are retained for the error message.
func (r *ExecRunner) Run(ctx context.Context, spec Spec) error {
	if r.PrintCommands {
		echo := r.Echo
		if echo == nil {
			echo = os.Stderr
		}
		fmt.Fprintf(echo, "+ %s\n", spec.CommandLine())
	}

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	tail := newTailBuffer(tailLines)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("command %q: stdout pipe: %w", spec.CommandLine(), err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("command %q: stderr pipe: %w", spec.CommandLine(), err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("command %q: %w", spec.CommandLine(), err)
	}

	var g errgroup.Group
	g.Go(func() error { return pump(stdout, spec.Stdout, tail) })
	g.Go(func() error { return pump(stderr, spec.Stderr, tail) })
	pumpErr := g.Wait()

	waitErr := cmd.Wait()
	if waitErr != nil {
		var ee *exec.ExitError
		if errors.As(waitErr, &ee) {
			return &ExitError{Cmd: spec.CommandLine(), Code: ee.ExitCode(), Tail: tail.Lines()}
		}
		return fmt.Errorf("command %q: %w", spec.CommandLine(), waitErr)
	}
	if pumpErr != nil {
		return fmt.Errorf("command %q: reading output: %w", spec.CommandLine(), pumpErr)
	}
	return nil
}

func pump(src io.Reader, sink io.Writer, tail *tailBuffer) error {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		tail.Add(line)
		if sink != nil {
			fmt.Fprintln(sink, line)
		}
	}
	return sc.Err()
}

// tailBuffer keeps the last n lines seen across both output streams.
// Both pump goroutines write into it.
type tailBuffer struct {
	mu    sync.Mutex
	n     int
	lines []string
	start int
	full  bool
}

func newTailBuffer(n int) *tailBuffer {
	return &tailBuffer{n: n, lines: make([]string, n)}
}

func (b *tailBuffer) Add(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines[b.start] = line
	b.start = (b.start + 1) % b.n
	if b.start == 0 {
		b.full = true
	}
}

func (b *tailBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.full {
		out := make([]string, b.start)
		copy(out, b.lines[:b.start])
		return out
	}
	out := make([]string, 0, b.n)
	out = append(out, b.lines[b.start:]...)
	out = append(out, b.lines[:b.start]...)
	return out
}
