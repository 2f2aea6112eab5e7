package testkit

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"crossforge/internal/runner"
)

// FakeRunner records every delegated command instead of executing it. An
// optional script decides the outcome per call.
type FakeRunner struct {
	mu    sync.Mutex
	calls []runner.Spec
	// OnRun, when set, is consulted for every call. A nil OnRun succeeds.
	OnRun func(spec runner.Spec) error
}

func (r *FakeRunner) Run(_ context.Context, spec runner.Spec) error {
	r.mu.Lock()
	r.calls = append(r.calls, spec)
	r.mu.Unlock()
	if r.OnRun != nil {
		return r.OnRun(spec)
	}
	return nil
}

// Calls returns the recorded command specs in invocation order.
func (r *FakeRunner) Calls() []runner.Spec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]runner.Spec(nil), r.calls...)
}

// CommandLines returns the recorded commands rendered as shell lines.
func (r *FakeRunner) CommandLines() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.CommandLine()
	}
	return out
}

// FakeFetcher serves canned bodies keyed by URL and counts fetches.
type FakeFetcher struct {
	mu sync.Mutex
	// Bodies maps URL to the content written on fetch. Successive fetches
	// of the same URL consume successive entries, the last one repeating.
	Bodies map[string][][]byte

	fetches map[string]int
}

func (f *FakeFetcher) Fetch(_ context.Context, url, dest string) error {
	f.mu.Lock()
	if f.fetches == nil {
		f.fetches = map[string]int{}
	}
	n := f.fetches[url]
	f.fetches[url] = n + 1
	bodies := f.Bodies[url]
	f.mu.Unlock()

	if len(bodies) == 0 {
		return os.ErrNotExist
	}
	if n >= len(bodies) {
		n = len(bodies) - 1
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, bodies[n], 0o644)
}

// FetchCount reports how many times url was fetched.
func (f *FakeFetcher) FetchCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[url]
}
