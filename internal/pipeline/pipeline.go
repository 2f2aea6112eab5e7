// Package pipeline sequences the per-target build stages. Execution is
// strictly sequential: targets run one at a time in list order, and the
// first failed stage aborts the whole run after that target's cleanup.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"crossforge/internal/archive"
	"crossforge/internal/config"
	"crossforge/internal/ctng"
	"crossforge/internal/fetch"
	"crossforge/internal/layout"
	"crossforge/internal/libbuild"
	"crossforge/internal/observ"
	"crossforge/internal/runner"
	"crossforge/internal/stamp"
	"crossforge/internal/sysroot"
	"crossforge/internal/workspace"
)

// Request carries everything one run needs. The configuration travels
// through here explicitly; stages never read shared mutable files to find
// their settings.
type Request struct {
	Config   config.Config
	WorkRoot string
	DistRoot string
	// Targets, when non-empty, selects a subset of Config.Targets.
	Targets []string
	// Force ignores stage stamps and rebuilds everything.
	Force   bool
	Runner  runner.Runner
	Fetcher fetch.Fetcher
	Sink    ProgressSink
	Timer   *observ.Timer
}

// Result reports what a run produced.
type Result struct {
	// Archives maps target to its emitted archive path.
	Archives map[string]string
	// States holds the final state-machine position per target.
	States map[string]State
}

// Run executes the pipeline for every requested target. The shared host
// tool is bootstrapped at most once and reused read-only afterwards.
func Run(ctx context.Context, req Request) (*Result, error) {
	targets := req.Targets
	if len(targets) == 0 {
		targets = req.Config.Targets
	}
	for _, t := range targets {
		if !req.Config.HasTarget(t) {
			return nil, fmt.Errorf("pipeline: unknown target %q", t)
		}
	}

	paths := workspace.New(req.WorkRoot, req.Config.GCCVersion)
	stamps, err := stamp.Load(paths.StampFile())
	if err != nil {
		return nil, err
	}

	res := &Result{
		Archives: make(map[string]string, len(targets)),
		States:   make(map[string]State, len(targets)),
	}
	for _, t := range targets {
		res.States[t] = StateNotStarted
	}

	if err := runStage(req, "", StageHostTool, func() error {
		boot := &ctng.Bootstrap{
			Pin:     req.Config.CtNG,
			Paths:   paths,
			Runner:  req.Runner,
			Fetcher: req.Fetcher,
		}
		return boot.EnsureInstalled(ctx)
	}); err != nil {
		return res, err
	}

	for _, target := range targets {
		res.States[target] = StateHostToolReady
		advance := func(s State) { res.States[target] = s }
		state, archivePath, err := runTarget(ctx, req, paths, stamps, target, advance)
		res.States[target] = state
		if archivePath != "" {
			res.Archives[target] = archivePath
		}
		if err != nil {
			// One target's failure stops the remaining targets.
			return res, fmt.Errorf("pipeline: target %s: %w", target, err)
		}
	}
	return res, nil
}

// runTarget advances one target through the state machine. Cleanup runs on
// both success and failure.
func runTarget(ctx context.Context, req Request, paths workspace.Paths, stamps *stamp.File, target string, advance func(State)) (State, string, error) {
	cfg := req.Config
	archivePath := paths.ArchivePath(req.DistRoot, target)

	// Presence of the output archive is the done marker for a target.
	if !req.Force {
		if _, err := os.Stat(archivePath); err == nil {
			for _, st := range []Stage{StageEnv, StageLibs, StageInstall, StagePackage} {
				emit(req.Sink, Event{Target: target, Stage: st, Status: StatusSkipped})
			}
			return StateDone, archivePath, nil
		}
	}

	if err := os.MkdirAll(paths.TargetDir(target), 0o755); err != nil {
		return StateFailed, "", err
	}
	logFile, err := os.OpenFile(paths.LogFile(target), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return StateFailed, "", err
	}
	defer logFile.Close()

	defer cleanup(req, paths, stamps, target)

	// Target environment bootstrap. The finished toolchain is its own
	// completion marker; the stamp guards against a half-built prefix
	// being taken for a finished one.
	envKey := stamp.Key(cfg.GCCVersion, target, string(StageEnv))
	envReady := !req.Force && stamps.Done(envKey) && exists(paths.ToolchainDir(target))
	if envReady {
		emit(req.Sink, Event{Target: target, Stage: StageEnv, Status: StatusSkipped})
	} else {
		if err := runStage(req, target, StageEnv, func() error {
			boot := &sysroot.Bootstrap{
				Paths:      paths,
				Runner:     req.Runner,
				GCCVersion: cfg.GCCVersion,
				Jobs:       cfg.Jobs,
				Log:        logFile,
			}
			return boot.Build(ctx, target)
		}); err != nil {
			return StateFailed, "", err
		}
		if err := stamps.Mark(envKey); err != nil {
			return StateFailed, "", err
		}
	}
	advance(StateEnvBootstrapped)

	if err := runStage(req, target, StageLibs, func() error {
		builder := &libbuild.Builder{
			Paths:      paths,
			Runner:     req.Runner,
			GCCVersion: cfg.GCCVersion,
			Jobs:       cfg.Jobs,
			Log:        logFile,
		}
		return builder.Build(ctx, target)
	}); err != nil {
		return StateFailed, "", err
	}
	advance(StateLibrariesBuilt)

	if err := runStage(req, target, StageInstall, func() error {
		return layout.Normalize(paths.StageDir(target), target, cfg.GCCVersion)
	}); err != nil {
		return StateFailed, "", err
	}
	advance(StateInstalled)

	if err := runStage(req, target, StagePackage, func() error {
		if err := archive.Strip(paths.StageDir(target)); err != nil {
			return err
		}
		return archive.Create(paths.StageDir(target), paths.ArchiveBase(target), archivePath)
	}); err != nil {
		return StateFailed, "", err
	}
	advance(StatePackaged)

	return StateDone, archivePath, nil
}

// cleanup removes the per-run configuration artifact unconditionally, and
// the transient directories unless keep-work is set. Purging on failure
// keeps retries from observing half-built state. It never touches the
// output archive.
func cleanup(req Request, paths workspace.Paths, stamps *stamp.File, target string) {
	start := time.Now()
	emit(req.Sink, Event{Target: target, Stage: StageCleanup, Status: StatusWorking})

	// The generated configuration must never leak into the next run.
	_ = os.Remove(paths.EnvConfig(target))

	if !req.Config.KeepWork {
		_ = os.RemoveAll(paths.TargetDir(target))
		_ = stamps.Clear(stamp.TargetPrefix(req.Config.GCCVersion, target))
	}

	emit(req.Sink, Event{Target: target, Stage: StageCleanup, Status: StatusDone, Elapsed: time.Since(start)})
}

// runStage wraps a stage body with progress events and phase timing.
func runStage(req Request, target string, stage Stage, body func() error) error {
	emit(req.Sink, Event{Target: target, Stage: stage, Status: StatusWorking})
	var idx int
	if req.Timer != nil {
		idx = req.Timer.Begin(target, string(stage))
	}
	start := time.Now()
	err := body()
	elapsed := time.Since(start)
	if req.Timer != nil {
		note := ""
		if err != nil {
			note = "failed"
		}
		req.Timer.End(idx, note)
	}
	if err != nil {
		emit(req.Sink, Event{Target: target, Stage: stage, Status: StatusError, Err: err, Elapsed: elapsed})
		return err
	}
	emit(req.Sink, Event{Target: target, Stage: stage, Status: StatusDone, Elapsed: elapsed})
	return nil
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// Discard is a sink that drops all events.
var Discard ProgressSink = discardSink{}

type discardSink struct{}

func (discardSink) OnEvent(Event) {}
