package pipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageHostTool ensures the shared crosstool-NG installation.
	StageHostTool Stage = "host-tool"
	// StageEnv bootstraps the target sysroot and cross compiler.
	StageEnv Stage = "env"
	// StageLibs configures and builds the target libraries.
	StageLibs Stage = "libs"
	// StageInstall normalizes the staging tree after installation.
	StageInstall Stage = "install"
	// StagePackage strips the tree and emits the archive.
	StagePackage Stage = "package"
	// StageCleanup removes transient per-target state.
	StageCleanup Stage = "cleanup"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusWorking indicates the stage is currently running.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished successfully.
	StatusDone Status = "done"
	// StatusSkipped indicates the stage was satisfied by prior state.
	StatusSkipped Status = "skipped"
	// StatusError indicates the stage failed.
	StatusError Status = "error"
)

// Event reports progress for a target (or for the shared host tool when
// Target is empty).
type Event struct {
	Target  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// State is the per-target position in the pipeline state machine.
type State string

const (
	StateNotStarted      State = "NOT_STARTED"
	StateHostToolReady   State = "HOST_TOOL_READY"
	StateEnvBootstrapped State = "ENV_BOOTSTRAPPED"
	StateLibrariesBuilt  State = "LIBRARIES_BUILT"
	StateInstalled       State = "INSTALLED"
	StatePackaged        State = "PACKAGED"
	StateDone            State = "DONE"
	StateFailed          State = "FAILED"
)
