package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"crossforge/internal/pipeline"
	"crossforge/internal/ui"
)

type runOutcome struct {
	result *pipeline.Result
	err    error
}

// runPipelineWithUI runs the pipeline in a goroutine while a Bubble Tea
// program renders its event stream.
func runPipelineWithUI(ctx context.Context, title string, targets []string, req pipeline.Request) (*pipeline.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Sink = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(ctx, reqCopy)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, targets, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
