// Package tui renders sync progress and results in the terminal.
//
// File organization:
// - app.go: Entry point (Run function)
// - model.go: Model struct and message types
// - init.go: Model initialization
// - update.go: Event handling and state updates
// - view.go: Rendering
// - keys.go: Keyboard input handling
// - styles.go: Visual styling
// - progress.go: One-line event formatting, shared with plain output
// - summary.go, highlight.go: Glamour rendering of results and diffs
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/blackcoderx/pmsync/pkg/syncer"
)

// RunFunc performs a sync, reporting progress through cb.
type RunFunc func(ctx context.Context, cb syncer.EventCallback) (*syncer.RunResult, error)

// Run shows a live progress view while run executes and returns its
// outcome once the view closes. Pressing ctrl+c cancels the run.
func Run(ctx context.Context, run RunFunc) (*syncer.RunResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ref := &programRef{}
	m := newModel(ctx, run, cancel, ref)
	prog := tea.NewProgram(m)

	// Store program reference for the sync goroutine to send messages
	ref.Set(prog)
	final, err := prog.Run()
	ref.Set(nil)

	if err != nil {
		return nil, fmt.Errorf("failed to run progress view: %w", err)
	}

	fm, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected progress model %T", final)
	}
	if !fm.done {
		return nil, context.Canceled
	}
	return fm.result, fm.err
}
