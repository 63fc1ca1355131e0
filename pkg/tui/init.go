package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/blackcoderx/pmsync/pkg/syncer"
)

func newModel(ctx context.Context, run RunFunc, cancel context.CancelFunc, ref *programRef) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = SpinnerStyle

	return Model{
		spinner: s,
		state:   syncer.StateNotStarted,
		width:   80,
		ctx:     ctx,
		run:     run,
		cancel:  cancel,
		ref:     ref,
	}
}

// Init starts the spinner and the sync.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, runSyncAsync(m.ctx, m.run, m.ref))
}
