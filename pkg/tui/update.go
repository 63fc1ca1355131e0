package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/blackcoderx/pmsync/pkg/syncer"
)

// runSyncAsync starts the run in a goroutine and forwards its events via
// the program, so the view stays responsive.
func runSyncAsync(ctx context.Context, run RunFunc, ref *programRef) tea.Cmd {
	return func() tea.Msg {
		go func() {
			callback := func(event syncer.Event) {
				ref.Send(syncEventMsg{event: event})
			}

			result, err := run(ctx, callback)
			ref.Send(syncDoneMsg{result: result, err: err})
		}()

		// Results arrive via program.Send
		return nil
	}
}

// Update handles all messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case syncEventMsg:
		return m.handleSyncEvent(msg), nil

	case syncDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleSyncEvent records an event in the log.
func (m Model) handleSyncEvent(msg syncEventMsg) Model {
	e := msg.event
	if e.Type == syncer.EventState {
		m.state = e.State
	}
	if line := FormatEvent(e); line != "" {
		m.logs = append(m.logs, logEntry{Type: e.Type, Content: line})
	}
	return m
}
