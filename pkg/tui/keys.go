package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg processes keyboard input. The only action is cancelling
// the run; the view quits once the run reports back.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		if m.cancel != nil {
			m.cancel()
		}
		m.status = "cancelling..."
		return m, nil
	default:
		return m, nil
	}
}
