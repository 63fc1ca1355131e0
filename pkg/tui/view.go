package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/blackcoderx/pmsync/pkg/syncer"
)

// View renders the progress log followed by a status line.
func (m Model) View() string {
	var b strings.Builder

	for _, entry := range m.logs {
		b.WriteString(m.formatLogEntry(entry))
		b.WriteString("\n")
	}

	if m.done {
		return b.String()
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(StatusStyle.Render(stateLabel(m.state)))
	if m.status != "" {
		b.WriteString(HelpStyle.Render("  " + m.status))
	} else {
		b.WriteString(HelpStyle.Render("  ctrl+c to cancel"))
	}
	b.WriteString("\n")

	return b.String()
}

// formatLogEntry truncates an entry to the terminal width. Escape
// sequences and wide runes are measured in cells, not bytes.
func (m Model) formatLogEntry(entry logEntry) string {
	if m.width <= 0 {
		return entry.Content
	}
	return ansi.Truncate(entry.Content, m.width, "…")
}

func stateLabel(s syncer.State) string {
	switch s {
	case syncer.StateSyncingEnvironment:
		return "syncing environment"
	case syncer.StateSyncingCollection:
		return "syncing collection"
	case syncer.StateDone:
		return "done"
	case syncer.StateFailed:
		return "failed"
	default:
		return "starting"
	}
}
