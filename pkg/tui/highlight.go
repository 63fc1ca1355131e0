package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// HighlightDiff renders a unified diff with syntax highlighting. If
// rendering fails, it returns the original string.
func HighlightDiff(diff string, width int) string {
	if strings.TrimSpace(diff) == "" {
		return diff
	}
	return renderMarkdown("```diff\n"+strings.TrimRight(diff, "\n")+"\n```", diff, width)
}

// renderMarkdown renders md with glamour, falling back to fallback.
func renderMarkdown(md, fallback string, width int) string {
	if width <= 0 {
		width = 100
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}

	out, err := renderer.Render(md)
	if err != nil {
		return fallback
	}
	return out
}

// RenderMarkdown renders md for the terminal, or returns it unchanged if
// rendering fails.
func RenderMarkdown(md string, width int) string {
	return renderMarkdown(md, md, width)
}
