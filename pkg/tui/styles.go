package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Minimal color palette
var (
	DimColor    = lipgloss.Color("#6c6c6c")
	TextColor   = lipgloss.Color("#e0e0e0")
	AccentColor = lipgloss.Color("#7aa2f7")
	ErrorColor  = lipgloss.Color("#f7768e")
	OkColor     = lipgloss.Color("#9ece6a")
	WarnColor   = lipgloss.Color("#e0af68")
)

// Progress line styles
var (
	StepStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true)

	LookupStyle = lipgloss.NewStyle().
			Foreground(DimColor)

	CreatedStyle = lipgloss.NewStyle().
			Foreground(OkColor)

	UpdatedStyle = lipgloss.NewStyle().
			Foreground(WarnColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	StatusStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(AccentColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(DimColor)
)

// Line prefixes
const (
	StepPrefix   = "● "
	DetailPrefix = "  "
	ErrorPrefix  = "✗ "
	OkPrefix     = "✓ "
)
