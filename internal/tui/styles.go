package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/statusbadge/internal/model"
)

// Terminal palette.
var (
	colorRed   = lipgloss.Color("#ef4444")
	colorGray  = lipgloss.Color("#6b7280")
	colorCyan  = lipgloss.Color("#06b6d4")
	colorWhite = lipgloss.Color("#f8fafc")
)

// StyleTitle is the summary heading.
var StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)

// Table styles.
var (
	StyleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorGray).
				Padding(0, 1)

	StyleTableCell = lipgloss.NewStyle().
			Foreground(colorWhite).
			Padding(0, 1)
)

// Utility styles.
var (
	StyleError   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim     = lipgloss.NewStyle().Foreground(colorGray)
	StyleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// StatusStyle returns a bold style in the badge's own dot color, so the
// terminal summary matches the rendered SVGs.
func StatusStyle(c model.Color) lipgloss.Style {
	if c == "" {
		return StyleDim
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(string(c)))
}
