package ui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	colorPrimary = lipgloss.Color("#a78bfa")
	colorAccent  = lipgloss.Color("#f1a208")
	colorFg      = lipgloss.Color("#c0c0c0")
	colorMuted   = lipgloss.Color("#808080")
	colorSubtle  = lipgloss.Color("#585858")
	colorCursor  = lipgloss.Color("#303030")
	colorSuccess = lipgloss.Color("#42b883")
	colorError   = lipgloss.Color("#ff5555")
)

var (
	baseStyle    = lipgloss.NewStyle().Foreground(colorFg)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	subtleStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
	playingStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Background(colorCursor).Foreground(colorFg)
	likedStyle   = lipgloss.NewStyle().Foreground(colorAccent)
	taskStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)

	tabStyle       = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Padding(0, 1)

	barStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)
)
