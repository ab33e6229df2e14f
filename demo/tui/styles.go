package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent   = "#7D56F4"
	colorOK       = "#04B575"
	colorFailure  = "#FF0000"
	colorMuted    = "#626262"
	colorSelected = "#FAFAFA"
	colorSaved    = "#F2C94C"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent)).
			MarginTop(1)

	StatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorOK))

	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorFailure))

	InfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))

	// SavedStyle marks saved articles in the list
	SavedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorSaved))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorAccent)).
			Padding(0, 1)

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorSelected)).
			Background(lipgloss.Color(colorAccent))
)
