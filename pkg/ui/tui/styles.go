package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonGreen   = lipgloss.Color("#39FF14")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonOrange  = lipgloss.Color("#FF6700")
	darkBg      = lipgloss.Color("#0A0E27")
	dimWhite    = lipgloss.Color("#B0B0B0")
	unlabeled   = lipgloss.Color("#444444")

	logoStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true).
			Padding(0, 1)

	// The border color is replaced per frame with the label's overlay color
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(unlabeled).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Background(neonMagenta).
			Foreground(darkBg).
			Bold(true).
			Padding(0, 1)

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true).
			Width(10)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(neonYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	legendKeyStyle = lipgloss.NewStyle().
			Foreground(neonGreen).
			Bold(true)

	legendTextStyle = lipgloss.NewStyle().
			Foreground(dimWhite)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(1, 0, 0, 2)
)

// labelStyle renders a label badge in its overlay color
func labelStyle(hex string) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(hex)).
		Foreground(darkBg).
		Bold(true).
		Padding(0, 1)
}

// GetProgressColor returns the color used for the labeled share of the sequence
func GetProgressColor(percentage float64) lipgloss.Color {
	switch {
	case percentage >= 80:
		return neonGreen
	case percentage >= 50:
		return neonYellow
	case percentage >= 30:
		return neonOrange
	default:
		return neonMagenta
	}
}
