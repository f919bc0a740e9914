package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current frame
func (m *Model) View() string {
	if !m.hasFrame {
		return fmt.Sprintf("\n %s Loading images...\n", m.spinner.View())
	}

	sections := []string{
		logoStyle.Render("runnotate"),
		m.renderPanel(),
		m.renderProgress(),
	}
	if m.showHelp {
		sections = append(sections, m.renderLegend())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for keys"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderPanel renders the image panel. Its border takes the overlay color of
// the current label so a labeled image is recognisable at a glance.
func (m *Model) renderPanel() string {
	f := m.frame

	label := legendTextStyle.Render("unlabeled")
	border := unlabeled
	if f.Labeled && f.Overlay != nil {
		hex := f.Overlay.Hex()
		label = labelStyle(hex).Render(f.Label)
		border = lipgloss.Color(hex)
	}

	rows := []string{
		titleStyle.Render(" " + f.Image.Name() + " "),
		"",
		row("ID", fmt.Sprintf("%d", f.Image.ID)),
		row("Position", fmt.Sprintf("%d / %d", f.Position+1, f.Total)),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Label"), label),
		m.renderInfo(),
	}

	style := panelStyle.BorderForeground(border)
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderInfo() string {
	info := m.info
	switch {
	case info.Err != nil:
		return fmt.Sprintf("%s %s", statsLabelStyle.Render("Image"), errorStyle.Render(info.Err.Error()))
	case info.Width == 0 && info.Size == 0:
		return row("Image", "...")
	default:
		return row("Image", fmt.Sprintf("%s %dx%d, %s", info.Format, info.Width, info.Height, FormatBytes(info.Size)))
	}
}

func row(label, value string) string {
	return fmt.Sprintf("%s %s", statsLabelStyle.Render(label), statsValueStyle.Render(value))
}

func (m *Model) renderProgress() string {
	f := m.frame
	percent := 0.0
	if f.Total > 0 {
		percent = float64(f.LabeledCount) / float64(f.Total)
	}
	if percent > 1 {
		// labels for images no longer in the directory still count in the store
		percent = 1
	}

	bar := m.progress.ViewAs(percent)
	counts := lipgloss.NewStyle().Foreground(GetProgressColor(percent * 100)).
		Render(fmt.Sprintf(" %d labeled", f.LabeledCount))
	return " " + bar + counts
}

func (m *Model) renderLegend() string {
	lines := make([]string, 0, len(m.legend))
	for _, e := range m.legend {
		lines = append(lines, fmt.Sprintf("%s %s", legendKeyStyle.Render(e.keys), legendTextStyle.Render(e.text)))
	}
	return helpStyle.Render(strings.Join(lines, "\n"))
}
