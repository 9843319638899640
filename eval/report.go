package eval

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62")).
				MarginBottom(1)
	reportLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Width(18)
	reportValueStyle = lipgloss.NewStyle().Bold(true)
	reportBoxStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("238")).
				Padding(0, 2)
)

// Render formats the metrics as a styled terminal report.
func Render(m Metrics) string {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			reportLabelStyle.Render(label),
			reportValueStyle.Render(value))
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		reportTitleStyle.Render("Anonymization evaluation "+m.RunID),
		row("samples", fmt.Sprintf("%d", m.Samples)),
		row("true positives", fmt.Sprintf("%d", m.TruePositives)),
		row("false positives", fmt.Sprintf("%d", m.FalsePositives)),
		row("false negatives", fmt.Sprintf("%d", m.FalseNegatives)),
		row("precision", fmt.Sprintf("%.4f", m.Precision)),
		row("recall", fmt.Sprintf("%.4f", m.Recall)),
		row("f1", fmt.Sprintf("%.4f", m.F1)),
		row("fidelity", fmt.Sprintf("%.4f (%d/%d)", m.Fidelity, m.DeanonymOK, m.Samples)),
	)
	return reportBoxStyle.Render(body)
}
