package cli

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// outcomeLabel renders an outcome word in its color.
func outcomeLabel(outcome string) string {
	switch outcome {
	case "success":
		return successStyle.Render("success")
	case "failed":
		return failStyle.Render("failed")
	case "skipped":
		return warnStyle.Render("skipped")
	default:
		return dimStyle.Render(outcome)
	}
}
