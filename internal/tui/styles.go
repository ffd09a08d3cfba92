package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles shared across all screens.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	appNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	hotkeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("247"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(1, 2).
			Background(lipgloss.Color("235"))

	helpStyle = lipgloss.NewStyle().
			Padding(2, 4).
			Background(lipgloss.Color("235"))

	// Run/job state indicators
	statusPending = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusRunning = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	statusSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	statusFailure = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// stateIcon returns the indicator for a run or job, combining the GitHub
// status with its conclusion once completed.
func stateIcon(status, conclusion string) string {
	if status != "completed" {
		switch status {
		case "in_progress":
			return statusRunning.Render("●")
		default:
			return statusPending.Render("○")
		}
	}
	switch conclusion {
	case "success":
		return statusSuccess.Render("✓")
	case "failure", "timed_out", "startup_failure":
		return statusFailure.Render("✗")
	case "cancelled":
		return dimStyle.Render("⊘")
	case "skipped":
		return dimStyle.Render("◌")
	default:
		return dimStyle.Render("?")
	}
}

// stateIconPlain returns the indicator without styling, for selected rows.
func stateIconPlain(status, conclusion string) string {
	if status != "completed" {
		if status == "in_progress" {
			return "●"
		}
		return "○"
	}
	switch conclusion {
	case "success":
		return "✓"
	case "failure", "timed_out", "startup_failure":
		return "✗"
	case "cancelled":
		return "⊘"
	case "skipped":
		return "◌"
	default:
		return "?"
	}
}

// styleHotkeys colors the keys inside brackets in text like "[r]efresh [q]uit".
func styleHotkeys(text string) string {
	var result strings.Builder
	i := 0
	for i < len(text) {
		if text[i] == '[' {
			end := i + 1
			for end < len(text) && text[end] != ']' {
				end++
			}
			if end < len(text) {
				key := text[i+1 : end]
				result.WriteString("[")
				result.WriteString(hotkeyStyle.Render(key))
				result.WriteString("]")
				i = end + 1
				continue
			}
		}
		result.WriteByte(text[i])
		i++
	}
	return result.String()
}

// styleButtonWithHover styles a clickable status bar button.
func styleButtonWithHover(text string, hovered bool) string {
	if hovered {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Bold(true).
			Render(text)
	}
	return styleHotkeys(text)
}
