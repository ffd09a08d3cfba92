package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/runlens/runlens/internal/github"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if m.viewMode == viewHelp {
		return zone.Scan(lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderHelp()))
	}
	if m.viewMode == viewConfirmBack {
		return zone.Scan(lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderConfirmBackDialog()))
	}

	var body string
	switch m.screen {
	case screenWorkflows:
		body = m.renderWorkflowPicker()
	case screenRuns:
		body = m.renderRunPicker()
	default:
		body = m.renderJobView()
	}
	body = fitHeight(body, m.height-2)

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusBar(),
	))
}

func (m *Model) renderHeader() string {
	app := appNameStyle.Render("runlens")
	repo := titleStyle.Render(m.client.Repo())

	var context string
	switch m.screen {
	case screenRuns:
		context = m.workflow
	case screenJob:
		if m.run != nil {
			context = fmt.Sprintf("%s • run #%d on %s", m.workflow, m.run.Number, m.run.Branch)
			if m.workflow == "" {
				context = fmt.Sprintf("run #%d on %s", m.run.Number, m.run.Branch)
			}
		} else {
			context = "resolving run"
		}
	}
	line := fmt.Sprintf("=== %s • %s ===", app, repo)
	if context != "" {
		line += " " + dimStyle.Render(context)
	}
	return line
}

func (m *Model) renderWorkflowPicker() string {
	var b strings.Builder

	if m.viewMode == viewSearch {
		b.WriteString("/" + m.search.View())
	} else if m.search.Value() != "" {
		b.WriteString(fmt.Sprintf("filter: %s  %s", m.search.Value(), dimStyle.Render("[/] edit")))
	} else {
		b.WriteString(dimStyle.Render("[/] filter  [enter] select"))
	}
	b.WriteString("\n\n")

	if len(m.filtered) == 0 {
		if m.pending > 0 {
			b.WriteString(m.spinner.View() + " Loading workflows...")
		} else if len(m.workflows) > 0 {
			b.WriteString(dimStyle.Render("No workflows match the filter"))
		} else {
			b.WriteString(dimStyle.Render("No workflows found in this repository"))
		}
		return b.String()
	}

	visible := max(m.height-6, 1)
	start, end := listWindow(m.wfCursor, len(m.filtered), visible)
	if start > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↑ %d more", start)) + "\n")
	}
	for i := start; i < end; i++ {
		wf := m.filtered[i]
		label := wf.Name
		if wf.State != "" && wf.State != "active" {
			label += " (" + wf.State + ")"
		}
		var row string
		if i == m.wfCursor {
			row = selectedStyle.Render(padRight("> "+label, min(m.width, 60)))
		} else {
			row = "  " + label
		}
		b.WriteString(zone.Mark(m.zonePrefix+fmt.Sprintf("wf-%d", i), row) + "\n")
	}
	if end < len(m.filtered) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ %d more", len(m.filtered)-end)) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderRunPicker() string {
	var b strings.Builder

	if len(m.runs) == 0 {
		if m.pending > 0 {
			b.WriteString(m.spinner.View() + " Loading runs...")
		} else {
			b.WriteString(dimStyle.Render("No runs found for this workflow"))
		}
		return b.String()
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-6s %-18s %-16s %-7s %s", "run", "branch", "created", "sha", "title")))
	b.WriteString("\n\n")

	visible := max(m.height-6, 1)
	start, end := listWindow(m.runCursor, len(m.runs), visible)
	if start > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↑ %d more", start)) + "\n")
	}
	for i := start; i < end; i++ {
		run := m.runs[i]
		plain := formatRunRow(run)
		var row string
		if i == m.runCursor {
			line := "> " + stateIconPlain(run.Status, run.Conclusion) + " " + plain
			row = selectedStyle.Render(padRight(ansi.Truncate(line, m.width, "..."), m.width))
		} else {
			icon := stateIcon(run.Status, run.Conclusion)
			row = "  " + icon + " " + ansi.Truncate(plain, max(m.width-4, 1), "...")
		}
		b.WriteString(zone.Mark(m.zonePrefix+fmt.Sprintf("run-%d", i), row) + "\n")
	}
	if end < len(m.runs) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ %d more", len(m.runs)-end)) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatRunRow lays out one run picker row without icon or styling.
func formatRunRow(run github.Run) string {
	branch := ansi.Truncate(run.Branch, 18, "...")
	return fmt.Sprintf("#%-5d %-18s %-16s %-7s %s",
		run.Number, branch, run.FormattedDate(), run.ShortSHA(), run.Title)
}

func (m *Model) renderJobView() string {
	detail := lipgloss.JoinVertical(lipgloss.Left,
		m.renderJobLine(),
		m.renderTabBar(),
		m.viewport.View(),
	)
	if !m.showJobs {
		return detail
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderJobSidebar(), detail)
}

func (m *Model) renderJobLine() string {
	job, ok := m.currentJob()
	if !ok {
		if m.pending > 0 {
			return m.spinner.View() + " Loading jobs..."
		}
		return dimStyle.Render("No jobs in this run")
	}

	icon := stateIcon(job.Status, job.Conclusion)
	name := titleStyle.Render(job.Name)
	info := fmt.Sprintf("(%s) • job %d/%d", job.DurationString(), m.jobCursor+1, len(m.jobs))
	return fmt.Sprintf("%s %s %s", icon, name, dimStyle.Render(info))
}

func (m *Model) renderTabBar() string {
	if len(m.sections) == 0 {
		if m.logErr != nil {
			return errorStyle.Render("log unavailable")
		}
		if m.pending > 0 {
			return dimStyle.Render("parsing...")
		}
		return dimStyle.Render("no sections")
	}

	sep := dimStyle.Render(" │ ")
	tabs := make([]string, len(m.sections))
	for i, sec := range m.sections {
		var tab string
		if i == m.sectionIdx {
			tab = activeTabStyle.Render(sec.Title)
		} else {
			tab = inactiveTabStyle.Render(sec.Title)
		}
		tabs[i] = zone.Mark(m.zonePrefix+fmt.Sprintf("tab-%d", i), tab)
	}
	return strings.Join(tabs, sep)
}

func (m *Model) renderJobSidebar() string {
	innerHeight := max(m.height-4, 1)
	innerWidth := sidebarWidth - 4

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Jobs (%d)", len(m.jobs))))
	b.WriteString("\n")

	visible := max(innerHeight-1, 1)
	start, end := listWindow(m.jobCursor, len(m.jobs), visible)
	for i := start; i < end; i++ {
		job := m.jobs[i]
		label := fmt.Sprintf("%s %s", job.Name, job.DurationString())
		var row string
		if i == m.jobCursor {
			line := "> " + stateIconPlain(job.Status, job.Conclusion) + " " + label
			row = selectedStyle.Render(padRight(ansi.Truncate(line, innerWidth, "..."), innerWidth))
		} else {
			icon := stateIcon(job.Status, job.Conclusion)
			row = "  " + icon + " " + ansi.Truncate(label, max(innerWidth-4, 1), "...")
		}
		b.WriteString(zone.Mark(m.zonePrefix+fmt.Sprintf("job-%d", i), row) + "\n")
	}

	return panelStyle.Width(sidebarWidth - 2).Height(innerHeight).Render(strings.TrimRight(b.String(), "\n"))
}

// detailContent builds the viewport content for the active section.
func (m *Model) detailContent() string {
	width := m.viewport.Width

	switch {
	case m.logErr != nil:
		return errorStyle.Render("Error fetching log") + "\n\n" +
			wordwrap.String(m.logErr.Error(), max(width-2, 10)) + "\n\n" +
			dimStyle.Render("[enter] retry  [r] refresh jobs")
	case len(m.sections) == 0:
		if m.pending > 0 {
			return dimStyle.Render("Loading...")
		}
		return dimStyle.Render("No log loaded")
	}

	sec := m.sections[m.sectionIdx]
	if len(sec.Rows) == 0 {
		return dimStyle.Render("(no entries)")
	}
	return clipLines(RenderSectionText(sec), width)
}

func (m *Model) renderStatusBar() string {
	labels := map[string]string{
		"/":     "[/]Filter",
		"r":     "[r]efresh",
		"?":     "[?]Help",
		"q":     "[q]uit",
		"esc":   "[Esc]Back",
		"F":     "[F]Jobs",
		"c":     "[c]opy",
		"enter": "[Enter]Refetch",
	}

	var commands, commandsPlain []string
	for _, btn := range m.statusBarButtons() {
		label := labels[btn]
		commands = append(commands, zone.Mark(m.zonePrefix+"btn-"+btn, styleButtonWithHover(label, m.hoveredButton == btn)))
		commandsPlain = append(commandsPlain, label)
	}
	left := strings.Join(commands, " ")
	leftPlain := strings.Join(commandsPlain, " ")

	var status, statusPlain string
	if m.statusMessage != "" {
		statusPlain = m.statusMessage
		if m.statusIsError {
			status = errorStyle.Render(m.statusMessage)
		} else {
			status = successStyle.Render(m.statusMessage)
		}
	} else if m.pending > 0 {
		statusPlain = "Loading..."
		status = m.spinner.View() + " Loading..."
	} else {
		statusPlain = "Updated: " + m.lastUpdate.Format("15:04:05")
		status = dimStyle.Render(statusPlain)
	}

	// Status bar has Padding(0, 1), so the content width is width-2.
	innerWidth := m.width - 2
	commandsWidth := ansi.StringWidth(leftPlain)
	statusWidth := ansi.StringWidth(statusPlain)

	available := max(innerWidth-commandsWidth-2, 0)
	if statusWidth > available {
		if available <= 3 {
			status = ""
			statusWidth = 0
		} else {
			statusPlain = ansi.Truncate(statusPlain, available, "...")
			statusWidth = ansi.StringWidth(statusPlain)
			if m.statusIsError {
				status = errorStyle.Render(statusPlain)
			} else if m.statusMessage != "" {
				status = successStyle.Render(statusPlain)
			} else {
				status = dimStyle.Render(statusPlain)
			}
		}
	}

	padding := max(innerWidth-commandsWidth-statusWidth, 2)
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + status)
}

func (m *Model) renderConfirmBackDialog() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Leave this run?"))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Scroll positions for its jobs will be forgotten."))
	b.WriteString("\n\n")
	b.WriteString(zone.Mark("dialog-yes", styleButtonWithHover("[y]es", false)))
	b.WriteString("  ")
	b.WriteString(zone.Mark("dialog-no", styleButtonWithHover("[n]o", false)))
	return dialogStyle.Render(b.String())
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("runlens"))
	b.WriteString("\n\n")

	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Pickers", [][2]string{
			{"j/k ↑/↓", "move"},
			{"g/G", "first/last"},
			{"/", "filter workflows"},
			{"enter", "select"},
			{"r", "refresh (bypass cache)"},
			{"esc", "back"},
		}},
		{"Job view", [][2]string{
			{"j/k", "next/previous job"},
			{"h/l ←/→", "previous/next section"},
			{"t/T", "cycle sections"},
			{"↑/↓ u/d", "scroll / half page"},
			{"g/G", "top/bottom"},
			{"F", "toggle job list"},
			{"c", "copy section to clipboard"},
			{"enter", "refetch log"},
			{"esc", "back to runs"},
		}},
		{"Global", [][2]string{
			{"?", "help"},
			{"q", "quit"},
		}},
	}

	for _, sec := range sections {
		b.WriteString(hotkeyStyle.Render(sec.title))
		b.WriteString("\n")
		for _, k := range sec.keys {
			fmt.Fprintf(&b, "  %-12s %s\n", k[0], dimStyle.Render(k[1]))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("press any key to close"))

	return helpStyle.Render(b.String())
}

// listWindow returns the half-open row range keeping the cursor visible.
func listWindow(cursor, total, visible int) (int, int) {
	if visible <= 0 || total <= 0 {
		return 0, 0
	}
	if total <= visible {
		return 0, total
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > total {
		end = total
		start = end - visible
	}
	return start, end
}

// clipLines truncates each line to the given width so long log lines
// never wrap and break the layout.
func clipLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if ansi.StringWidth(line) > width {
			lines[i] = ansi.Truncate(line, width, "...")
		}
	}
	return strings.Join(lines, "\n")
}

// fitHeight pads or truncates s to exactly height lines.
func fitHeight(s string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
