package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// updateKeys routes key input by modal state first, then by screen.
func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.viewMode {
	case viewHelp:
		m.viewMode = viewNormal
		return m, nil
	case viewConfirmBack:
		return m.updateConfirmBackKeys(msg)
	case viewSearch:
		return m.updateSearchKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.viewMode = viewHelp
		return m, nil
	}

	switch m.screen {
	case screenWorkflows:
		return m.updateWorkflowKeys(msg)
	case screenRuns:
		return m.updateRunKeys(msg)
	default:
		return m.updateJobKeys(msg)
	}
}

func (m *Model) updateSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		m.viewMode = viewNormal
		m.search.Blur()
		return m, nil
	case "esc":
		m.viewMode = viewNormal
		m.search.Blur()
		m.search.Reset()
		m.applyFilter()
		return m, nil
	case "up":
		if m.wfCursor > 0 {
			m.wfCursor--
		}
		return m, nil
	case "down":
		if m.wfCursor < len(m.filtered)-1 {
			m.wfCursor++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) updateWorkflowKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.wfCursor < len(m.filtered)-1 {
			m.wfCursor++
		}
	case "k", "up":
		if m.wfCursor > 0 {
			m.wfCursor--
		}
	case "g":
		m.wfCursor = 0
	case "G":
		m.wfCursor = max(len(m.filtered)-1, 0)
	case "/":
		m.viewMode = viewSearch
		m.search.Focus()
		return m, textinput.Blink
	case "enter":
		return m, m.openWorkflow(m.wfCursor)
	case "r":
		m.client.Refresh()
		return m, m.loadWorkflows()
	case "esc":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// openWorkflow moves to the run picker for the chosen workflow.
func (m *Model) openWorkflow(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.filtered) {
		return nil
	}
	m.workflow = m.filtered[idx].Name
	m.screen = screenRuns
	m.runs = nil
	m.runCursor = 0
	return m.loadRuns()
}

func (m *Model) updateRunKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.runCursor < len(m.runs)-1 {
			m.runCursor++
		}
	case "k", "up":
		if m.runCursor > 0 {
			m.runCursor--
		}
	case "g":
		m.runCursor = 0
	case "G":
		m.runCursor = max(len(m.runs)-1, 0)
	case "enter":
		return m, m.openRun(m.runCursor)
	case "r":
		m.client.Refresh()
		return m, m.loadRuns()
	case "esc":
		m.screen = screenWorkflows
		if len(m.workflows) == 0 {
			return m, m.loadWorkflows()
		}
	}
	return m, nil
}

// openRun moves to the job view for the chosen run.
func (m *Model) openRun(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.runs) {
		return nil
	}
	run := m.runs[idx]
	m.run = &run
	m.screen = screenJob
	m.jobs = nil
	m.jobCursor = 0
	m.sections = nil
	m.logErr = nil
	m.scrollMem = make(map[scrollKey]int)
	return m.loadJobs()
}

func (m *Model) updateJobKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j":
		if m.jobCursor < len(m.jobs)-1 {
			return m, m.selectJob(m.jobCursor + 1)
		}
	case "k":
		if m.jobCursor > 0 {
			return m, m.selectJob(m.jobCursor - 1)
		}
	case "h", "left":
		m.selectSection(m.sectionIdx - 1)
	case "l", "right":
		m.selectSection(m.sectionIdx + 1)
	case "t":
		if len(m.sections) > 0 {
			m.selectSection((m.sectionIdx + 1) % len(m.sections))
		}
	case "T":
		if len(m.sections) > 0 {
			m.selectSection((m.sectionIdx - 1 + len(m.sections)) % len(m.sections))
		}
	case "down":
		m.viewport.ScrollDown(1)
	case "up":
		m.viewport.ScrollUp(1)
	case "u":
		m.viewport.HalfViewUp()
	case "d":
		m.viewport.HalfViewDown()
	case "pgup":
		m.viewport.ViewUp()
	case "pgdown":
		m.viewport.ViewDown()
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	case "F":
		m.showJobs = !m.showJobs
		m.syncViewport()
	case "c":
		return m, m.copySection()
	case "enter":
		// Refetch the selected job's log, bypassing the cache.
		m.sections = nil
		m.logErr = nil
		m.syncViewport()
		return m, m.loadJobLog(true)
	case "r":
		m.client.Refresh()
		return m, m.loadJobs()
	case "esc":
		m.viewMode = viewConfirmBack
	}
	return m, nil
}

func (m *Model) updateConfirmBackKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "y", "enter":
		return m, m.backFromJob()
	case "n", "esc":
		m.viewMode = viewNormal
	}
	return m, nil
}
