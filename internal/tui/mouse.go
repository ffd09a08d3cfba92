package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

// updateMouse handles wheel scrolling, button hover, and clicks on the
// zones marked during rendering.
func (m *Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.viewMode == viewConfirmBack {
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if zone.Get("dialog-yes").InBounds(msg) {
				return m, m.backFromJob()
			}
			if zone.Get("dialog-no").InBounds(msg) {
				m.viewMode = viewNormal
			}
		}
		return m, nil
	}
	if m.viewMode == viewHelp {
		if msg.Action == tea.MouseActionPress {
			m.viewMode = viewNormal
		}
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.wheel(-1)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.wheel(1)
		return m, nil
	}

	if msg.Action == tea.MouseActionMotion {
		m.hoveredButton = m.detectStatusButton(msg)
		return m, nil
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if btn := m.detectStatusButton(msg); btn != "" {
			return m.pressButton(btn)
		}

		switch m.screen {
		case screenWorkflows:
			for i := range m.filtered {
				if zone.Get(m.zonePrefix + fmt.Sprintf("wf-%d", i)).InBounds(msg) {
					m.wfCursor = i
					return m, m.openWorkflow(i)
				}
			}
		case screenRuns:
			for i := range m.runs {
				if zone.Get(m.zonePrefix + fmt.Sprintf("run-%d", i)).InBounds(msg) {
					m.runCursor = i
					return m, m.openRun(i)
				}
			}
		case screenJob:
			for i := range m.sections {
				if zone.Get(m.zonePrefix + fmt.Sprintf("tab-%d", i)).InBounds(msg) {
					m.selectSection(i)
					return m, nil
				}
			}
			if m.showJobs {
				for i := range m.jobs {
					if zone.Get(m.zonePrefix + fmt.Sprintf("job-%d", i)).InBounds(msg) {
						return m, m.selectJob(i)
					}
				}
			}
		}
	}

	return m, nil
}

// wheel scrolls the detail pane on the job view and moves the cursor on
// the pickers.
func (m *Model) wheel(dir int) {
	switch m.screen {
	case screenJob:
		if dir < 0 {
			m.viewport.ScrollUp(3)
		} else {
			m.viewport.ScrollDown(3)
		}
	case screenRuns:
		m.runCursor = clamp(m.runCursor+dir, 0, max(len(m.runs)-1, 0))
	default:
		m.wfCursor = clamp(m.wfCursor+dir, 0, max(len(m.filtered)-1, 0))
	}
}

// statusBarButtons lists the clickable button ids of the active screen,
// in display order.
func (m *Model) statusBarButtons() []string {
	switch m.screen {
	case screenWorkflows:
		return []string{"/", "r", "?", "q"}
	case screenRuns:
		return []string{"r", "esc", "?", "q"}
	default:
		return []string{"F", "c", "enter", "r", "esc", "?", "q"}
	}
}

func (m *Model) detectStatusButton(msg tea.MouseMsg) string {
	for _, btn := range m.statusBarButtons() {
		if zone.Get(m.zonePrefix + "btn-" + btn).InBounds(msg) {
			return btn
		}
	}
	return ""
}

// pressButton triggers the action behind a status bar button, mirroring
// the keyboard path.
func (m *Model) pressButton(btn string) (tea.Model, tea.Cmd) {
	key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(btn)}
	switch btn {
	case "esc":
		key = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		key = tea.KeyMsg{Type: tea.KeyEnter}
	}
	return m.updateKeys(key)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
