package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atotto/clipboard"

	"github.com/runlens/runlens/internal/github"
)

// Command generators. Each captures what it needs before returning the
// closure so the running command never reads model state concurrently.

func (m *Model) loadWorkflows() tea.Cmd {
	m.pending++
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		workflows, err := client.Workflows(ctx)
		return workflowsMsg{workflows: workflows, err: err}
	}
}

func (m *Model) loadRuns() tea.Cmd {
	m.pending++
	ctx, client := m.ctx, m.client
	workflow := m.workflow
	limit := m.cfg.GitHub.GetRunLimit()
	status := m.cfg.GitHub.GetStatus()
	return func() tea.Msg {
		runs, err := client.Runs(ctx, workflow, limit, status)
		return runsMsg{runs: runs, err: err}
	}
}

// deriveRun resolves the boot run reference (explicit id, url, or latest
// run of the boot workflow).
func (m *Model) deriveRun() tea.Cmd {
	m.pending++
	ctx, client := m.ctx, m.client
	runID, runURL, workflow := m.bootRunID, m.bootRunURL, m.workflow
	status := m.cfg.GitHub.GetStatus()
	m.bootRunID, m.bootRunURL, m.bootLatest = 0, "", false
	return func() tea.Msg {
		run, err := client.DeriveRun(ctx, runID, runURL, workflow, status)
		return runDerivedMsg{run: run, err: err}
	}
}

func (m *Model) loadJobs() tea.Cmd {
	if m.run == nil {
		return nil
	}
	m.pending++
	ctx, client := m.ctx, m.client
	runID := m.run.ID
	return func() tea.Msg {
		jobs, err := client.Jobs(ctx, runID)
		return jobsMsg{jobs: jobs, err: err}
	}
}

// loadJobLog fetches the selected job's log and decomposes it into
// sections. force bypasses the cached copy.
func (m *Model) loadJobLog(force bool) tea.Cmd {
	job, ok := m.currentJob()
	if !ok || m.run == nil {
		return nil
	}
	m.pending++
	ctx, client := m.ctx, m.client
	runID := m.run.ID
	registry := m.registry
	return func() tea.Msg {
		var text string
		var err error
		if force {
			text, err = client.RefetchJobLog(ctx, runID, job)
		} else {
			text, err = client.JobLog(ctx, runID, job)
		}
		if err != nil {
			return jobLogMsg{jobID: job.ID, err: err}
		}
		sections, err := registry.Parse(text)
		if err != nil {
			return jobLogMsg{jobID: job.ID, err: err}
		}
		return jobLogMsg{jobID: job.ID, sections: sections}
	}
}

// prefetchLogs warms the log cache for the run's other jobs. Best effort,
// produces no message.
func (m *Model) prefetchLogs() tea.Cmd {
	if m.run == nil || len(m.jobs) == 0 {
		return nil
	}
	concurrency := m.cfg.GitHub.GetPrefetch()
	if concurrency <= 0 {
		return nil
	}
	ctx, client := m.ctx, m.client
	runID := m.run.ID
	snapshot := append([]github.Job(nil), m.jobs...)
	return func() tea.Msg {
		client.PrefetchLogs(ctx, runID, snapshot, concurrency)
		return nil
	}
}

// copySection puts the rendered active section on the system clipboard.
func (m *Model) copySection() tea.Cmd {
	if m.sectionIdx >= len(m.sections) {
		return nil
	}
	sec := m.sections[m.sectionIdx]
	text := RenderSectionText(sec)
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return copiedMsg{title: sec.Title, err: err}
		}
		return copiedMsg{title: sec.Title}
	}
}

// waitForConfig blocks on the next hot-reloaded configuration.
func (m *Model) waitForConfig() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		cfg, ok := <-updates
		if !ok || cfg == nil {
			return nil
		}
		return configMsg(*cfg)
	}
}
