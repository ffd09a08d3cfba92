// Package tui is the interactive inspector: a workflow picker, a run
// picker, and a job view whose detail pane shows the sections the parsing
// engine extracted from the job's log.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/runlens/runlens/internal/config"
	"github.com/runlens/runlens/internal/github"
	"github.com/runlens/runlens/internal/parser"
)

// sidebarWidth is the width of the job list panel when visible.
const sidebarWidth = 34

// screen identifies the active screen.
type screen int

const (
	screenWorkflows screen = iota
	screenRuns
	screenJob
)

// viewMode tracks modal state layered over the active screen.
type viewMode int

const (
	viewNormal viewMode = iota
	viewSearch      // workflow filter input focused
	viewConfirmBack // leaving the job view
	viewHelp
)

// scrollKey addresses the remembered scroll offset of one section of one job.
type scrollKey struct {
	jobID   int64
	section string
}

// Options configures the inspector.
type Options struct {
	Client        *github.Client
	Config        config.Config
	ConfigUpdates <-chan *config.Config

	// Entry point: a workflow to skip the picker, or a run to jump
	// straight to the job view.
	Workflow string
	RunID    int64
	RunURL   string
	Latest   bool
	JobID    int64

	Mouse bool
}

// Model is the root bubbletea model.
type Model struct {
	ctx      context.Context
	client   *github.Client
	cfg      config.Config
	updates  <-chan *config.Config
	registry *parser.Registry

	width  int
	height int

	screen   screen
	viewMode viewMode

	// Boot state, consumed once.
	bootRunID  int64
	bootRunURL string
	bootLatest bool
	pendingJob int64

	// Workflow picker
	workflows []github.Workflow
	filtered  []github.Workflow
	wfCursor  int
	search    textinput.Model

	// Run picker
	workflow  string
	runs      []github.Run
	runCursor int

	// Job view
	run        *github.Run
	jobs       []github.Job
	jobCursor  int
	sections   []parser.Section
	sectionIdx int
	viewport   viewport.Model
	showJobs   bool
	scrollMem  map[scrollKey]int
	logErr     error

	// UI state
	spinner       spinner.Model
	pending       int
	statusMessage string
	statusIsError bool
	lastUpdate    time.Time
	hoveredButton string
	zonePrefix    string
	quitting      bool
}

// Messages produced by commands.
type workflowsMsg struct {
	workflows []github.Workflow
	err       error
}

type runsMsg struct {
	runs []github.Run
	err  error
}

type runDerivedMsg struct {
	run *github.Run
	err error
}

type jobsMsg struct {
	jobs []github.Job
	err  error
}

type jobLogMsg struct {
	jobID    int64
	sections []parser.Section
	err      error
}

type copiedMsg struct {
	title string
	err   error
}

type configMsg config.Config

// Run starts the inspector and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	zone.NewGlobal()

	m := newModel(ctx, opts)

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Mouse {
		progOpts = append(progOpts, tea.WithMouseAllMotion())
	}
	p := tea.NewProgram(m, progOpts...)

	if _, err := p.Run(); err != nil {
		// A cancelled context is a normal shutdown, not a failure.
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func newModel(ctx context.Context, opts Options) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	search := textinput.New()
	search.Placeholder = "filter workflows"
	search.CharLimit = 80
	search.Width = 40

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = false

	scr := screenWorkflows
	switch {
	case opts.RunID != 0 || opts.RunURL != "" || opts.Latest:
		scr = screenJob
	case opts.Workflow != "":
		scr = screenRuns
	}

	return &Model{
		ctx:        ctx,
		client:     opts.Client,
		cfg:        opts.Config,
		updates:    opts.ConfigUpdates,
		registry:   parser.Default(opts.Config.Parser.MaxSlowRows()),
		width:      80,
		height:     24,
		screen:     scr,
		bootRunID:  opts.RunID,
		bootRunURL: opts.RunURL,
		bootLatest: opts.Latest,
		pendingJob: opts.JobID,
		workflow:   opts.Workflow,
		search:     search,
		viewport:   vp,
		scrollMem:  make(map[scrollKey]int),
		spinner:    s,
		lastUpdate: time.Now(),
		zonePrefix: zone.NewPrefix(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}

	switch m.screen {
	case screenJob:
		cmds = append(cmds, m.deriveRun())
	case screenRuns:
		cmds = append(cmds, m.loadRuns())
	default:
		cmds = append(cmds, m.loadWorkflows())
	}

	if m.updates != nil {
		cmds = append(cmds, m.waitForConfig())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(min(m.width-10, 60), 10)
		m.syncViewport()
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case workflowsMsg:
		m.pending--
		if msg.err != nil {
			m.setStatus("Error: "+msg.err.Error(), true)
			return m, nil
		}
		m.workflows = msg.workflows
		m.applyFilter()
		m.lastUpdate = time.Now()
		m.clearStatus()

	case runsMsg:
		m.pending--
		if msg.err != nil {
			m.setStatus("Error: "+msg.err.Error(), true)
			return m, nil
		}
		m.runs = msg.runs
		if m.runCursor >= len(m.runs) {
			m.runCursor = max(len(m.runs)-1, 0)
		}
		m.lastUpdate = time.Now()
		m.clearStatus()

	case runDerivedMsg:
		m.pending--
		if msg.err != nil {
			m.setStatus("Error: "+msg.err.Error(), true)
			return m, m.backFromJob()
		}
		m.run = msg.run
		m.clearStatus()
		cmds = append(cmds, m.loadJobs())

	case jobsMsg:
		m.pending--
		if msg.err != nil {
			m.setStatus("Error: "+msg.err.Error(), true)
			return m, nil
		}
		m.jobs = msg.jobs
		m.lastUpdate = time.Now()
		m.clearStatus()

		cursor := 0
		if m.pendingJob != 0 {
			for i, job := range m.jobs {
				if job.ID == m.pendingJob {
					cursor = i
					break
				}
			}
			m.pendingJob = 0
		} else if m.jobCursor < len(m.jobs) {
			cursor = m.jobCursor
		}
		if len(m.jobs) > 0 {
			cmds = append(cmds, m.selectJob(cursor))
			cmds = append(cmds, m.prefetchLogs())
		} else {
			m.sections = nil
			m.syncViewport()
		}

	case jobLogMsg:
		m.pending--
		// Drop results for a job the user has already moved away from.
		if len(m.jobs) == 0 || m.jobs[m.jobCursor].ID != msg.jobID {
			return m, nil
		}
		m.logErr = msg.err
		m.sections = msg.sections
		if m.sectionIdx >= len(m.sections) {
			m.sectionIdx = 0
		}
		m.lastUpdate = time.Now()
		m.syncViewport()

	case copiedMsg:
		if msg.err != nil {
			m.setStatus("Copy failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Copied "+msg.title, false)
		}

	case configMsg:
		m.cfg = config.Config(msg)
		m.registry = parser.Default(m.cfg.Parser.MaxSlowRows())
		m.setStatus("Configuration reloaded", false)
		cmds = append(cmds, m.waitForConfig())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// selectJob moves the job cursor, remembering the old scroll position and
// kicking off the log fetch for the new job.
func (m *Model) selectJob(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.jobs) {
		return nil
	}
	m.saveScroll()
	m.jobCursor = idx
	m.sections = nil
	m.logErr = nil
	m.sectionIdx = 0
	m.syncViewport()
	return m.loadJobLog(false)
}

// selectSection switches the active section tab.
func (m *Model) selectSection(idx int) {
	if idx < 0 || idx >= len(m.sections) || idx == m.sectionIdx {
		return
	}
	m.saveScroll()
	m.sectionIdx = idx
	m.syncViewport()
}

// backFromJob leaves the job view for the most sensible parent screen.
func (m *Model) backFromJob() tea.Cmd {
	m.viewMode = viewNormal
	m.run = nil
	m.jobs = nil
	m.sections = nil
	m.logErr = nil
	m.scrollMem = make(map[scrollKey]int)

	if len(m.runs) > 0 {
		m.screen = screenRuns
		return nil
	}
	if m.workflow != "" {
		m.screen = screenRuns
		return m.loadRuns()
	}
	m.screen = screenWorkflows
	if len(m.workflows) == 0 {
		return m.loadWorkflows()
	}
	return nil
}

func (m *Model) scrollKeyFor() (scrollKey, bool) {
	if len(m.jobs) == 0 || m.sectionIdx >= len(m.sections) {
		return scrollKey{}, false
	}
	return scrollKey{
		jobID:   m.jobs[m.jobCursor].ID,
		section: m.sections[m.sectionIdx].Title,
	}, true
}

func (m *Model) saveScroll() {
	if key, ok := m.scrollKeyFor(); ok {
		m.scrollMem[key] = m.viewport.YOffset
	}
}

// syncViewport resizes the viewport, rebuilds its content for the active
// section, and restores the remembered scroll offset.
func (m *Model) syncViewport() {
	detailWidth := m.width
	if m.showJobs {
		detailWidth -= sidebarWidth
	}
	m.viewport.Width = max(detailWidth, 1)
	// Header, job line, tab bar, and status bar each take a row.
	m.viewport.Height = max(m.height-4, 1)

	m.viewport.SetContent(m.detailContent())
	if key, ok := m.scrollKeyFor(); ok {
		if offset, remembered := m.scrollMem[key]; remembered {
			m.viewport.SetYOffset(offset)
			return
		}
	}
	m.viewport.SetYOffset(0)
}

// applyFilter recomputes the filtered workflow list from the search input.
func (m *Model) applyFilter() {
	pattern := m.search.Value()
	m.filtered = m.filtered[:0]
	for _, wf := range m.workflows {
		if fuzzyMatch(pattern, wf.Name) {
			m.filtered = append(m.filtered, wf)
		}
	}
	if m.wfCursor >= len(m.filtered) {
		m.wfCursor = max(len(m.filtered)-1, 0)
	}
}

func (m *Model) setStatus(message string, isError bool) {
	m.statusMessage = message
	m.statusIsError = isError
}

func (m *Model) clearStatus() {
	m.statusMessage = ""
	m.statusIsError = false
}

// currentJob returns the selected job, if any.
func (m *Model) currentJob() (github.Job, bool) {
	if len(m.jobs) == 0 || m.jobCursor >= len(m.jobs) {
		return github.Job{}, false
	}
	return m.jobs[m.jobCursor], true
}
