// Package demo is the interactive front end for the demonstration
// protocol: target entry, live step progress, final verdict. The
// protocol itself lives in compare; this package only renders it.
package demo

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/druarnfield/rootprobe/internal/compare"
	"github.com/druarnfield/rootprobe/internal/tui/components"
)

type screen int

const (
	screenTarget screen = iota
	screenProgress
	screenSummary
)

// Model is the top-level tea.Model coordinating target → progress → summary.
type Model struct {
	styles   components.Styles
	screen   screen
	target   TargetModel
	progress ProgressModel
	summary  SummaryModel

	factory Factory
	bridge  *Bridge
	result  *compare.Result

	width    int
	height   int
	quitting bool
}

// New creates a Model ready to display the target entry screen.
func New(factory Factory, defaultTarget string, showExplain bool) Model {
	styles := components.DefaultStyles()
	return Model{
		styles:   styles,
		screen:   screenTarget,
		target:   NewTargetModel(styles, defaultTarget),
		progress: NewProgressModel(styles, showExplain),
		summary:  NewSummaryModel(styles),
		factory:  factory,
	}
}

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd {
	return m.target.Init()
}

// Update handles messages and delegates to the active screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Propagate to children.
		m.target, _ = m.target.Update(msg)
		m.progress, _ = m.progress.Update(msg)
		m.summary, _ = m.summary.Update(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.bridge != nil {
				m.bridge.Cancel()
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	switch m.screen {
	case screenTarget:
		return m.updateTarget(msg)
	case screenProgress:
		return m.updateProgress(msg)
	case screenSummary:
		return m.updateSummary(msg)
	}

	return m, nil
}

// View renders the active screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenTarget:
		return m.target.View()
	case screenProgress:
		return m.progress.View()
	case screenSummary:
		return m.summary.View()
	}
	return ""
}

func (m Model) updateTarget(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case TargetConfirmMsg:
		m.screen = screenProgress

		m.bridge = NewBridge(m.factory, msg.Target)
		m.progress = m.progress.
			SetTarget(msg.Target).
			SetSteps(m.bridge.Steps())

		return m, tea.Batch(m.bridge.Start(), m.progress.Init())

	default:
		m.target, cmd = m.target.Update(msg)
	}

	return m, cmd
}

func (m Model) updateProgress(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case DoneMsg:
		m.screen = screenSummary
		m.result = &msg.Result
		m.summary = m.summary.SetResult(msg.Result)
		return m, nil

	case StepStartMsg, StepDoneMsg, ProbeLineMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		cmds = append(cmds, cmd)
		// Request next message from bridge.
		if m.bridge != nil {
			cmds = append(cmds, m.bridge.NextMsg())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateSummary(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.summary, cmd = m.summary.Update(msg)
	return m, cmd
}

// Result returns the demonstration result once the run has finished.
func (m Model) Result() (compare.Result, bool) {
	if m.result == nil {
		return compare.Result{}, false
	}
	return *m.result, true
}

// Screen returns the current screen (for testing).
func (m Model) Screen() screen {
	return m.screen
}
