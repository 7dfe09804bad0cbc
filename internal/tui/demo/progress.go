package demo

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/druarnfield/rootprobe/internal/compare"
	"github.com/druarnfield/rootprobe/internal/tui/components"
)

type stepState int

const (
	stepPending stepState = iota
	stepRunning
	stepMatched
	stepMismatched
)

type stepStatus struct {
	info   compare.StepInfo
	state  stepState
	actual string
}

// maxOutputLines bounds the probe output tail shown under the step list.
const maxOutputLines = 8

// ProgressModel shows the six demonstration steps as they execute,
// with a live tail of backend probe output.
type ProgressModel struct {
	styles      components.Styles
	spinner     spinner.Model
	explain     ExplainPanel
	showExplain bool

	target      string
	steps       []stepStatus
	currentStep int
	done        int
	output      []string
	width       int
	height      int
}

// NewProgressModel creates a progress view.
func NewProgressModel(styles components.Styles, showExplain bool) ProgressModel {
	return ProgressModel{
		styles:      styles,
		spinner:     components.NewSpinner(styles),
		explain:     NewExplainPanel(styles),
		showExplain: showExplain,
	}
}

// SetTarget records the host under demonstration for the header line.
func (m ProgressModel) SetTarget(target string) ProgressModel {
	m.target = target
	return m
}

// SetSteps installs the step plan before execution starts.
func (m ProgressModel) SetSteps(infos []compare.StepInfo) ProgressModel {
	m.steps = make([]stepStatus, len(infos))
	for i, info := range infos {
		m.steps[i] = stepStatus{info: info}
	}
	m.done = 0
	return m
}

// Init starts the spinner.
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m ProgressModel) Update(msg tea.Msg) (ProgressModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "?" {
			m.showExplain = !m.showExplain
			m.explain = m.explain.SetVisible(m.showExplain)
		}

	case StepStartMsg:
		if msg.Index < len(m.steps) {
			m.steps[msg.Index].state = stepRunning
			m.currentStep = msg.Index
			m.explain = m.explain.SetText(msg.Info.Explain).SetVisible(m.showExplain)
		}
		// A fresh step means any visible probe output is stale.
		m.output = nil

	case StepDoneMsg:
		if msg.Index < len(m.steps) {
			if msg.Result.Match {
				m.steps[msg.Index].state = stepMatched
			} else {
				m.steps[msg.Index].state = stepMismatched
			}
			m.steps[msg.Index].actual = msg.Result.Actual
			m.done++
		}

	case ProbeLineMsg:
		m.output = append(m.output, fmt.Sprintf("[%s] %s", msg.Line.Source, msg.Line.Text))
		if len(m.output) > maxOutputLines {
			m.output = m.output[len(m.output)-maxOutputLines:]
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.explain = m.explain.SetWidth(min(msg.Width-4, 70))
	}

	return m, tea.Batch(cmds...)
}

// View renders the progress screen.
func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(components.RenderBanner(m.styles))
	b.WriteString("\n\n")

	if m.target != "" {
		b.WriteString(m.styles.Title.Render(fmt.Sprintf("Probing %s", m.target)))
		b.WriteString("\n\n")
	}

	// Progress bar.
	if total := len(m.steps); total > 0 {
		pct := float64(m.done) / float64(total)
		barWidth := 20
		filled := int(pct * float64(barWidth))
		if filled > barWidth {
			filled = barWidth
		}

		bar := m.styles.ProgressFull.Render(strings.Repeat("█", filled)) +
			m.styles.ProgressEmpty.Render(strings.Repeat("░", barWidth-filled))

		b.WriteString(fmt.Sprintf("  Step %d/%d  %s  %d%%\n\n",
			m.done, total, bar, int(pct*100)))
	}

	// Step list.
	for _, s := range m.steps {
		icon := m.stepIcon(s)
		line := fmt.Sprintf("  %s %s", icon, s.info.Name)

		switch s.state {
		case stepMatched:
			line = m.styles.Success.Render(line)
		case stepMismatched:
			line = m.styles.Warning.Render(line)
		case stepRunning:
			line = m.styles.Body.Render(line)
		default:
			line = m.styles.Muted.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")

		if s.actual != "" {
			b.WriteString(m.styles.Muted.Render("      " + s.actual))
			b.WriteString("\n")
		}
	}

	// Probe output tail.
	if len(m.output) > 0 {
		b.WriteString("\n")
		for _, line := range m.output {
			b.WriteString(m.styles.Muted.Render("  " + line))
			b.WriteString("\n")
		}
	}

	// Explain panel.
	if panel := m.explain.View(); panel != "" {
		b.WriteString("\n")
		b.WriteString(panel)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("  ?: toggle explain"))

	return b.String()
}

func (m ProgressModel) stepIcon(s stepStatus) string {
	switch s.state {
	case stepMatched:
		return m.styles.StatusDone
	case stepMismatched:
		return m.styles.StatusMismatch
	case stepRunning:
		return m.spinner.View()
	default:
		return m.styles.StatusPending
	}
}
