package demo

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/druarnfield/rootprobe/internal/compare"
	"github.com/druarnfield/rootprobe/internal/tui/components"
)

// SummaryModel shows the final demonstration verdict and per-step detail.
type SummaryModel struct {
	styles components.Styles
	result compare.Result
	width  int
	height int
}

// NewSummaryModel creates a summary view.
func NewSummaryModel(styles components.Styles) SummaryModel {
	return SummaryModel{styles: styles}
}

// SetResult installs the demonstration result to display.
func (m SummaryModel) SetResult(result compare.Result) SummaryModel {
	m.result = result
	return m
}

// Init satisfies tea.Model.
func (m SummaryModel) Init() tea.Cmd {
	return nil
}

// Update handles key events.
func (m SummaryModel) Update(msg tea.Msg) (SummaryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// View renders the summary screen.
func (m SummaryModel) View() string {
	var b strings.Builder

	b.WriteString(components.RenderBanner(m.styles))
	b.WriteString("\n\n")

	verdict := m.result.Verdict()
	switch {
	case m.result.RootThumbprint == "":
		b.WriteString(m.styles.Error.Render(verdict))
	case m.result.AutoInstallObserved:
		b.WriteString(m.styles.Success.Render(verdict))
	default:
		b.WriteString(m.styles.Warning.Render(verdict))
	}
	b.WriteString("\n\n")

	if m.result.RootThumbprint != "" {
		b.WriteString(fmt.Sprintf("  Target: %s\n", m.result.Target))
		b.WriteString(fmt.Sprintf("  Root:   %s\n", m.result.RootSubject))
		b.WriteString(fmt.Sprintf("          %s\n", m.result.RootThumbprint))
		b.WriteString("\n")
	}

	for _, step := range m.result.Steps {
		icon := m.styles.Success.Render(m.styles.StatusDone)
		if !step.Match {
			icon = m.styles.Warning.Render(m.styles.StatusMismatch)
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", icon, step.Name))
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("      expected: %s", step.Expected)))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("      actual:   %s", step.Actual)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("  Press enter or q to exit"))

	return b.String()
}
