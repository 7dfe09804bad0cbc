package demo

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/druarnfield/rootprobe/internal/tui/components"
)

// TargetModel asks for the host to demonstrate against, pre-filled with
// the configured default.
type TargetModel struct {
	styles components.Styles
	input  textinput.Model
	width  int
	height int
}

// NewTargetModel creates the target entry screen.
func NewTargetModel(styles components.Styles, defaultTarget string) TargetModel {
	ti := textinput.New()
	ti.Placeholder = "hostname"
	ti.SetValue(defaultTarget)
	ti.CharLimit = 253
	ti.Width = 50
	ti.Focus()

	return TargetModel{
		styles: styles,
		input:  ti,
	}
}

// Target returns the current (trimmed) input value.
func (m TargetModel) Target() string {
	return strings.TrimSpace(m.input.Value())
}

// Init satisfies tea.Model.
func (m TargetModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key events for the target input.
func (m TargetModel) Update(msg tea.Msg) (TargetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter {
			target := m.Target()
			if target != "" {
				return m, func() tea.Msg { return TargetConfirmMsg{Target: target} }
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the target entry screen.
func (m TargetModel) View() string {
	var b strings.Builder

	b.WriteString(components.RenderBanner(m.styles))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Title.Render("Which host should be probed?"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Muted.Render("  A host whose chain ends in an untrusted root shows the effect best."))
	b.WriteString("\n\n  ")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Footer.Render("  enter: start  ctrl+c: quit"))

	return b.String()
}
