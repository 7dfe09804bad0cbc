package components

import "github.com/charmbracelet/lipgloss"

// RenderBanner renders the shared header shown at the top of every screen.
func RenderBanner(styles Styles) string {
	return styles.Panel.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			styles.Title.Render("rootprobe"),
			styles.Muted.Render("Windows root store auto-install demonstration"),
		),
	)
}
