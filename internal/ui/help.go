package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the full-screen help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	var b strings.Builder

	section := func(title string, rows [][2]string) {
		b.WriteString(styles.AccentText.Render(title))
		b.WriteString("\n")
		for _, r := range rows {
			b.WriteString("  ")
			b.WriteString(styles.Text.Render(padRight(r[0], 14)))
			b.WriteString(styles.MutedText.Render(r[1]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.Logo.Render("stoker console"))
	b.WriteString("\n\n")

	section("Global", [][2]string{
		{"h, ?", "toggle this help"},
		{"T", "cycle theme"},
		{"e, ctrl+c", "exit"},
	})

	section("Connect", [][2]string{
		{"j/k", "select a discovered daemon"},
		{"enter", "connect to selection"},
		{"tab, m", "edit a manual host and port"},
	})

	section("Console", [][2]string{
		{"s / x / r", "start, stop, restart the server"},
		{"i", "type a command for the server"},
		{"c", "open the config editor"},
		{"C", "clear scrollback"},
		{"F", "toggle follow"},
		{"R", "reconnect after a lost link"},
		{"D", "shut down the daemon (local only)"},
	})

	section("Config editor", [][2]string{
		{"tab / j / k", "move between fields"},
		{"enter, space", "flip a field's mode"},
		{"ctrl+s", "save to the daemon"},
		{"ctrl+r", "discard edits"},
		{"esc", "back to console"},
	})

	b.WriteString(styles.FaintText.Render("press any key to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

// renderFatal renders the blocking daemon-fatal overlay.
func (m Model) renderFatal() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.DangerText.Render("daemon reported a fatal error"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(m.fatal))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("press any key to exit"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}
