package ui

import (
	"strings"

	"github.com/stokerd/console/internal/conn"
	"github.com/stokerd/console/internal/daemon"
)

// renderMain renders the full UI: header, command bar, then the active view.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	switch m.currentView {
	case ViewConnect:
		b.WriteString(m.renderConnect())
	case ViewConsole:
		b.WriteString(m.renderConsole())
	case ViewConfig:
		b.WriteString(m.renderConfig())
	}

	return b.String()
}

// renderHeader renders the top status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	parts := []string{styles.Logo.Render("stoker")}

	if m.mode == daemon.ModeLocal {
		parts = append(parts, styles.InfoText.Render("local"))
	} else {
		parts = append(parts, styles.MutedText.Render("remote"))
	}

	switch m.currentView {
	case ViewConnect:
		switch m.setup.State() {
		case conn.SetupConnecting:
			parts = append(parts, styles.WarningText.Render("connecting..."))
		case conn.SetupFailed:
			parts = append(parts, styles.DangerText.Render("connect failed"))
		default:
			parts = append(parts, styles.MutedText.Render("select a daemon"))
		}
	default:
		if server, ok := m.reconciler.Selected(); ok {
			parts = append(parts, styles.Text.Render(server.DisplayName()))
		} else if m.mode == daemon.ModeLocal {
			parts = append(parts, styles.Text.Render(m.socketPath))
		}
		if m.shuttingDown {
			parts = append(parts, styles.StatusStyle("shutting down").Render("shutting down"))
		}
	}

	if m.notice != "" {
		parts = append(parts, styles.WarningText.Render(truncate(m.notice, m.width/2)))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

// renderCommandBar renders the per-view key hints.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	var hints []string
	switch m.currentView {
	case ViewConnect:
		hints = []string{"j/k select", "enter connect", "tab manual target", "T theme", "h help", "e exit"}

	case ViewConsole:
		actions := m.actions()
		if actions.Start {
			hints = append(hints, "s start")
		}
		if actions.Stop {
			hints = append(hints, "x stop")
		}
		if actions.Restart {
			hints = append(hints, "r restart")
		}
		if m.link.State() == conn.LinkDisconnected {
			hints = append(hints, "R reconnect")
		}
		hints = append(hints, "i input", "c config", "C clear")
		if m.client != nil && m.client.Local() {
			hints = append(hints, "D shutdown daemon")
		}
		hints = append(hints, "h help", "e exit")

	case ViewConfig:
		hints = []string{"tab next field", "enter toggle", "ctrl+s save", "ctrl+r reset", "esc back"}
	}

	return styles.Footer.Width(m.width).Render(strings.Join(hints, "  •  "))
}
