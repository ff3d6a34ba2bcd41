package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stokerd/console/internal/conn"
	"github.com/stokerd/console/internal/daemon"
	"github.com/stokerd/console/internal/ops"
	"github.com/stokerd/console/internal/protocol"
)

// consoleHeight is the scrollback viewport height: total height minus the
// header, command bar, status line, and input line.
func (m Model) consoleHeight() int {
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// actions reports which lifecycle intents are enabled right now. Nothing is
// enabled before the first authoritative process state arrives or while the
// link is down.
func (m Model) actions() ops.Actions {
	if m.client == nil || !m.opsTracker.StateKnown() {
		return ops.Actions{}
	}
	if m.link.State() != conn.LinkConnected {
		return ops.Actions{}
	}
	return m.opsTracker.Actions(m.tracker.Missing())
}

func (m *Model) appendOutput(ev daemon.ConsoleOutput) {
	m.scrollback.Append(ev.Chunk)
	m.refreshConsoleView()
}

func (m *Model) refreshConsoleView() {
	if !m.ready {
		return
	}
	m.consoleView.SetContent(strings.Join(m.scrollback.Lines(), "\n"))
	if m.follow {
		m.consoleView.GotoBottom()
	}
}

// handleConsoleKey processes keys while the scrollback has focus.
func (m Model) handleConsoleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	actions := m.actions()

	switch msg.String() {
	case "i":
		m.inputFocused = true
		m.consoleInput.Focus()
		return m, nil

	case "c":
		m.currentView = ViewConfig
		m.cfgFocus = 0
		return m, nil

	case "s":
		if actions.Start {
			return m, operationCmd(m.ctx, m.client, protocol.OperationStart)
		}
		return m, nil

	case "x":
		if actions.Stop {
			return m, operationCmd(m.ctx, m.client, protocol.OperationStop)
		}
		return m, nil

	case "r":
		if actions.Restart {
			return m, operationCmd(m.ctx, m.client, protocol.OperationRestart)
		}
		return m, nil

	case "R":
		if m.link.State() == conn.LinkDisconnected && m.link.BeginReconnect() {
			m.notice = "reconnecting..."
			return m, m.reconnectCmd()
		}
		return m, nil

	case "D":
		// Only local clients may shut the daemon down; remote attempts
		// are refused by the daemon anyway, so do not offer them.
		if m.client != nil && m.client.Local() {
			m.notice = "shutting down daemon..."
			return m, shutdownCmd(m.ctx, m.client)
		}
		return m, nil

	case "C":
		m.scrollback.Clear()
		m.refreshConsoleView()
		return m, nil

	case "F":
		m.follow = !m.follow
		m.refreshConsoleView()
		return m, nil
	}

	// Remaining keys drive the viewport (j/k, pgup/pgdn, g/G).
	var cmd tea.Cmd
	m.consoleView, cmd = m.consoleView.Update(msg)
	m.follow = m.consoleView.AtBottom()
	return m, cmd
}

// handleConsoleInputKey processes keys while the command input has focus.
func (m Model) handleConsoleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputFocused = false
		m.consoleInput.Blur()
		return m, nil

	case "enter":
		line := m.consoleInput.Value()
		if strings.TrimSpace(line) == "" {
			return m, nil
		}
		if m.client == nil || m.link.State() != conn.LinkConnected {
			m.notice = "not connected"
			return m, nil
		}
		m.consoleInput.Reset()
		m.scrollback.AppendLine("> " + line)
		m.refreshConsoleView()
		return m, sendInputCmd(m.ctx, m.client, []byte(line+"\n"))
	}

	var cmd tea.Cmd
	m.consoleInput, cmd = m.consoleInput.Update(msg)
	return m, cmd
}

// renderConsole renders the scrollback, status line, and input line.
func (m Model) renderConsole() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(m.renderProcessStatus())
	b.WriteString("\n")
	b.WriteString(m.consoleView.View())
	b.WriteString("\n")

	if m.inputFocused {
		b.WriteString(m.consoleInput.View())
	} else {
		b.WriteString(styles.FaintText.Render("press i to type a server command"))
	}

	return b.String()
}

// renderProcessStatus renders the one-line process and link summary.
func (m Model) renderProcessStatus() string {
	styles := m.theme.Styles()
	var parts []string

	switch m.link.State() {
	case conn.LinkConnected:
		parts = append(parts, styles.StatusStyle("connected").Render("connected"))
	case conn.LinkDisconnected:
		parts = append(parts, styles.StatusStyle("disconnected").Render("disconnected"))
	case conn.LinkReconnecting:
		parts = append(parts, styles.StatusStyle("reconnecting").Render("reconnecting"))
	}

	if m.opsTracker.StateKnown() {
		state := m.opsTracker.State()
		label := string(state.Kind)
		parts = append(parts, styles.StatusStyle(label).Render(label))
		if state.Kind == protocol.ProcessStopped && state.Exit != protocol.ExitUnknown {
			label := "exit: " + string(state.Exit)
			parts = append(parts, styles.StatusStyle(string(state.Exit)).Render(label))
		}
	} else {
		parts = append(parts, styles.MutedText.Render("state unknown"))
	}

	if op, ok := m.opsTracker.InFlight(); ok {
		parts = append(parts, styles.StatusStyle(string(op)).Render(string(op)+" in flight"))
	}

	if m.tracker.Missing() {
		parts = append(parts, styles.WarningText.Render("no config, press c to create one"))
	}

	return strings.Join(parts, " ")
}
