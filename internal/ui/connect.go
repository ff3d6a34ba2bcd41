package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stokerd/console/internal/conn"
	"github.com/stokerd/console/internal/protocol"
)

// handleConnectKey processes keyboard input for the connect view.
func (m Model) handleConnectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Selection and target edits are frozen while a connect is in flight.
	if m.setup.SelectionLocked() {
		return m, nil
	}

	if m.connectRow != 0 {
		return m.handleManualTargetKey(msg)
	}

	servers := m.reconciler.Servers()

	switch msg.String() {
	case "j", "down":
		if m.serverRow < len(servers)-1 {
			m.serverRow++
		}
	case "k", "up":
		if m.serverRow > 0 {
			m.serverRow--
		}
	case "g", "home":
		m.serverRow = 0
	case "G", "end":
		if len(servers) > 0 {
			m.serverRow = len(servers) - 1
		}
	case "tab", "m":
		m.connectRow = 1
		m.hostInput.Focus()
	case "enter":
		if len(servers) == 0 || !m.setup.CanConnect(true) {
			return m, nil
		}
		server := servers[m.serverRow]
		if err := m.reconciler.Select(server.FullName); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		if err := m.setup.Begin(); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.notice = "connecting to " + server.DisplayName()
		return m, connectCmd(m.ctx, m.dialer, server.SocketAddrs())
	}

	return m, nil
}

// handleManualTargetKey processes input while the host or port field is
// focused.
func (m Model) handleManualTargetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.connectRow = 0
		m.hostInput.Blur()
		m.portInput.Blur()
		return m, nil

	case "tab":
		if m.connectRow == 1 {
			m.connectRow = 2
			m.hostInput.Blur()
			m.portInput.Focus()
		} else {
			m.connectRow = 0
			m.portInput.Blur()
		}
		return m, nil

	case "shift+tab":
		if m.connectRow == 2 {
			m.connectRow = 1
			m.portInput.Blur()
			m.hostInput.Focus()
		} else {
			m.connectRow = 0
			m.hostInput.Blur()
		}
		return m, nil

	case "enter":
		return m.connectManual()
	}

	var cmd tea.Cmd
	if m.connectRow == 1 {
		m.hostInput, cmd = m.hostInput.Update(msg)
	} else {
		m.portInput, cmd = m.portInput.Update(msg)
	}
	return m, cmd
}

func (m Model) connectManual() (tea.Model, tea.Cmd) {
	host := strings.TrimSpace(m.hostInput.Value())
	portText := strings.TrimSpace(m.portInput.Value())

	if !conn.ValidManualTarget(host, portText) {
		m.notice = "host and port are both required"
		return m, nil
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port < 1 || port > 65535 {
		m.notice = "port must be a number between 1 and 65535"
		return m, nil
	}
	if !m.setup.CanConnect(true) {
		return m, nil
	}
	if err := m.setup.Begin(); err != nil {
		m.notice = err.Error()
		return m, nil
	}

	addr := protocol.JoinHostPort(host, port)
	m.notice = "connecting to " + addr
	return m, connectCmd(m.ctx, m.dialer, []string{addr})
}

// renderConnect renders the server selection view.
func (m Model) renderConnect() string {
	styles := m.theme.Styles()
	var b strings.Builder

	servers := m.reconciler.Servers()

	if m.snapshots == nil {
		b.WriteString(styles.MutedText.Render("discovery unavailable, use a manual target"))
		b.WriteString("\n\n")
	} else if len(servers) == 0 {
		b.WriteString(styles.MutedText.Render("searching for stokerd daemons on the network..."))
		b.WriteString("\n\n")
	} else {
		b.WriteString(styles.Text.Render("Discovered daemons"))
		b.WriteString("\n")
		for i, server := range servers {
			line := fmt.Sprintf("  %-24s %s",
				server.DisplayName(),
				strings.Join(server.SocketAddrs(), " "))
			line = truncate(line, m.width)
			if i == m.serverRow && m.connectRow == 0 {
				b.WriteString(styles.Selected.Render(line))
			} else {
				b.WriteString(styles.Text.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.MutedText.Render("Manual target"))
	b.WriteString("\n")
	b.WriteString("  " + m.hostInput.View())
	b.WriteString("\n")
	b.WriteString("  " + m.portInput.View())
	b.WriteString("\n")

	if m.setup.State() == conn.SetupConnecting {
		b.WriteString("\n")
		b.WriteString(styles.WarningText.Render("connecting..."))
		b.WriteString("\n")
	}
	if m.setup.State() == conn.SetupFailed && m.setup.LastError() != nil {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(truncate(m.setup.LastError().Error(), m.width-2)))
		b.WriteString("\n")
	}

	return b.String()
}
