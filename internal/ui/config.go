package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stokerd/console/internal/confedit"
	"github.com/stokerd/console/internal/protocol"
)

// Config form layout. Toggle rows flip a discriminant; input rows edit text.
const (
	cfgRowJavaKind = iota
	cfgRowJavaPath
	cfgRowJarPath
	cfgRowArgsKind
	cfgRowArgs
	cfgRowUserKind
	cfgRowUser
	cfgRowCount
)

// Text input indices within cfgInputs.
const (
	cfgInputJavaPath = iota
	cfgInputJarPath
	cfgInputArgs
	cfgInputUser
)

func configRowIsInput(row int) bool {
	switch row {
	case cfgRowJavaPath, cfgRowJarPath, cfgRowArgs, cfgRowUser:
		return true
	}
	return false
}

func configInputForRow(row int) int {
	switch row {
	case cfgRowJavaPath:
		return cfgInputJavaPath
	case cfgRowJarPath:
		return cfgInputJarPath
	case cfgRowArgs:
		return cfgInputArgs
	case cfgRowUser:
		return cfgInputUser
	}
	return -1
}

func (m *Model) initConfigInputs() {
	placeholders := [4]string{
		"/usr/bin/java",
		"/srv/minecraft/server.jar",
		"-Xmx4G -Xms1G",
		"minecraft",
	}
	for i := range m.cfgInputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 512
		m.cfgInputs[i] = in
	}
}

// seedConfigDefaults gives an unconfigured daemon's edit buffer usable
// discriminants so the first save is not rejected for a missing kind.
func (m *Model) seedConfigDefaults() {
	java := protocol.JavaAutoDetect
	user := protocol.UserCurrent
	args := protocol.ParsedArguments("")
	m.tracker.Edit(confedit.FieldUpdate{
		JavaPathKind: &java,
		UserKind:     &user,
		Arguments:    &args,
	})
}

// syncConfigForm refreshes the form inputs from the tracker buffer. Called
// after loads, remote pushes, and resets; typing flows the other way.
func (m *Model) syncConfigForm() {
	cfg, _ := m.tracker.Buffer()
	m.cfgInputs[cfgInputJavaPath].SetValue(cfg.JavaPath)
	m.cfgInputs[cfgInputJarPath].SetValue(cfg.ServerJarPath)
	m.cfgInputs[cfgInputArgs].SetValue(argumentsText(cfg.Arguments))
	m.cfgInputs[cfgInputUser].SetValue(cfg.User)
}

func argumentsText(a protocol.Arguments) string {
	if a.Kind == protocol.ArgumentsManual {
		return strings.Join(a.Manual, " ")
	}
	return a.Parsed
}

func argumentsFromText(kind protocol.ArgumentsKind, text string) protocol.Arguments {
	if kind == protocol.ArgumentsManual {
		return protocol.ManualArguments(strings.Fields(text)...)
	}
	return protocol.ParsedArguments(text)
}

// handleConfigKey processes keyboard input for the config editor.
func (m Model) handleConfigKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	typing := configRowIsInput(m.cfgFocus)

	switch msg.String() {
	case "esc":
		m.blurConfigInputs()
		m.currentView = ViewConsole
		return m, nil

	case "tab", "down":
		m.moveConfigFocus(1)
		return m, nil

	case "shift+tab", "up":
		m.moveConfigFocus(-1)
		return m, nil

	case "ctrl+s":
		return m.saveConfig()

	case "ctrl+r":
		m.tracker.Reset()
		m.syncConfigForm()
		m.notice = "edits discarded"
		return m, nil
	}

	if !typing {
		switch msg.String() {
		case "j":
			m.moveConfigFocus(1)
			return m, nil
		case "k":
			m.moveConfigFocus(-1)
			return m, nil
		case "enter", " ", "left", "right":
			m.toggleConfigKind()
			return m, nil
		}
		return m, nil
	}

	idx := configInputForRow(m.cfgFocus)
	var cmd tea.Cmd
	m.cfgInputs[idx], cmd = m.cfgInputs[idx].Update(msg)
	m.editFromInput(idx)
	return m, cmd
}

func (m *Model) moveConfigFocus(delta int) {
	m.blurConfigInputs()
	m.cfgFocus = (m.cfgFocus + delta + cfgRowCount) % cfgRowCount
	if idx := configInputForRow(m.cfgFocus); idx >= 0 {
		m.cfgInputs[idx].Focus()
	}
}

func (m *Model) blurConfigInputs() {
	for i := range m.cfgInputs {
		m.cfgInputs[i].Blur()
	}
}

// editFromInput pushes one input's text into the tracker buffer.
func (m *Model) editFromInput(idx int) {
	switch idx {
	case cfgInputJavaPath:
		v := m.cfgInputs[idx].Value()
		m.tracker.Edit(confedit.FieldUpdate{JavaPath: &v})
	case cfgInputJarPath:
		v := m.cfgInputs[idx].Value()
		m.tracker.Edit(confedit.FieldUpdate{ServerJarPath: &v})
	case cfgInputArgs:
		_, mask := m.tracker.Buffer()
		args := argumentsFromText(mask.Arguments, m.cfgInputs[idx].Value())
		m.tracker.Edit(confedit.FieldUpdate{Arguments: &args})
	case cfgInputUser:
		v := m.cfgInputs[idx].Value()
		m.tracker.Edit(confedit.FieldUpdate{User: &v})
	}
}

// toggleConfigKind flips the discriminant on the focused toggle row.
func (m *Model) toggleConfigKind() {
	_, mask := m.tracker.Buffer()

	switch m.cfgFocus {
	case cfgRowJavaKind:
		kind := protocol.JavaAutoDetect
		if mask.JavaPath == protocol.JavaAutoDetect {
			kind = protocol.JavaCustom
		}
		m.tracker.Edit(confedit.FieldUpdate{JavaPathKind: &kind})

	case cfgRowArgsKind:
		kind := protocol.ArgumentsParsed
		if mask.Arguments == protocol.ArgumentsParsed {
			kind = protocol.ArgumentsManual
		}
		// The payload follows the discriminant so the same text is
		// reinterpreted under the new kind.
		args := argumentsFromText(kind, m.cfgInputs[cfgInputArgs].Value())
		m.tracker.Edit(confedit.FieldUpdate{Arguments: &args})

	case cfgRowUserKind:
		kind := protocol.UserCurrent
		if mask.User == protocol.UserCurrent {
			kind = protocol.UserSpecific
		}
		m.tracker.Edit(confedit.FieldUpdate{UserKind: &kind})
	}
}

func (m Model) saveConfig() (tea.Model, tea.Cmd) {
	if m.client == nil {
		m.notice = "not connected"
		return m, nil
	}
	cfg, mask := m.tracker.Buffer()
	if err := cfg.Arguments.Validate(); err != nil {
		m.notice = "invalid arguments: " + err.Error()
		return m, nil
	}
	m.notice = "saving..."
	return m, saveConfigCmd(m.ctx, m.client, cfg, mask)
}

// renderConfig renders the config editor form.
func (m Model) renderConfig() string {
	styles := m.theme.Styles()
	_, mask := m.tracker.Buffer()
	var b strings.Builder

	title := "Server configuration"
	if m.tracker.Missing() {
		title = "Server configuration (daemon is unconfigured)"
	}
	b.WriteString(styles.AccentText.Render(title))
	if m.tracker.Dirty() {
		b.WriteString(" ")
		b.WriteString(styles.WarningText.Render("● unsaved"))
	}
	b.WriteString("\n\n")

	row := func(idx int, label, value string) {
		marker := "  "
		if m.cfgFocus == idx {
			marker = styles.AccentText.Render("> ")
		}
		b.WriteString(marker)
		b.WriteString(styles.MutedText.Render(label))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	row(cfgRowJavaKind, "java:     ", kindBadge(styles, string(mask.JavaPath)))
	if mask.JavaPath == protocol.JavaCustom {
		row(cfgRowJavaPath, "java path:", m.cfgInputs[cfgInputJavaPath].View())
	} else if m.cfgFocus == cfgRowJavaPath {
		row(cfgRowJavaPath, "java path:", styles.FaintText.Render("(auto-detected)"))
	}
	row(cfgRowJarPath, "jar path: ", m.cfgInputs[cfgInputJarPath].View())
	row(cfgRowArgsKind, "arguments:", kindBadge(styles, string(mask.Arguments)))
	row(cfgRowArgs, "          ", m.cfgInputs[cfgInputArgs].View())
	row(cfgRowUserKind, "run as:   ", kindBadge(styles, string(mask.User)))
	if mask.User == protocol.UserSpecific {
		row(cfgRowUser, "user:     ", m.cfgInputs[cfgInputUser].View())
	} else if m.cfgFocus == cfgRowUser {
		row(cfgRowUser, "user:     ", styles.FaintText.Render("(daemon user)"))
	}

	b.WriteString("\n")
	return b.String()
}

func kindBadge(styles Styles, kind string) string {
	return styles.Selected.Render(" " + kind + " ")
}
