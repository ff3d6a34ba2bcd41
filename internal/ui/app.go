package ui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stokerd/console/internal/confedit"
	"github.com/stokerd/console/internal/conn"
	"github.com/stokerd/console/internal/console"
	"github.com/stokerd/console/internal/daemon"
	"github.com/stokerd/console/internal/discovery"
	"github.com/stokerd/console/internal/ops"
	"github.com/stokerd/console/internal/prefs"
	"github.com/stokerd/console/internal/protocol"
)

// View represents the current active view.
type View int

const (
	ViewConnect View = iota
	ViewConsole
	ViewConfig
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Mode       daemon.Mode
	Dialer     daemon.Dialer
	Prefs      prefs.Prefs
	PrefsPath  string
	SocketPath string

	// Snapshots delivers discovery snapshots; nil in Local mode.
	Snapshots <-chan map[string]protocol.ServerInfo

	Logger *slog.Logger
}

// clearedFlag survives model copies so the reconciler callback can reach
// the update loop.
type clearedFlag struct {
	n int
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx        context.Context
	mode       daemon.Mode
	dialer     daemon.Dialer
	prefs      prefs.Prefs
	prefsPath  string
	socketPath string
	logger     *slog.Logger

	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Discovery
	snapshots  <-chan map[string]protocol.ServerInfo
	reconciler *discovery.Reconciler
	cleared    *clearedFlag
	serverRow  int
	hostInput  textinput.Model
	portInput  textinput.Model
	connectRow int // 0 = server list, 1 = host input, 2 = port input

	// Session
	setup        conn.Setup
	link         *conn.Supervisor
	client       *daemon.Client
	events       <-chan daemon.Event
	cancelEvents func()
	endpoints    []string

	// Daemon state
	tracker    confedit.Tracker
	opsTracker ops.Tracker

	// Console view
	scrollback   *console.Buffer
	consoleView  viewport.Model
	consoleInput textinput.Model
	inputFocused bool
	follow       bool

	// Config editor
	cfgInputs [4]textinput.Model // java path, jar path, arguments, user
	cfgFocus  int                // form row index, see form layout in config.go

	notice       string
	fatal        string
	shuttingDown bool
	showHelp     bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	scrollbackLines := opts.Prefs.ScrollbackLines

	m := Model{
		ctx:        ctx,
		mode:       opts.Mode,
		dialer:     opts.Dialer,
		prefs:      opts.Prefs,
		prefsPath:  prefsPath,
		socketPath: opts.SocketPath,
		logger:     logger,

		theme:       GetTheme(opts.Prefs.Theme),
		currentView: ViewConnect,

		snapshots: opts.Snapshots,
		cleared:   &clearedFlag{},

		link:       conn.NewSupervisor(),
		scrollback: console.NewBuffer(scrollbackLines),
		follow:     true,
	}
	m.reconciler = discovery.NewReconciler(func() { m.cleared.n++ })

	m.hostInput = textinput.New()
	m.hostInput.Placeholder = "host"
	m.hostInput.CharLimit = 253
	m.portInput = textinput.New()
	m.portInput.Placeholder = "port"
	m.portInput.CharLimit = 5

	m.consoleInput = textinput.New()
	m.consoleInput.Placeholder = "server command"

	m.initConfigInputs()

	// Local daemons and remembered endpoints connect without a selection
	// step.
	if m.mode == daemon.ModeLocal || len(m.prefs.LastEndpoints) > 0 {
		_ = m.setup.Begin()
	}

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}

	if m.snapshots != nil {
		cmds = append(cmds, waitSnapshotCmd(m.snapshots))
	}

	if m.mode == daemon.ModeLocal {
		cmds = append(cmds, connectLocalCmd(m.ctx, m.dialer, m.socketPath))
	} else if len(m.prefs.LastEndpoints) > 0 {
		cmds = append(cmds, connectCmd(m.ctx, m.dialer, m.prefs.LastEndpoints))
	}

	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.consoleView = viewport.New(msg.Width, m.consoleHeight())
			m.ready = true
		} else {
			m.consoleView.Width = msg.Width
			m.consoleView.Height = m.consoleHeight()
		}
		m.refreshConsoleView()
		return m, nil

	case snapshotMsg:
		return m.handleSnapshot(msg)

	case snapshotClosedMsg:
		m.snapshots = nil
		return m, nil

	case connectResultMsg:
		return m.handleConnectResult(msg)

	case reconnectResultMsg:
		return m.handleReconnectResult(msg)

	case eventMsg:
		return m.handleEvent(msg)

	case configLoadedMsg:
		return m.handleConfigLoaded(msg)

	case processStateMsg:
		if msg.err != nil {
			m.notice = "process state: " + msg.err.Error()
			return m, nil
		}
		m.opsTracker.ProcessStateUpdated(msg.state)
		return m, nil

	case saveResultMsg:
		return m.handleSaveResult(msg)

	case opAckMsg:
		if msg.err != nil {
			m.notice = string(msg.op) + " refused: " + msg.err.Error()
		}
		return m, nil

	case inputSentMsg:
		if msg.err != nil {
			m.notice = "input: " + msg.err.Error()
		}
		return m, nil

	case shutdownResultMsg:
		if msg.err != nil {
			m.notice = "shutdown: " + msg.err.Error()
			return m, nil
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.fatal != "" {
		return m.renderFatal()
	}
	return m.renderMain()
}

// handleKey routes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.fatal != "" {
		// Fatal overlay: any key quits.
		return m, tea.Quit
	}

	// Text entry swallows everything except its own controls.
	if m.typing() {
		return m.handleTypingKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "e":
		return m, tea.Quit

	case "h", "?":
		m.showHelp = true
		return m, nil

	case "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		_ = prefs.Save(m.prefsPath, m.prefs)
		return m, nil
	}

	switch m.currentView {
	case ViewConnect:
		return m.handleConnectKey(msg)
	case ViewConsole:
		return m.handleConsoleKey(msg)
	case ViewConfig:
		return m.handleConfigKey(msg)
	}

	return m, nil
}

// typing reports whether a text input currently owns the keyboard.
func (m Model) typing() bool {
	switch m.currentView {
	case ViewConnect:
		return m.connectRow != 0
	case ViewConsole:
		return m.inputFocused
	case ViewConfig:
		return configRowIsInput(m.cfgFocus)
	}
	return false
}

func (m Model) handleTypingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.currentView {
	case ViewConnect:
		return m.handleConnectKey(msg)
	case ViewConsole:
		return m.handleConsoleInputKey(msg)
	case ViewConfig:
		return m.handleConfigKey(msg)
	}
	return m, nil
}

func (m Model) handleSnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	m.reconciler.ApplySnapshot(map[string]protocol.ServerInfo(msg))
	if m.cleared.n > 0 {
		m.cleared.n = 0
		m.notice = "selected server disappeared from the network"
	}
	if n := len(m.reconciler.Servers()); m.serverRow >= n {
		m.serverRow = 0
	}
	return m, waitSnapshotCmd(m.snapshots)
}

func (m Model) handleConnectResult(msg connectResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setup.Fail(msg.err)
		m.notice = "connect failed: " + msg.err.Error()
		m.logger.Warn("connect failed", "error", msg.err)
		return m, nil
	}

	m.setup.Succeed()
	m.notice = ""
	m.adoptSession(msg.client, msg.endpoints)
	m.currentView = ViewConsole

	cmds := []tea.Cmd{
		waitEventCmd(m.events),
		loadConfigCmd(m.ctx, m.client),
		loadProcessCmd(m.ctx, m.client),
	}

	if !msg.client.Local() && len(msg.endpoints) > 0 {
		m.prefs = prefs.RememberEndpoints(m.prefsPath, m.prefs, msg.endpoints)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleReconnectResult(msg reconnectResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.link.ReconnectFailed()
		m.notice = "reconnect failed, press R to retry: " + msg.err.Error()
		m.logger.Warn("reconnect failed", "error", msg.err)
		return m, nil
	}

	m.link.ReconnectSucceeded()
	m.notice = "reconnected"
	m.adoptSession(msg.client, m.endpoints)

	return m, tea.Batch(
		waitEventCmd(m.events),
		loadConfigCmd(m.ctx, m.client),
		loadProcessCmd(m.ctx, m.client),
	)
}

func (m Model) handleEvent(msg eventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		// Subscription channel closed; the session already announced its
		// fate (failure or shutdown), nothing more to wait for.
		return m, nil
	}

	requeue := waitEventCmd(m.events)

	switch ev := msg.event.(type) {
	case daemon.ConfigChanged:
		m.tracker.RemoteChanged(ev.Config, ev.Mask)
		m.syncConfigForm()

	case daemon.ProcessStateUpdated:
		m.opsTracker.ProcessStateUpdated(ev.State)

	case daemon.OperationRequested:
		m.opsTracker.OperationRequested(ev.Operation)

	case daemon.OperationPerformed:
		m.opsTracker.OperationPerformed(ev.Operation)
		m.notice = ev.Operation.Verb() + " completed"

	case daemon.OperationFailed:
		m.opsTracker.OperationFailed(ev.Operation, ev.Message)
		m.notice = ev.Operation.Verb() + " failed: " + ev.Message

	case daemon.ConsoleOutput:
		m.appendOutput(ev)

	case daemon.FatalError:
		m.fatal = ev.Message

	case daemon.ShuttingDown:
		m.shuttingDown = true
		m.teardownSession()
		if m.mode == daemon.ModeLocal {
			return m, tea.Quit
		}
		m.notice = "daemon is shutting down"
		m.currentView = ViewConnect
		m.setup = conn.Setup{}
		return m, nil

	case daemon.ConnectionFailure:
		m.teardownSession()
		m.link.ConnectionFailure()
		m.notice = "connection to daemon lost"
		m.logger.Warn("connection lost")
		if m.link.BeginReconnect() {
			return m, m.reconnectCmd()
		}
		return m, nil
	}

	return m, requeue
}

func (m Model) handleConfigLoaded(msg configLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.notice = "load config: " + msg.err.Error()
		return m, nil
	}
	_ = m.tracker.Load(m.ctx, remoteResult{cfg: msg.cfg, mask: msg.mask})
	if m.tracker.Missing() {
		m.seedConfigDefaults()
	}
	m.syncConfigForm()
	return m, nil
}

func (m Model) handleSaveResult(msg saveResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.notice = "save failed: " + msg.err.Error()
		return m, nil
	}
	m.tracker.Acknowledge(msg.cfg, msg.mask)
	m.notice = "config saved"
	if m.tracker.Dirty() {
		m.notice = "config saved, unsaved edits remain"
	}
	return m, nil
}

// adoptSession installs a freshly dialed client.
func (m *Model) adoptSession(c *daemon.Client, endpoints []string) {
	m.client = c
	m.endpoints = endpoints
	m.link = conn.NewSupervisor()
	m.events, m.cancelEvents = c.Subscribe()
	m.opsTracker = ops.Tracker{}
	m.tracker = confedit.Tracker{}
	m.shuttingDown = false
}

// teardownSession releases the subscription and the client.
func (m *Model) teardownSession() {
	if m.cancelEvents != nil {
		m.cancelEvents()
		m.cancelEvents = nil
	}
	if m.client != nil {
		_ = m.client.Close()
		m.client = nil
	}
	m.events = nil
}

func (m *Model) reconnectCmd() tea.Cmd {
	if m.mode == daemon.ModeLocal {
		return reconnectLocalCmd(m.ctx, m.dialer, m.socketPath)
	}
	return reconnectRemoteCmd(m.ctx, m.dialer, m.endpoints)
}

// remoteResult replays an already-completed facade exchange into the
// tracker, keeping all tracker mutation on the update loop.
type remoteResult struct {
	cfg  *protocol.ResolvedConfig
	mask *protocol.ConfigMask
	err  error
}

func (r remoteResult) GetConfig(context.Context) (*protocol.ResolvedConfig, *protocol.ConfigMask, error) {
	return r.cfg, r.mask, r.err
}

func (r remoteResult) UpdateConfig(context.Context, protocol.ResolvedConfig, protocol.ConfigMask) error {
	return r.err
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	return err
}
