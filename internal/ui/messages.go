package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stokerd/console/internal/daemon"
	"github.com/stokerd/console/internal/protocol"
)

// Messages

type snapshotMsg map[string]protocol.ServerInfo

type snapshotClosedMsg struct{}

type connectResultMsg struct {
	client    *daemon.Client
	endpoints []string
	err       error
}

type reconnectResultMsg struct {
	client *daemon.Client
	err    error
}

type eventMsg struct {
	event daemon.Event
	ok    bool
}

type configLoadedMsg struct {
	cfg  *protocol.ResolvedConfig
	mask *protocol.ConfigMask
	err  error
}

type processStateMsg struct {
	state protocol.ProcessState
	err   error
}

// saveResultMsg carries the exact cfg and mask the daemon acknowledged so
// the baseline advances to that value, not to whatever the buffer holds by
// the time the ack lands.
type saveResultMsg struct {
	cfg  protocol.ResolvedConfig
	mask protocol.ConfigMask
	err  error
}

type opAckMsg struct {
	op  protocol.Operation
	err error
}

type inputSentMsg struct {
	err error
}

type shutdownResultMsg struct {
	err error
}

// Commands

func waitSnapshotCmd(ch <-chan map[string]protocol.ServerInfo) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return snapshotClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func waitEventCmd(ch <-chan daemon.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		return eventMsg{event: ev, ok: ok}
	}
}

func connectCmd(ctx context.Context, d daemon.Dialer, addrs []string) tea.Cmd {
	return func() tea.Msg {
		c, err := d.Dial(ctx, addrs)
		return connectResultMsg{client: c, endpoints: addrs, err: err}
	}
}

func connectLocalCmd(ctx context.Context, d daemon.Dialer, socketPath string) tea.Cmd {
	return func() tea.Msg {
		c, err := d.DialLocal(ctx, socketPath)
		return connectResultMsg{client: c, err: err}
	}
}

func reconnectRemoteCmd(ctx context.Context, d daemon.Dialer, addrs []string) tea.Cmd {
	return func() tea.Msg {
		c, err := d.Dial(ctx, addrs)
		return reconnectResultMsg{client: c, err: err}
	}
}

func reconnectLocalCmd(ctx context.Context, d daemon.Dialer, socketPath string) tea.Cmd {
	return func() tea.Msg {
		c, err := d.DialLocal(ctx, socketPath)
		return reconnectResultMsg{client: c, err: err}
	}
}

func loadConfigCmd(ctx context.Context, c *daemon.Client) tea.Cmd {
	return func() tea.Msg {
		cfg, mask, err := c.GetConfig(ctx)
		return configLoadedMsg{cfg: cfg, mask: mask, err: err}
	}
}

func loadProcessCmd(ctx context.Context, c *daemon.Client) tea.Cmd {
	return func() tea.Msg {
		state, err := c.GetProcessState(ctx)
		return processStateMsg{state: state, err: err}
	}
}

func saveConfigCmd(ctx context.Context, c *daemon.Client, cfg protocol.ResolvedConfig, mask protocol.ConfigMask) tea.Cmd {
	return func() tea.Msg {
		return saveResultMsg{cfg: cfg, mask: mask, err: c.UpdateConfig(ctx, cfg, mask)}
	}
}

func operationCmd(ctx context.Context, c *daemon.Client, op protocol.Operation) tea.Cmd {
	return func() tea.Msg {
		return opAckMsg{op: op, err: c.PerformOperation(ctx, op)}
	}
}

func sendInputCmd(ctx context.Context, c *daemon.Client, data []byte) tea.Cmd {
	return func() tea.Msg {
		return inputSentMsg{err: c.Input(ctx, data)}
	}
}

func shutdownCmd(ctx context.Context, c *daemon.Client) tea.Cmd {
	return func() tea.Msg {
		return shutdownResultMsg{err: c.Shutdown(ctx)}
	}
}
