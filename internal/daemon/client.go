package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/stokerd/console/internal/protocol"
)

// ErrSessionClosed is returned by calls issued after the session ended.
var ErrSessionClosed = errors.New("daemon session closed")

// ErrNotLocalClient is returned when a local-only request is issued against
// a remote daemon.
var ErrNotLocalClient = errors.New("not a local client")

// Error is a failure response from the daemon, carrying its stable
// dotted code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

// Client is one WebSocket session with a stokerd daemon. Request/response
// calls are correlated by task id; pushes fan out to subscribers. A lost
// session publishes a single ConnectionFailure event and is not reusable:
// reconnecting means dialing a fresh Client.
type Client struct {
	conn  *websocket.Conn
	hub   *hub
	local bool

	callTimeout  time.Duration
	pingInterval time.Duration
	writeWait    time.Duration

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan protocol.Envelope

	done     chan struct{}
	downOnce sync.Once
	failOnce sync.Once
}

func newClient(conn *websocket.Conn, local bool, d Dialer) *Client {
	c := &Client{
		conn:         conn,
		hub:          newHub(),
		local:        local,
		callTimeout:  d.callTimeout(),
		pingInterval: d.pingInterval(),
		writeWait:    d.writeWait(),
		pending:      make(map[string]chan protocol.Envelope),
		done:         make(chan struct{}),
	}

	// Liveness: the daemon must answer pings within the read deadline or
	// the session is declared lost.
	deadline := 2 * c.pingInterval
	_ = conn.SetReadDeadline(time.Now().Add(deadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(deadline))
	})

	go c.readPump()
	go c.pingLoop()
	return c
}

// Local reports whether this session runs over the daemon's Unix socket.
func (c *Client) Local() bool { return c.local }

// Subscribe registers a push-event consumer. The returned cancel func
// releases the subscription and must be called on every exit path.
func (c *Client) Subscribe() (<-chan Event, func()) {
	return c.hub.subscribe()
}

// Close tears the session down without publishing a failure event.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(c.writeWait))
	c.writeMu.Unlock()
	c.shutdown()
	return nil
}

// GetConfig fetches the daemon's resolved configuration. An unconfigured
// daemon yields (nil, nil, nil): absence is a state, not an error.
func (c *Client) GetConfig(ctx context.Context) (*protocol.ResolvedConfig, *protocol.ConfigMask, error) {
	resp, err := c.call(ctx, protocol.MessageTypeGetConfig, nil)
	if err != nil {
		return nil, nil, err
	}
	if resp.Type != protocol.MessageTypeConfigState {
		return nil, nil, fmt.Errorf("unexpected %s response to config.get", resp.Type)
	}
	var payload protocol.ConfigStatePayload
	if err := resp.Decode(&payload); err != nil {
		return nil, nil, err
	}
	if !payload.Present {
		return nil, nil, nil
	}
	if payload.Config == nil || payload.Mask == nil {
		return nil, nil, fmt.Errorf("config.state marked present without config")
	}
	return payload.Config, payload.Mask, nil
}

// UpdateConfig persists the given configuration on the daemon. The ack
// confirms persistence, after which the daemon re-broadcasts the value to
// every connected client.
func (c *Client) UpdateConfig(ctx context.Context, cfg protocol.ResolvedConfig, mask protocol.ConfigMask) error {
	payload := protocol.UpdateConfigPayload{Config: cfg, Mask: mask}
	return c.callAck(ctx, protocol.MessageTypeUpdateConfig, payload)
}

// GetProcessState fetches the daemon's current view of the managed server.
func (c *Client) GetProcessState(ctx context.Context) (protocol.ProcessState, error) {
	resp, err := c.call(ctx, protocol.MessageTypeGetProcessState, nil)
	if err != nil {
		return protocol.ProcessState{}, err
	}
	if resp.Type != protocol.MessageTypeProcessState {
		return protocol.ProcessState{}, fmt.Errorf("unexpected %s response to process.get", resp.Type)
	}
	var payload protocol.ProcessStatePayload
	if err := resp.Decode(&payload); err != nil {
		return protocol.ProcessState{}, err
	}
	return payload.State, nil
}

// PerformOperation asks the daemon to run a lifecycle operation. The ack
// confirms receipt only; completion arrives later as an
// operation.performed or operation.failed push.
func (c *Client) PerformOperation(ctx context.Context, op protocol.Operation) error {
	return c.callAck(ctx, protocol.MessageTypePerformOperation, protocol.OperationPayload{Operation: op})
}

// Start requests a server start.
func (c *Client) Start(ctx context.Context) error {
	return c.PerformOperation(ctx, protocol.OperationStart)
}

// Stop requests a server stop.
func (c *Client) Stop(ctx context.Context) error {
	return c.PerformOperation(ctx, protocol.OperationStop)
}

// Restart requests a server restart.
func (c *Client) Restart(ctx context.Context) error {
	return c.PerformOperation(ctx, protocol.OperationRestart)
}

// Input forwards bytes to the managed server's stdin. Fire and forget: the
// console's echo comes back on the stdout push stream.
func (c *Client) Input(_ context.Context, data []byte) error {
	env, err := protocol.NewEnvelope(protocol.MessageTypeInput, "", protocol.InputPayload{Data: data})
	if err != nil {
		return err
	}
	return c.send(env)
}

// Shutdown asks the daemon process itself to exit. Only a local client may
// do this; the guard is enforced on both ends.
func (c *Client) Shutdown(ctx context.Context) error {
	if !c.local {
		return ErrNotLocalClient
	}
	return c.callAck(ctx, protocol.MessageTypeShutdown, nil)
}

func (c *Client) callAck(ctx context.Context, t protocol.MessageType, payload any) error {
	resp, err := c.call(ctx, t, payload)
	if err != nil {
		return err
	}
	if resp.Type != protocol.MessageTypeAck {
		return fmt.Errorf("unexpected %s response to %s", resp.Type, t)
	}
	return nil
}

func (c *Client) call(ctx context.Context, t protocol.MessageType, payload any) (protocol.Envelope, error) {
	select {
	case <-c.done:
		return protocol.Envelope{}, ErrSessionClosed
	default:
	}

	taskID := uuid.NewString()
	env, err := protocol.NewEnvelope(t, taskID, payload)
	if err != nil {
		return protocol.Envelope{}, err
	}

	ch := make(chan protocol.Envelope, 1)
	c.pendingMu.Lock()
	c.pending[taskID] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, taskID)
		c.pendingMu.Unlock()
	}()

	if err := c.send(env); err != nil {
		return protocol.Envelope{}, fmt.Errorf("send %s: %w", t, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	select {
	case resp := <-ch:
		if resp.Type == protocol.MessageTypeError {
			var ep protocol.ErrorPayload
			if err := resp.Decode(&ep); err != nil {
				return protocol.Envelope{}, err
			}
			if ep.Code == protocol.CodeNotLocalClient {
				return protocol.Envelope{}, ErrNotLocalClient
			}
			return protocol.Envelope{}, &Error{Code: ep.Code, Message: ep.Message}
		}
		return resp, nil
	case <-ctx.Done():
		return protocol.Envelope{}, fmt.Errorf("await %s response: %w", t, ctx.Err())
	case <-c.done:
		return protocol.Envelope{}, ErrSessionClosed
	}
}

// send serializes writes: gorilla permits one concurrent writer per
// connection.
func (c *Client) send(env protocol.Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteJSON(env)
}

func (c *Client) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			slog.Warn("discarding malformed daemon message", "error", err)
			continue
		}
		c.dispatch(env)
	}
}

func (c *Client) dispatch(env protocol.Envelope) {
	if env.TaskID != "" {
		c.pendingMu.Lock()
		ch, ok := c.pending[env.TaskID]
		c.pendingMu.Unlock()
		if ok {
			// The waiter's buffer holds one response. A duplicate must not
			// block the read pump, so drop it like an unknown task id.
			select {
			case ch <- env:
			default:
				slog.Debug("discarding duplicate response", "type", env.Type, "task_id", env.TaskID)
			}
		} else {
			slog.Debug("response for unknown task", "type", env.Type, "task_id", env.TaskID)
		}
		return
	}

	event, err := eventFromEnvelope(env)
	if err != nil {
		slog.Warn("discarding malformed push", "type", env.Type, "error", err)
		return
	}
	if event != nil {
		c.hub.publish(event)
	}
}

func eventFromEnvelope(env protocol.Envelope) (Event, error) {
	switch env.Type {
	case protocol.MessageTypeConfigChanged:
		var p protocol.ConfigStatePayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		if !p.Present || p.Config == nil || p.Mask == nil {
			return nil, fmt.Errorf("config.changed without config")
		}
		return ConfigChanged{Config: *p.Config, Mask: *p.Mask}, nil
	case protocol.MessageTypeProcessStateUpdated:
		var p protocol.ProcessStatePayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return ProcessStateUpdated{State: p.State}, nil
	case protocol.MessageTypeOperationRequested:
		var p protocol.OperationPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return OperationRequested{Operation: p.Operation}, nil
	case protocol.MessageTypeOperationPerformed:
		var p protocol.OperationPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return OperationPerformed{Operation: p.Operation}, nil
	case protocol.MessageTypeOperationFailed:
		var p protocol.OperationFailedPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return OperationFailed{Operation: p.Operation, Message: p.Message}, nil
	case protocol.MessageTypeStdout, protocol.MessageTypeStderr:
		var p protocol.OutputPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return ConsoleOutput{Stderr: env.Type == protocol.MessageTypeStderr, Chunk: p.Chunk}, nil
	case protocol.MessageTypeFatalError:
		var p protocol.FatalErrorPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return FatalError{Message: p.Message}, nil
	case protocol.MessageTypeShuttingDown:
		return ShuttingDown{}, nil
	default:
		slog.Debug("ignoring unknown push", "type", env.Type)
		return nil, nil
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait))
			c.writeMu.Unlock()
			if err != nil {
				c.fail(fmt.Errorf("liveness ping: %w", err))
				return
			}
		}
	}
}

// fail publishes ConnectionFailure exactly once, then tears down. A session
// closed via Close never reports failure.
func (c *Client) fail(err error) {
	c.failOnce.Do(func() {
		select {
		case <-c.done:
			// Deliberate close; nothing failed.
			return
		default:
		}
		slog.Warn("daemon session lost", "error", err)
		c.hub.publish(ConnectionFailure{})
		c.shutdown()
	})
}

func (c *Client) shutdown() {
	c.downOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
		c.hub.closeAll()
	})
}
