package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"
)

// Timeout and retry policy. The daemon protocol itself specifies none, so
// these values are the console's documented choices, all overridable per
// Dialer.
const (
	defaultDialTimeout  = 30 * time.Second
	defaultCallTimeout  = 10 * time.Second
	defaultPingInterval = 15 * time.Second
	defaultWriteWait    = 5 * time.Second

	// Per-address handshake retries within one Dial call, spaced by
	// exponential backoff starting at dialBackoffInitial.
	dialAttempts       = 3
	dialBackoffInitial = 500 * time.Millisecond
)

// Dialer opens daemon sessions. The zero value uses the default policy.
type Dialer struct {
	// DialTimeout bounds one whole Dial call across all addresses and
	// retries.
	DialTimeout time.Duration

	// CallTimeout bounds each request/response call on the session.
	CallTimeout time.Duration

	// PingInterval is the liveness ping cadence; a daemon silent for two
	// intervals is considered lost.
	PingInterval time.Duration
}

func (d Dialer) dialTimeout() time.Duration {
	if d.DialTimeout > 0 {
		return d.DialTimeout
	}
	return defaultDialTimeout
}

func (d Dialer) callTimeout() time.Duration {
	if d.CallTimeout > 0 {
		return d.CallTimeout
	}
	return defaultCallTimeout
}

func (d Dialer) pingInterval() time.Duration {
	if d.PingInterval > 0 {
		return d.PingInterval
	}
	return defaultPingInterval
}

func (d Dialer) writeWait() time.Duration {
	return defaultWriteWait
}

// Dial connects to the first reachable address in addrs, in order. Each
// address gets up to dialAttempts handshakes with exponential backoff in
// between; the whole call is bounded by DialTimeout.
func (d Dialer) Dial(ctx context.Context, addrs []string) (*Client, error) {
	if len(addrs) == 0 {
		return nil, errors.New("no addresses to dial")
	}

	ctx, cancel := context.WithTimeout(ctx, d.dialTimeout())
	defer cancel()

	var lastErr error
	for _, addr := range addrs {
		conn, err := d.dialOne(ctx, addr)
		if err == nil {
			slog.Info("connected to daemon", "addr", addr)
			return newClient(conn, false, d), nil
		}
		lastErr = err
		slog.Warn("daemon dial failed", "addr", addr, "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("connect to daemon: %w", lastErr)
}

// DialLocal connects over the daemon's Unix socket.
func (d Dialer) DialLocal(ctx context.Context, socketPath string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, d.dialTimeout())
	defer cancel()

	wsd := websocket.Dialer{
		NetDialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var nd net.Dialer
			return nd.DialContext(ctx, "unix", socketPath)
		},
		HandshakeTimeout: d.dialTimeout(),
	}

	conn, err := dialRetry(ctx, wsd, "ws://stokerd/ws")
	if err != nil {
		return nil, fmt.Errorf("connect to local daemon at %s: %w", socketPath, err)
	}
	slog.Info("connected to local daemon", "socket", socketPath)
	return newClient(conn, true, d), nil
}

func (d Dialer) dialOne(ctx context.Context, addr string) (*websocket.Conn, error) {
	wsd := websocket.Dialer{HandshakeTimeout: d.dialTimeout()}
	return dialRetry(ctx, wsd, "ws://"+addr+"/ws")
}

func dialRetry(ctx context.Context, wsd websocket.Dialer, url string) (*websocket.Conn, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = dialBackoffInitial

	var conn *websocket.Conn
	op := func() error {
		var resp *http.Response
		var err error
		conn, resp, err = wsd.DialContext(ctx, url, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return err
	}
	err := backoff.Retry(op,
		backoff.WithContext(backoff.WithMaxRetries(bo, dialAttempts-1), ctx))
	if err != nil {
		return nil, err
	}
	return conn, nil
}
