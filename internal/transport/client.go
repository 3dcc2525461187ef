// Package transport maintains the persistent WebSocket connection to the
// companion server: one ordered read loop delivering event envelopes, a
// serialized fire-and-forget emit path, and reconnection with exponential
// backoff.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// ErrNotConnected is returned by Emit while no connection is established.
var ErrNotConnected = errors.New("not connected")

// Envelope is one wire frame: an event name plus its raw JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is the persistent companion-server connection.
//
// OnConnect and OnEnvelope must be set before Run is called. OnEnvelope is
// invoked from the single read loop in delivery order; implementations that
// may block must hand work off to their own goroutines.
type Client struct {
	url     string
	logger  *zap.Logger
	dialer  *websocket.Dialer
	timeout time.Duration

	// OnConnect fires after each successful (re)connect.
	OnConnect func()
	// OnEnvelope receives every inbound envelope in delivery order.
	OnEnvelope func(Envelope)

	mu      sync.Mutex
	conn    *websocket.Conn
	stopped bool
}

// NewClient creates a Client for the given WebSocket URL.
//
// Precondition: url must be a ws:// or wss:// URL; logger must be non-nil;
// handshakeTimeout must be > 0.
func NewClient(url string, handshakeTimeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		url:     url,
		logger:  logger,
		timeout: handshakeTimeout,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// Run connects and serves the read loop, reconnecting with exponential
// backoff until ctx is cancelled or Close is called.
//
// Postcondition: Returns nil after a requested shutdown, or the ctx error.
func (c *Client) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		if err := c.connect(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.isStopped() {
				return nil
			}
			c.logger.Warn("connect failed, retrying",
				zap.String("url", c.url),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		backoff = initialBackoff
		if c.OnConnect != nil {
			c.OnConnect()
		}

		err := c.readLoop()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.isStopped() {
			return nil
		}
		c.logger.Warn("connection lost, reconnecting", zap.Error(err))
	}
}

// Emit sends one event to the server. Emission is fire-and-forget: no
// acknowledgement is awaited. A nil payload sends an empty envelope.
//
// Postcondition: Returns ErrNotConnected while disconnected, or a write
// error; either way the caller is not expected to retry.
func (c *Client) Emit(event string, payload any) error {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s payload: %w", event, err)
		}
		data = raw
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	if err := c.conn.WriteJSON(Envelope{Event: event, Data: data}); err != nil {
		return fmt.Errorf("emitting %s: %w", event, err)
	}
	return nil
}

// Connected reports whether a connection is currently established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close tears down the connection and stops the Run loop.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) connect(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", c.url, err)
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return conn.Close()
	}
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info("connected", zap.String("url", c.url))
	return nil
}

// readLoop delivers inbound envelopes one at a time in receive order until
// the connection drops. Frames that are not valid envelopes are logged and
// skipped; they never end the loop.
func (c *Client) readLoop() error {
	conn := c.currentConn()
	if conn == nil {
		return ErrNotConnected
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.dropConn(conn)
			return err
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn("discarding malformed frame", zap.Error(err))
			continue
		}
		if c.OnEnvelope != nil {
			c.OnEnvelope(env)
		}
	}
}

func (c *Client) currentConn() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Client) dropConn(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == conn {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}
