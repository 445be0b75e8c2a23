// Package realtime owns the WebSocket connection that carries chat traffic.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/coder/websocket"

	"github.com/ElarizT/Mavericks/internal/config"
	"github.com/ElarizT/Mavericks/internal/domain"
)

// OutboundMessage is the frame sent for every user message.
type OutboundMessage struct {
	Message  string   `json:"message"`
	LLMName  string   `json:"llm_name"`
	Provider string   `json:"provider"`
	Files    []string `json:"files,omitempty"`
}

// TokenSource returns the bearer token, "" when the user is not logged in.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Handler receives every inbound frame, already decoded.
type Handler func(domain.Message)

// Channel keeps at most one live socket. It never reconnects on its own; an
// unexpected drop is reported through OnDisconnect.
type Channel struct {
	url    string
	tokens TokenSource

	// connectMu serializes Connect and Close so two sockets never overlap.
	connectMu sync.Mutex

	mu           sync.Mutex
	conn         *websocket.Conn
	cancel       context.CancelFunc
	done         chan struct{}
	status       domain.ConnectionStatus
	handler      Handler
	onStatus     func(domain.ConnectionStatus)
	onDisconnect func(error)
}

func NewChannel(wsURL string, tokens TokenSource) *Channel {
	return &Channel{
		url:    wsURL,
		tokens: tokens,
		status: domain.StatusDisconnected,
	}
}

// OnMessage registers the inbound handler, replacing any earlier one.
func (c *Channel) OnMessage(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

func (c *Channel) OnStatus(fn func(domain.ConnectionStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = fn
}

// OnDisconnect is called when the socket drops without Close or a new Connect.
func (c *Channel) OnDisconnect(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = fn
}

func (c *Channel) Status() domain.ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Connect opens a new socket authenticated with the stored token, closing the
// current one first. Without a token no socket is dialed.
func (c *Channel) Connect(ctx context.Context) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		slog.Error("authentication token not found, not connecting")
		return domain.ErrNotAuthenticated
	}

	target, err := url.Parse(c.url)
	if err != nil {
		return fmt.Errorf("parse channel url: %w", err)
	}
	q := target.Query()
	q.Set("token", token)
	target.RawQuery = q.Encode()

	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	c.shutdown("reconnect")
	c.setStatus(domain.StatusConnecting)

	conn, _, err := websocket.Dial(ctx, target.String(), nil)
	if err != nil {
		c.setStatus(domain.StatusDisconnected)
		return fmt.Errorf("dial channel: %w", err)
	}
	conn.SetReadLimit(config.MaxFrameSize)

	readCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.conn = conn
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	slog.Info("channel connected", "url", c.url)
	c.setStatus(domain.StatusConnected)

	go c.readLoop(readCtx, conn, done)
	return nil
}

// Send transmits msg while the socket is open. A closed socket is reported as
// domain.ErrChannelClosed.
func (c *Channel) Send(ctx context.Context, msg OutboundMessage) error {
	c.mu.Lock()
	conn := c.conn
	open := conn != nil && c.status == domain.StatusConnected
	c.mu.Unlock()

	if !open {
		slog.Error("channel is not connected, dropping message")
		return domain.ErrChannelClosed
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Error("send frame", "error", err)
		return fmt.Errorf("send frame: %w", err)
	}
	return nil
}

// Close shuts the current socket, if any. It is safe to call repeatedly.
func (c *Channel) Close() {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()
	c.shutdown("closing")
}

// shutdown detaches the current socket and waits for its read loop.
// Callers hold connectMu.
func (c *Channel) shutdown(reason string) {
	c.mu.Lock()
	conn, cancel, done := c.conn, c.cancel, c.done
	c.conn, c.cancel, c.done = nil, nil, nil
	c.mu.Unlock()

	if conn == nil {
		return
	}
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, reason)
	<-done
	c.setStatus(domain.StatusDisconnected)
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			c.dropped(ctx, conn, err)
			return
		}

		msg, perr := domain.ParseMessage(data)
		if perr != nil {
			slog.Warn("inbound frame is not a JSON object, delivering as raw text", "error", perr)
			msg = domain.RawTextMessage(data)
		}

		c.mu.Lock()
		h := c.handler
		c.mu.Unlock()
		if h != nil {
			h(msg)
		}
	}
}

func (c *Channel) dropped(ctx context.Context, conn *websocket.Conn, err error) {
	if ctx.Err() != nil {
		return // closed by shutdown
	}

	c.mu.Lock()
	current := c.conn == conn
	if current {
		c.cancel()
		c.conn, c.cancel, c.done = nil, nil, nil
	}
	fn := c.onDisconnect
	c.mu.Unlock()

	if !current {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
		slog.Info("channel closed by server")
	} else {
		slog.Warn("channel dropped", "error", err)
	}
	c.setStatus(domain.StatusDisconnected)
	if fn != nil {
		fn(err)
	}
}

func (c *Channel) setStatus(s domain.ConnectionStatus) {
	c.mu.Lock()
	changed := c.status != s
	c.status = s
	fn := c.onStatus
	c.mu.Unlock()
	if changed && fn != nil {
		fn(s)
	}
}
