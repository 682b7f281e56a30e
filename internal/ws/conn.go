package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tcgconnect/tcgconnect-go/internal/model"
)

const (
	// writeWait is the time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// pingPeriod is the ping interval; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames
	maxMessageSize = 4096

	// sendBufferSize is the per-connection outbound queue
	sendBufferSize = 256
)

// Emitter sends a single event to one connection
type Emitter interface {
	Emit(event model.EventType, payload any)
}

// Conn wraps a websocket connection with a buffered outbound queue.
// All writes go through the single writePump goroutine.
type Conn struct {
	id     model.ConnID
	sock   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newConn(id model.ConnID, sock *websocket.Conn, logger *slog.Logger) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		id:     id,
		sock:   sock,
		send:   make(chan []byte, sendBufferSize),
		logger: logger.With(slog.String("conn_id", string(id))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the connection identifier
func (c *Conn) ID() model.ConnID {
	return c.id
}

// Context is canceled when the connection closes
func (c *Conn) Context() context.Context {
	return c.ctx
}

// Emit queues an event for this connection. Messages are dropped
// rather than blocking when the peer cannot keep up.
func (c *Conn) Emit(event model.EventType, payload any) {
	data, err := json.Marshal(model.Envelope{Event: event, Data: payload})
	if err != nil {
		c.logger.Error("failed to marshal outbound event",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}
	c.enqueue(data)
}

func (c *Conn) enqueue(data []byte) {
	select {
	case c.send <- data:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("outbound message dropped - connection buffer full")
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.sock.Close()
	})
}

// readPump reads inbound frames and feeds them to the handler until
// the peer goes away. It runs on the caller's goroutine.
func (c *Conn) readPump(handler *Handler) {
	defer c.Close()

	c.sock.SetReadLimit(maxMessageSize)
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("unexpected close", slog.String("error", err.Error()))
			}
			return
		}
		handler.HandleMessage(data)
	}
}

// writePump drains the send queue and keeps the connection alive with
// pings. It exits when the connection context is canceled.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

var _ Emitter = (*Conn)(nil)
