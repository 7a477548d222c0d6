package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// ErrConnectionClosed is returned when sending on a closed connection
var ErrConnectionClosed = errors.New("connection closed")

// Connection wraps one WebSocket client. Writes go through a buffered
// send channel so a slow client never blocks the game; a client that
// falls too far behind is disconnected.
type Connection struct {
	conn   *websocket.Conn
	send   chan *Message
	server *Server
	logger *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu        sync.RWMutex
	name      string
	seat      int
	spectator bool
}

// NewConnection creates a connection wrapper
func NewConnection(conn *websocket.Conn, server *Server, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		server: server,
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
		seat:   -1,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Done is closed when the connection shuts down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Send queues a message for the client. A full buffer closes the
// connection rather than blocking the caller.
func (c *Connection) Send(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("send on closed connection", "recovered", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("send buffer full, closing connection", "name", c.Name())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SendError sends an error message to the client
func (c *Connection) SendError(text string) {
	if msg, err := NewMessage(MessageTypeError, ErrorData{Error: text}); err == nil {
		_ = c.Send(msg)
	}
}

// Seat returns the connection's seat, -1 when unseated
func (c *Connection) Seat() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seat
}

// Name returns the joined player name
func (c *Connection) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Spectator reports whether the connection joined as an observer
func (c *Connection) Spectator() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spectator
}

func (c *Connection) setIdentity(name string, seat int, spectator bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	c.seat = seat
	c.spectator = spectator
}

func (c *Connection) readPump() {
	defer func() {
		_ = c.Close()
		c.server.removeConnection(c)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read error", "err", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.SendError("malformed message")
			continue
		}
		c.server.handleMessage(c, &msg)
	}
}

func (c *Connection) writePump() {
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write error", "err", err)
				_ = c.Close()
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
