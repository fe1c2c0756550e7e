package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var (
	ErrConnClosed    = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

// Error is a connection-level fault.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

const (
	sendQueueSize = 256
	readTimeout   = 60 * time.Second
	writeTimeout  = 10 * time.Second
	pingInterval  = (readTimeout * 9) / 10
)

// Conn wraps a WebSocket connection with a buffered send queue.
// Push never blocks; a full queue or a closed connection fails fast,
// which keeps broadcasts fire-and-forget.
type Conn struct {
	conn   *websocket.Conn
	sendCh chan Envelope
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

// NewConn wraps a gorilla WebSocket connection.
func NewConn(conn *websocket.Conn, logger zerolog.Logger) *Conn {
	return &Conn{
		conn:   conn,
		sendCh: make(chan Envelope, sendQueueSize),
		logger: logger,
	}
}

// Push queues an envelope for delivery.
func (c *Conn) Push(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}

	select {
	case c.sendCh <- env:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts down the connection. Safe to call more than once.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.sendCh)
	c.conn.Close()
}

// WritePump drains the send queue onto the socket and keeps the peer's
// read deadline alive with periodic pings.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Warn().Err(err).Msg("write error")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump reads envelopes and calls the handler. An undecodable message
// is logged and skipped; the connection stays open. Returns when the
// connection closes.
func (c *Conn) ReadPump(handler func(Envelope)) {
	defer c.conn.Close()

	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("read error")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn().Err(err).Msg("malformed message skipped")
			continue
		}
		handler(env)
	}
}
