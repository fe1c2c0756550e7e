package game

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trivia-live/pkg/http/ws"
)

// Upgrader handles WebSocket upgrades. Host and players connect before any
// authentication; the dispatcher decides what a connection may do.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Dashboard and mobile clients are served from other origins.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler accepts WebSocket connections and feeds them to the dispatcher.
type WSHandler struct {
	dispatcher *Dispatcher
	logger     zerolog.Logger
}

// NewWSHandler creates the connection handler.
func NewWSHandler(dispatcher *Dispatcher, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "ws").Logger(),
	}
}

// HandleWebSocket upgrades the request and pumps messages until the
// connection closes, then routes the close through the dispatcher.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	raw, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := ws.NewConn(raw, h.logger)
	h.logger.Info().Str("remote", r.RemoteAddr).Msg("connection opened")

	go conn.WritePump()
	conn.ReadPump(func(env ws.Envelope) {
		h.dispatcher.HandleMessage(conn, env)
	})

	h.dispatcher.HandleDisconnect(conn)
	conn.Close()
}
