package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tcgconnect/tcgconnect-go/internal/dependencies/random"
	"github.com/tcgconnect/tcgconnect-go/internal/model"
	"github.com/tcgconnect/tcgconnect-go/internal/registry"
)

// Server upgrades HTTP requests to websocket connections and runs the
// per-connection protocol handler lifecycle.
type Server struct {
	hub      *Hub
	registry registry.RegistryInterface
	random   random.Random
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer creates a websocket server bound to the given hub and registry
func NewServer(hub *Hub, reg registry.RegistryInterface, rnd random.Random, logger *slog.Logger) *Server {
	return &Server{
		hub:      hub,
		registry: reg,
		random:   rnd,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are served from separate dev origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP upgrades the request and serves the connection until the
// peer disconnects. Disconnect is treated identically to player:left.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	connID := model.ConnID(s.random.ID())
	conn := newConn(connID, sock, s.logger)
	handler := NewHandler(conn.Context(), s.registry, conn, connID, s.logger)

	s.hub.Register(conn)
	s.logger.Info("client connected", slog.String("conn_id", string(connID)))

	go conn.writePump()
	conn.readPump(handler)

	// Read loop ended: the peer is gone
	handler.OnDisconnect()
	s.hub.Unregister(conn)
	conn.Close()
	s.logger.Info("client disconnected", slog.String("conn_id", string(connID)))
}
