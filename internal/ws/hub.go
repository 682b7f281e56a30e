package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/tcgconnect/tcgconnect-go/internal/model"
	"github.com/tcgconnect/tcgconnect-go/internal/registry"
)

// Hub tracks live connections and their room membership. It is the
// registry's broadcaster: room membership changes and emissions come
// in through the Broadcaster interface, connection lifecycle through
// Register/Unregister.
type Hub struct {
	mu     sync.RWMutex
	conns  map[model.ConnID]*Conn
	rooms  map[model.GameID]map[model.ConnID]*Conn
	logger *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[model.ConnID]*Conn),
		rooms:  make(map[model.GameID]map[model.ConnID]*Conn),
		logger: logger.With(slog.String("component", "ws-hub")),
	}
}

// Ensure Hub implements the registry's broadcaster
var _ registry.Broadcaster = (*Hub)(nil)

// Register adds a live connection
func (h *Hub) Register(conn *Conn) {
	h.mu.Lock()
	h.conns[conn.ID()] = conn
	total := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("connection registered",
		slog.String("conn_id", string(conn.ID())),
		slog.Int("total_connections", total))
}

// Unregister removes a connection and any room memberships it held
func (h *Hub) Unregister(conn *Conn) {
	h.mu.Lock()
	delete(h.conns, conn.ID())
	for gameID, members := range h.rooms {
		delete(members, conn.ID())
		if len(members) == 0 {
			delete(h.rooms, gameID)
		}
	}
	total := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("connection unregistered",
		slog.String("conn_id", string(conn.ID())),
		slog.Int("total_connections", total))
}

// JoinRoom attaches a connection to a game's broadcast room
func (h *Hub) JoinRoom(gameID model.GameID, connID model.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[connID]
	if !ok {
		return
	}
	members := h.rooms[gameID]
	if members == nil {
		members = make(map[model.ConnID]*Conn)
		h.rooms[gameID] = members
	}
	members[connID] = conn
}

// LeaveRoom detaches a connection from a game's broadcast room
func (h *Hub) LeaveRoom(gameID model.GameID, connID model.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[gameID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, gameID)
	}
}

// EmitToGame fans an event out to every connection in the game's
// room. Fire-and-forget: slow clients drop messages, nothing blocks.
func (h *Hub) EmitToGame(gameID model.GameID, event model.EventType, payload any) {
	data, err := json.Marshal(model.Envelope{Event: event, Data: payload})
	if err != nil {
		h.logger.Error("failed to marshal broadcast",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	members := make([]*Conn, 0, len(h.rooms[gameID]))
	for _, conn := range h.rooms[gameID] {
		members = append(members, conn)
	}
	h.mu.RUnlock()

	for _, conn := range members {
		conn.enqueue(data)
	}
}

// ConnectionCount returns the number of live connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// RoomSize returns the number of connections attached to a game
func (h *Hub) RoomSize(gameID model.GameID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}
