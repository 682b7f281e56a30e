package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tcgconnect/tcgconnect-go/internal/api/apierr"
	"github.com/tcgconnect/tcgconnect-go/internal/api/response"
	"github.com/tcgconnect/tcgconnect-go/internal/model"
	"github.com/tcgconnect/tcgconnect-go/internal/registry"
)

// GameHandler exposes the out-of-band session surface: administrative
// game creation (pre-allocating an id before any client connects),
// read-only snapshots and monitoring aggregates.
type GameHandler struct {
	registry registry.RegistryInterface
}

// NewGameHandler creates a GameHandler
func NewGameHandler(reg registry.RegistryInterface) *GameHandler {
	return &GameHandler{registry: reg}
}

type createGameRequest struct {
	MaxPlayers        int  `json:"max_players"`
	AllowReconnection bool `json:"allow_reconnection"`
}

// Create handles POST /games. An empty body creates a game with the
// default configuration.
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	cfg := model.DefaultGameConfig()

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
			return
		}
	} else {
		if req.MaxPlayers > 0 {
			cfg.MaxPlayers = req.MaxPlayers
		}
		cfg.AllowReconnection = req.AllowReconnection
	}

	gameID := h.registry.CreateGame(cfg)
	response.JSON(w, http.StatusCreated, response.CreateGame{GameID: string(gameID)})
}

// Get handles GET /games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["id"])

	session, err := h.registry.GameState(gameID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(session))
}

// ConnectionCounter reports live transport connections for monitoring
type ConnectionCounter interface {
	ConnectionCount() int
}

// StatsHandler exposes monitoring aggregates
type StatsHandler struct {
	registry    registry.RegistryInterface
	connections ConnectionCounter
}

// NewStatsHandler creates a StatsHandler
func NewStatsHandler(reg registry.RegistryInterface, connections ConnectionCounter) *StatsHandler {
	return &StatsHandler{registry: reg, connections: connections}
}

// Get handles GET /stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Stats{
		ActiveGames:      h.registry.ActiveGameCount(),
		ConnectedPlayers: h.registry.TotalConnectedPlayers(),
		Connections:      h.connections.ConnectionCount(),
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}
