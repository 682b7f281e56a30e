package response

import (
	"time"

	"github.com/tcgconnect/tcgconnect-go/internal/model"
)

// CreateGame is the response to an out-of-band game creation request
type CreateGame struct {
	GameID string `json:"game_id"`
}

// Player represents a player in API responses
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joined_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:        string(p.ID),
		Name:      p.Name,
		Role:      string(p.Role),
		Connected: p.Connected,
		JoinedAt:  p.JoinedAt,
	}
}

// GameState represents a session snapshot in API responses
type GameState struct {
	ID          string    `json:"id"`
	Players     []Player  `json:"players"`
	CurrentTurn string    `json:"current_turn"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GameStateFromModel converts a model.Session
func GameStateFromModel(s *model.Session) GameState {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerFromModel(p)
	}
	return GameState{
		ID:          string(s.ID),
		Players:     players,
		CurrentTurn: string(s.CurrentTurn),
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Stats reports monitoring aggregates computed on demand
type Stats struct {
	ActiveGames      int `json:"active_games"`
	ConnectedPlayers int `json:"connected_players"`
	Connections      int `json:"connections"`
}

// Health is the health check response
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
