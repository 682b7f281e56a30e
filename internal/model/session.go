package model

import "time"

// GameID is the opaque identifier for a session, used as the routing
// key for its broadcast room.
type GameID string

// GameStatus represents the turn machine state of a session
type GameStatus string

const (
	GameStatusWaiting  GameStatus = "waiting"  // Not enough players yet
	GameStatusActive   GameStatus = "active"   // Turn rotation in progress
	GameStatusFinished GameStatus = "finished" // Terminal; reserved for a rule engine
)

// Session is one instance of a game: roster, turn pointer and status
type Session struct {
	ID          GameID     `json:"id"`
	Players     []Player   `json:"players"` // insertion order = join order
	CurrentTurn PlayerID   `json:"currentTurn"`
	Status      GameStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// GetPlayer returns the player with the given ID, or nil if not found
func (s *Session) GetPlayer(id PlayerID) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// GetPlayerByRole returns the player holding the given role, or nil if none
func (s *Session) GetPlayerByRole(role PlayerRole) *Player {
	for i := range s.Players {
		if s.Players[i].Role == role {
			return &s.Players[i]
		}
	}
	return nil
}

// NonHostCount returns the number of players holding a non-host role.
// The host is observer-only and does not count toward activation.
func (s *Session) NonHostCount() int {
	count := 0
	for _, p := range s.Players {
		if p.Role != RoleHost {
			count++
		}
	}
	return count
}

// ConnectedCount returns the number of currently connected players
func (s *Session) ConnectedCount() int {
	count := 0
	for _, p := range s.Players {
		if p.Connected {
			count++
		}
	}
	return count
}

// Room is a session's connection-routing metadata: which live
// connection currently represents which player.
type Room struct {
	ID          GameID
	HostConn    ConnID // zero when no host is attached
	PlayerConns map[PlayerID]ConnID
	MaxPlayers  int
}

// GameConfig holds creation-time settings for a session
type GameConfig struct {
	MaxPlayers        int  `json:"maxPlayers"`
	AllowReconnection bool `json:"allowReconnection"`
}

// DefaultGameConfig returns the default session configuration
func DefaultGameConfig() GameConfig {
	return GameConfig{
		MaxPlayers:        2,
		AllowReconnection: true,
	}
}

// GameAction is a client-initiated in-game action. The base system
// carries no rules; actions pass through a pluggable validator.
type GameAction struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
