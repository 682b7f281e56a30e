package model

import "time"

// PlayerID uniquely identifies a player across the system.
// Minted by the server on first join and stable across reconnects,
// unlike the transient connection identifier.
type PlayerID string

// ConnID identifies a single live connection.
type ConnID string

// PlayerRole is a fixed slot a player occupies within a session.
// At most one connected occupant per role per session.
type PlayerRole string

const (
	RoleHost    PlayerRole = "host"
	RolePlayer1 PlayerRole = "player1"
	RolePlayer2 PlayerRole = "player2"
)

// Player represents a game participant
type Player struct {
	ID        PlayerID   `json:"id"`
	Name      string     `json:"name"`
	Role      PlayerRole `json:"role"`
	Connected bool       `json:"connected"`
	JoinedAt  time.Time  `json:"joinedAt"`
}
