package model

// EventType identifies a wire message. Client-initiated events are
// past tense, server-initiated events are present tense.
type EventType string

// Client -> server events
const (
	EventPlayerJoined    EventType = "player:joined"
	EventPlayerLeft      EventType = "player:left"
	EventActionPerformed EventType = "action:performed"
	EventTurnEnded       EventType = "turn:ended"
)

// Server -> client events
const (
	EventGameUpdate         EventType = "game:update"
	EventGameCreated        EventType = "game:created"
	EventGameEnded          EventType = "game:ended" // reserved for a rule engine
	EventPlayerConnected    EventType = "player:connected"
	EventPlayerDisconnected EventType = "player:disconnected"
	EventErrorConnection    EventType = "error:connection"
	EventErrorInvalidAction EventType = "error:invalid-action"
)

// Inter-server events (future scaling stub)
const (
	EventServerBroadcast EventType = "server:broadcast"
)

// Envelope is the wire frame for every message in both directions
type Envelope struct {
	Event EventType `json:"event"`
	Data  any       `json:"data,omitempty"`
}

// JoinRequest is the payload of a player:joined event
type JoinRequest struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
	Role       string `json:"role"`
}
