package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case CreateGameResult:
		o.printCreateGameResult(v)
	case GameState:
		o.printGameState(v)
	case StatsResult:
		o.printStatsResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// CreateGameResult response type (matches API)
type CreateGameResult struct {
	GameID string `json:"game_id"`
}

// Player response type
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joined_at"`
}

// GameState response type
type GameState struct {
	ID          string    `json:"id"`
	Players     []Player  `json:"players"`
	CurrentTurn string    `json:"current_turn"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StatsResult response type
type StatsResult struct {
	ActiveGames      int `json:"active_games"`
	ConnectedPlayers int `json:"connected_players"`
	Connections      int `json:"connections"`
}

// HealthResult response type
type HealthResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (o *Output) printCreateGameResult(r CreateGameResult) {
	fmt.Printf("Game: %s\n", r.GameID)
}

func (o *Output) printGameState(g GameState) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Status: %s\n", g.Status)
	if g.CurrentTurn != "" {
		fmt.Printf("Current Turn: %s\n", g.CurrentTurn)
	}
	fmt.Printf("Players (%d):\n", len(g.Players))
	for _, p := range g.Players {
		connStr := "disconnected"
		if p.Connected {
			connStr = "connected"
		}
		fmt.Printf("  %s [%s] %s (%s)\n", p.Name, p.Role, connStr, p.ID)
	}
}

func (o *Output) printStatsResult(s StatsResult) {
	fmt.Printf("Active Games: %d\n", s.ActiveGames)
	fmt.Printf("Connected Players: %d\n", s.ConnectedPlayers)
	fmt.Printf("Connections: %d\n", s.Connections)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Timestamp: %s\n", h.Timestamp.Format(time.RFC3339))
}
