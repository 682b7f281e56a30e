package relay

import (
	"context"

	"github.com/tcgconnect/tcgconnect-go/internal/model"
)

// Relay is the inter-server broadcast channel. It exists as a stub
// for future multi-process fan-out: events are published and nothing
// subscribes. Single-process deployments use Nop.
type Relay interface {
	// Publish forwards one room event to the inter-server channel
	Publish(ctx context.Context, gameID model.GameID, event model.EventType, payload any) error

	Close() error
}

// ServerBroadcast is the payload published on the inter-server channel
type ServerBroadcast struct {
	GameID  model.GameID    `json:"gameId"`
	Event   model.EventType `json:"event"`
	Payload any             `json:"payload,omitempty"`
}

// Nop discards everything
type Nop struct{}

// NewNop creates the no-op relay
func NewNop() *Nop {
	return &Nop{}
}

// Publish discards the event
func (n *Nop) Publish(_ context.Context, _ model.GameID, _ model.EventType, _ any) error {
	return nil
}

// Close is a no-op
func (n *Nop) Close() error {
	return nil
}

var _ Relay = (*Nop)(nil)
