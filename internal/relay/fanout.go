package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/tcgconnect/tcgconnect-go/internal/model"
	"github.com/tcgconnect/tcgconnect-go/internal/registry"
)

// publishTimeout bounds a single relay publish
const publishTimeout = 2 * time.Second

// Fanout decorates a broadcaster so every room emission is mirrored to
// the inter-server relay. Publishing is fire-and-forget off the
// calling goroutine; the local broadcast never waits on the relay.
type Fanout struct {
	next   registry.Broadcaster
	relay  Relay
	logger *slog.Logger
}

// NewFanout wraps a broadcaster with relay mirroring
func NewFanout(next registry.Broadcaster, relay Relay, logger *slog.Logger) *Fanout {
	return &Fanout{
		next:   next,
		relay:  relay,
		logger: logger.With(slog.String("component", "relay")),
	}
}

var _ registry.Broadcaster = (*Fanout)(nil)

// JoinRoom delegates to the wrapped broadcaster
func (f *Fanout) JoinRoom(gameID model.GameID, connID model.ConnID) {
	f.next.JoinRoom(gameID, connID)
}

// LeaveRoom delegates to the wrapped broadcaster
func (f *Fanout) LeaveRoom(gameID model.GameID, connID model.ConnID) {
	f.next.LeaveRoom(gameID, connID)
}

// EmitToGame broadcasts locally, then mirrors to the relay
func (f *Fanout) EmitToGame(gameID model.GameID, event model.EventType, payload any) {
	f.next.EmitToGame(gameID, event, payload)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := f.relay.Publish(ctx, gameID, event, payload); err != nil {
			f.logger.Warn("relay publish failed",
				slog.String("game_id", string(gameID)),
				slog.String("event", string(event)),
				slog.String("error", err.Error()))
		}
	}()
}
