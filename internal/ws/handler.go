package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tcgconnect/tcgconnect-go/internal/model"
	"github.com/tcgconnect/tcgconnect-go/internal/registry"
)

// internalErrorMessage is surfaced when a handler fails unexpectedly
const internalErrorMessage = "internal server error"

// envelope is the inbound wire frame with the payload left raw so
// each handler decodes its own type
type envelope struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler is the per-connection protocol adapter. It owns the
// connection's transient attachment and a dispatch table mapping
// inbound events to registry calls; it never mutates session state
// itself. Not safe for concurrent use: all messages for a connection
// arrive on its single read goroutine.
type Handler struct {
	registry registry.RegistryInterface
	emitter  Emitter
	connID   model.ConnID
	ctx      context.Context
	logger   *slog.Logger

	// attachment is set on successful join and cleared on leave
	attachment *registry.Attachment

	dispatch map[model.EventType]func(json.RawMessage)
}

// NewHandler builds the dispatch table for one connection. The context
// should outlive the connection; it is threaded into registry calls.
func NewHandler(
	ctx context.Context,
	reg registry.RegistryInterface,
	emitter Emitter,
	connID model.ConnID,
	logger *slog.Logger,
) *Handler {
	h := &Handler{
		registry: reg,
		emitter:  emitter,
		connID:   connID,
		ctx:      ctx,
		logger:   logger.With(slog.String("conn_id", string(connID))),
	}
	h.dispatch = map[model.EventType]func(json.RawMessage){
		model.EventPlayerJoined:    h.onJoin,
		model.EventPlayerLeft:      func(json.RawMessage) { h.onLeave() },
		model.EventActionPerformed: h.onAction,
		model.EventTurnEnded:       func(json.RawMessage) { h.onEndTurn() },
	}
	return h
}

// HandleMessage routes one inbound frame. Unknown events are ignored,
// malformed frames get a connection error. Nothing escapes past here.
func (h *Handler) HandleMessage(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.emitter.Emit(model.EventErrorConnection, "malformed message")
		return
	}

	fn, ok := h.dispatch[env.Event]
	if !ok {
		h.logger.Debug("ignoring unknown event", slog.String("event", string(env.Event)))
		return
	}
	fn(env.Data)
}

// OnDisconnect handles the implicit leave when the peer goes away
func (h *Handler) OnDisconnect() {
	h.onLeave()
}

// Attachment returns the current attachment, or nil before a join
func (h *Handler) Attachment() *registry.Attachment {
	return h.attachment
}

func (h *Handler) onJoin(data json.RawMessage) {
	defer h.recoverTo(model.EventErrorConnection)

	var req model.JoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.emitter.Emit(model.EventErrorConnection, "malformed join request")
		return
	}

	att, err := h.registry.Join(h.connID, req)
	if err != nil {
		h.emitter.Emit(model.EventErrorConnection, err.Error())
		return
	}
	h.attachment = att

	// A host ack lets the host distinguish creating from joining
	// without a separate handshake
	if att.Role == model.RoleHost {
		h.emitter.Emit(model.EventGameCreated, string(att.GameID))
	}
}

// onLeave must always complete: errors and panics are swallowed so
// teardown never crashes a connection
func (h *Handler) onLeave() {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic during leave", slog.Any("panic", r))
		}
	}()

	if h.attachment == nil {
		return
	}
	h.registry.Leave(h.connID, h.attachment.PlayerID)
	h.attachment = nil
}

func (h *Handler) onAction(data json.RawMessage) {
	defer h.recoverTo(model.EventErrorInvalidAction)

	if h.attachment == nil {
		h.emitter.Emit(model.EventErrorInvalidAction, model.ErrNotInAGame.Error())
		return
	}

	var action model.GameAction
	if err := json.Unmarshal(data, &action); err != nil {
		h.emitter.Emit(model.EventErrorInvalidAction, "malformed action")
		return
	}

	if err := h.registry.PerformAction(h.ctx, h.attachment.GameID, h.attachment.PlayerID, action); err != nil {
		h.emitter.Emit(model.EventErrorInvalidAction, err.Error())
	}
}

func (h *Handler) onEndTurn() {
	defer h.recoverTo(model.EventErrorInvalidAction)

	if h.attachment == nil {
		h.emitter.Emit(model.EventErrorInvalidAction, model.ErrNotInAGame.Error())
		return
	}

	if err := h.registry.EndTurn(h.attachment.GameID, h.attachment.PlayerID); err != nil {
		h.emitter.Emit(model.EventErrorInvalidAction, err.Error())
	}
}

// recoverTo converts a handler panic into an error emission to this
// connection only
func (h *Handler) recoverTo(event model.EventType) {
	if r := recover(); r != nil {
		h.logger.Error("handler panic", slog.Any("panic", r))
		h.emitter.Emit(event, internalErrorMessage)
	}
}
