package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tcgconnect/tcgconnect-go/internal/dependencies/clock"
	"github.com/tcgconnect/tcgconnect-go/internal/dependencies/random"
	"github.com/tcgconnect/tcgconnect-go/internal/model"
	"github.com/tcgconnect/tcgconnect-go/internal/rules"
)

// DefaultReapGrace is how long a fully-disconnected session survives
// before the reaper deletes it. Reconnection within the window keeps
// the session alive.
const DefaultReapGrace = 30 * time.Second

const (
	// GameCodeLength is the length of generated game codes
	GameCodeLength = 6
	// GameCodeAlphabet is the characters used in game codes (avoid confusing chars)
	GameCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Broadcaster routes outbound events to the connections attached to a
// session's room. Emissions are fire-and-forget.
type Broadcaster interface {
	JoinRoom(gameID model.GameID, connID model.ConnID)
	LeaveRoom(gameID model.GameID, connID model.ConnID)
	EmitToGame(gameID model.GameID, event model.EventType, payload any)
}

// Attachment is the per-connection state a successful join establishes.
// The connection handler owns it; the registry only returns it.
type Attachment struct {
	GameID     model.GameID
	PlayerID   model.PlayerID
	PlayerName string
	Role       model.PlayerRole
}

// Config holds registry settings
type Config struct {
	// ReapGrace overrides the empty-session grace window (0 = default)
	ReapGrace time.Duration
}

// Registry is the single source of truth for live sessions. It owns
// the session, room and player-to-session mappings; one mutex
// serializes every operation so each session's mutations are totally
// ordered.
type Registry struct {
	mu            sync.Mutex
	sessions      map[model.GameID]*model.Session
	rooms         map[model.GameID]*model.Room
	playerSession map[model.PlayerID]model.GameID

	broadcaster Broadcaster
	validator   rules.Validator
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger
	reapGrace   time.Duration
}

// New creates a session registry
func New(
	broadcaster Broadcaster,
	validator rules.Validator,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *Registry {
	grace := cfg.ReapGrace
	if grace <= 0 {
		grace = DefaultReapGrace
	}
	return &Registry{
		sessions:      make(map[model.GameID]*model.Session),
		rooms:         make(map[model.GameID]*model.Room),
		playerSession: make(map[model.PlayerID]model.GameID),
		broadcaster:   broadcaster,
		validator:     validator,
		clock:         clk,
		random:        rnd,
		logger:        logger.With(slog.String("component", "registry")),
		reapGrace:     grace,
	}
}

// CreateGame registers a new session and its empty room, returning the
// generated game code. It never fails; a non-positive max player count
// falls back to the default configuration.
func (r *Registry) CreateGame(cfg model.GameConfig) model.GameID {
	if cfg.MaxPlayers < 1 {
		cfg.MaxPlayers = model.DefaultGameConfig().MaxPlayers
	}

	now := r.clock.Now()

	r.mu.Lock()

	// Generate a unique game code
	var gameID model.GameID
	for {
		gameID = model.GameID(r.random.String(GameCodeLength, GameCodeAlphabet))
		if _, exists := r.sessions[gameID]; !exists {
			break
		}
	}

	r.sessions[gameID] = &model.Session{
		ID:        gameID,
		Players:   []model.Player{},
		Status:    model.GameStatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.rooms[gameID] = &model.Room{
		ID:          gameID,
		PlayerConns: make(map[model.PlayerID]model.ConnID),
		MaxPlayers:  cfg.MaxPlayers,
	}
	r.mu.Unlock()

	r.logger.Info("game created", slog.String("game_id", string(gameID)))
	return gameID
}

// Join attaches a connection to a session as the given role. On
// success the room receives a game:update and a player:connected
// broadcast and the returned attachment identifies the player this
// connection now represents. Validation failures leave all state
// untouched.
func (r *Registry) Join(connID model.ConnID, req model.JoinRequest) (*Attachment, error) {
	if err := model.ValidateGameID(req.GameID); err != nil {
		return nil, err
	}
	name, err := model.ValidatePlayerName(req.PlayerName)
	if err != nil {
		return nil, err
	}
	role, err := model.ValidatePlayerRole(req.Role)
	if err != nil {
		return nil, err
	}

	gameID := model.GameID(req.GameID)

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[gameID]
	room := r.rooms[gameID]
	if !ok || room == nil {
		return nil, model.ErrGameNotFound
	}

	existing := session.GetPlayerByRole(role)
	if existing != nil && existing.Connected {
		return nil, model.ErrRoleAlreadyTaken
	}
	if existing == nil && len(session.Players) >= room.MaxPlayers {
		return nil, model.ErrGameFull
	}

	now := r.clock.Now()
	var player model.Player
	if existing != nil {
		// Reconnection: keep identity and join time, refresh the rest
		existing.Name = name
		existing.Connected = true
		player = *existing
	} else {
		player = model.Player{
			ID:        model.PlayerID(r.random.ID()),
			Name:      name,
			Role:      role,
			Connected: true,
			JoinedAt:  now,
		}
		session.Players = append(session.Players, player)
	}

	room.PlayerConns[player.ID] = connID
	if role == model.RoleHost {
		room.HostConn = connID
	}
	r.playerSession[player.ID] = gameID

	r.maybeActivate(session)
	session.UpdatedAt = now

	r.broadcaster.JoinRoom(gameID, connID)
	r.broadcaster.EmitToGame(gameID, model.EventGameUpdate, snapshot(session))
	r.broadcaster.EmitToGame(gameID, model.EventPlayerConnected, player)

	r.logger.Info("player joined game",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(player.ID)),
		slog.String("role", string(role)),
		slog.Bool("reconnect", existing != nil),
	)

	return &Attachment{
		GameID:     gameID,
		PlayerID:   player.ID,
		PlayerName: name,
		Role:       role,
	}, nil
}

// maybeActivate fires the waiting -> active transition once two
// non-host players are present. currentTurn goes to whoever holds
// player1, falling back to the first non-host joiner if that role is
// vacant (the zero-value turn of the original behavior was a latent
// defect).
func (r *Registry) maybeActivate(session *model.Session) {
	if session.Status != model.GameStatusWaiting || session.NonHostCount() < 2 {
		return
	}

	session.Status = model.GameStatusActive
	if p1 := session.GetPlayerByRole(model.RolePlayer1); p1 != nil {
		session.CurrentTurn = p1.ID
	} else {
		for _, p := range session.Players {
			if p.Role != model.RoleHost {
				session.CurrentTurn = p.ID
				break
			}
		}
	}

	r.logger.Info("game activated",
		slog.String("game_id", string(session.ID)),
		slog.String("current_turn", string(session.CurrentTurn)),
	)
}

// Leave detaches a connection from whatever session its player is in.
// It never fails: unknown players, repeated leaves and already-reaped
// sessions are all no-ops. On success the player is marked
// disconnected, the room is notified and the reaper is scheduled.
func (r *Registry) Leave(connID model.ConnID, playerID model.PlayerID) {
	if playerID == "" {
		return
	}

	r.mu.Lock()

	gameID, ok := r.playerSession[playerID]
	if !ok {
		r.mu.Unlock()
		return
	}
	session := r.sessions[gameID]
	room := r.rooms[gameID]
	if session == nil || room == nil {
		delete(r.playerSession, playerID)
		r.mu.Unlock()
		return
	}

	player := session.GetPlayer(playerID)
	if player != nil {
		player.Connected = false
	}

	delete(room.PlayerConns, playerID)
	if player != nil && player.Role == model.RoleHost {
		room.HostConn = ""
	}
	delete(r.playerSession, playerID)

	session.UpdatedAt = r.clock.Now()

	r.broadcaster.LeaveRoom(gameID, connID)
	r.broadcaster.EmitToGame(gameID, model.EventGameUpdate, snapshot(session))
	r.broadcaster.EmitToGame(gameID, model.EventPlayerDisconnected, string(playerID))

	r.mu.Unlock()

	// Grace window for reconnection; the callback re-reads live state
	r.clock.AfterFunc(r.reapGrace, func() { r.reap(gameID) })

	r.logger.Info("player left game",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)),
	)
}

// reap deletes a session that is still fully disconnected when the
// grace window ends. State is looked up by id at fire time, so a
// reconnection that raced the timer simply makes this a no-op.
func (r *Registry) reap(gameID model.GameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[gameID]
	if !ok {
		return
	}
	if session.ConnectedCount() > 0 {
		return
	}

	for _, p := range session.Players {
		delete(r.playerSession, p.ID)
	}
	delete(r.sessions, gameID)
	delete(r.rooms, gameID)

	r.logger.Debug("reaped empty game", slog.String("game_id", string(gameID)))
}

// GameState returns a point-in-time copy of a session
func (r *Registry) GameState(gameID model.GameID) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[gameID]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return snapshot(session), nil
}

// BroadcastUpdate re-sends the current session state to the room.
// Idempotent; a missing session is a no-op.
func (r *Registry) BroadcastUpdate(gameID model.GameID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastUpdateLocked(gameID)
}

func (r *Registry) broadcastUpdateLocked(gameID model.GameID) {
	session, ok := r.sessions[gameID]
	if !ok {
		return
	}
	session.UpdatedAt = r.clock.Now()
	r.broadcaster.EmitToGame(gameID, model.EventGameUpdate, snapshot(session))
}

// PerformAction validates turn ownership for an in-game action and
// delegates rule checking to the pluggable validator. The base
// validator accepts everything; either way the room gets a state
// broadcast, matching the placeholder action semantics.
func (r *Registry) PerformAction(ctx context.Context, gameID model.GameID, playerID model.PlayerID, action model.GameAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[gameID]
	if !ok {
		return model.ErrGameNotFound
	}
	if session.CurrentTurn != playerID {
		return model.ErrNotYourTurn
	}

	if err := r.validator.ValidateAction(ctx, session, playerID, action); err != nil {
		r.logger.Debug("action rejected by rules",
			slog.String("game_id", string(gameID)),
			slog.String("player_id", string(playerID)),
			slog.String("action_type", action.Type),
			slog.String("error", err.Error()),
		)
	}

	r.logger.Debug("action performed",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)),
		slog.String("action_type", action.Type),
	)

	r.broadcastUpdateLocked(gameID)
	return nil
}

// EndTurn advances currentTurn to the next player in join order,
// wrapping around. Rotation deliberately includes disconnected players
// and the host so turn order stays stable through connection churn.
func (r *Registry) EndTurn(gameID model.GameID, playerID model.PlayerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[gameID]
	if !ok || session.CurrentTurn != playerID {
		return model.ErrCannotEndTurn
	}

	currentIdx := -1
	for i, p := range session.Players {
		if p.ID == playerID {
			currentIdx = i
			break
		}
	}
	if currentIdx == -1 {
		return model.ErrCannotEndTurn
	}

	nextIdx := (currentIdx + 1) % len(session.Players)
	session.CurrentTurn = session.Players[nextIdx].ID

	r.logger.Debug("turn ended",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)),
		slog.String("next_turn", string(session.CurrentTurn)),
	)

	r.broadcastUpdateLocked(gameID)
	return nil
}

// ActiveGameCount returns the number of sessions in the active state
func (r *Registry) ActiveGameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, s := range r.sessions {
		if s.Status == model.GameStatusActive {
			count++
		}
	}
	return count
}

// TotalConnectedPlayers returns the number of connected players across
// all sessions
func (r *Registry) TotalConnectedPlayers() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, s := range r.sessions {
		total += s.ConnectedCount()
	}
	return total
}

// snapshot copies a session so callers outside the lock never alias
// registry-owned state
func snapshot(s *model.Session) *model.Session {
	out := *s
	out.Players = make([]model.Player, len(s.Players))
	copy(out.Players, s.Players)
	return &out
}

// Interface for dependency injection
type RegistryInterface interface {
	CreateGame(cfg model.GameConfig) model.GameID
	Join(connID model.ConnID, req model.JoinRequest) (*Attachment, error)
	Leave(connID model.ConnID, playerID model.PlayerID)
	GameState(gameID model.GameID) (*model.Session, error)
	BroadcastUpdate(gameID model.GameID)
	PerformAction(ctx context.Context, gameID model.GameID, playerID model.PlayerID, action model.GameAction) error
	EndTurn(gameID model.GameID, playerID model.PlayerID) error
	ActiveGameCount() int
	TotalConnectedPlayers() int
}

var _ RegistryInterface = (*Registry)(nil)
