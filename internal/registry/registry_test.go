package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tcgconnect/tcgconnect-go/internal/dependencies/mocks"
	"github.com/tcgconnect/tcgconnect-go/internal/model"
	"github.com/tcgconnect/tcgconnect-go/internal/rules"
	"github.com/tcgconnect/tcgconnect-go/internal/testutil"
)

// recordingBroadcaster captures emissions for assertions
type recordingBroadcaster struct {
	mu     sync.Mutex
	joins  []model.ConnID
	leaves []model.ConnID
	events []recordedEvent
}

type recordedEvent struct {
	GameID  model.GameID
	Event   model.EventType
	Payload any
}

func (b *recordingBroadcaster) JoinRoom(gameID model.GameID, connID model.ConnID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.joins = append(b.joins, connID)
}

func (b *recordingBroadcaster) LeaveRoom(gameID model.GameID, connID model.ConnID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leaves = append(b.leaves, connID)
}

func (b *recordingBroadcaster) EmitToGame(gameID model.GameID, event model.EventType, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{GameID: gameID, Event: event, Payload: payload})
}

func (b *recordingBroadcaster) eventsOfType(event model.EventType) []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedEvent
	for _, e := range b.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (b *recordingBroadcaster) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
	b.joins = nil
	b.leaves = nil
}

type RegistrySuite struct {
	suite.Suite
	broadcaster *recordingBroadcaster
	clock       *mocks.MockClock
	random      *mocks.MockRandom
	registry    *Registry
	ctx         context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.broadcaster = &recordingBroadcaster{}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = New(s.broadcaster, rules.NewNop(), s.clock, s.random, Config{}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *RegistrySuite) createGame() model.GameID {
	return s.registry.CreateGame(model.DefaultGameConfig())
}

func (s *RegistrySuite) join(gameID model.GameID, connID, name, role string) *Attachment {
	att, err := s.registry.Join(model.ConnID(connID), model.JoinRequest{
		GameID:     string(gameID),
		PlayerName: name,
		Role:       role,
	})
	s.Require().NoError(err)
	return att
}

// CreateGame tests

func (s *RegistrySuite) TestCreateGameReturnsDistinctIDs() {
	id1 := s.createGame()
	id2 := s.createGame()

	s.NotEqual(id1, id2)
}

func (s *RegistrySuite) TestCreateGameUsesGeneratedCode() {
	s.random.QueueString("ABC234")

	gameID := s.createGame()

	s.Equal(model.GameID("ABC234"), gameID)
}

func (s *RegistrySuite) TestCreateGameRetriesOnCodeCollision() {
	s.random.QueueString("ABC234", "ABC234", "XYZ789")

	id1 := s.createGame()
	id2 := s.createGame()

	s.Equal(model.GameID("ABC234"), id1)
	s.Equal(model.GameID("XYZ789"), id2)
}

func (s *RegistrySuite) TestCreateGameStartsWaitingAndEmpty() {
	gameID := s.createGame()

	session, err := s.registry.GameState(gameID)
	s.Require().NoError(err)
	s.Equal(model.GameStatusWaiting, session.Status)
	s.Empty(session.Players)
	s.Empty(session.CurrentTurn)
	s.Equal(s.clock.Now(), session.CreatedAt)
}

func (s *RegistrySuite) TestCreateGameDefaultsNonPositiveMaxPlayers() {
	gameID := s.registry.CreateGame(model.GameConfig{MaxPlayers: 0})

	s.join(gameID, "c1", "Alice", string(model.RolePlayer1))
	s.join(gameID, "c2", "Bob", string(model.RolePlayer2))
}

// Join validation tests

func (s *RegistrySuite) TestJoinRejectsEmptyGameID() {
	_, err := s.registry.Join("c1", model.JoinRequest{PlayerName: "Alice", Role: "player1"})
	s.ErrorIs(err, model.ErrInvalidGameID)
}

func (s *RegistrySuite) TestJoinRejectsBlankName() {
	gameID := s.createGame()

	_, err := s.registry.Join("c1", model.JoinRequest{
		GameID:     string(gameID),
		PlayerName: "   ",
		Role:       "player1",
	})
	s.ErrorIs(err, model.ErrInvalidPlayerName)
}

func (s *RegistrySuite) TestJoinRejectsUnknownRole() {
	gameID := s.createGame()

	_, err := s.registry.Join("c1", model.JoinRequest{
		GameID:     string(gameID),
		PlayerName: "Alice",
		Role:       "spectator",
	})
	s.ErrorIs(err, model.ErrInvalidPlayerRole)
}

func (s *RegistrySuite) TestJoinRejectsUnknownGame() {
	_, err := s.registry.Join("c1", model.JoinRequest{
		GameID:     "no-such-game",
		PlayerName: "Alice",
		Role:       "player1",
	})
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *RegistrySuite) TestJoinRejectsTakenConnectedRole() {
	gameID := s.createGame()
	s.join(gameID, "c1", "Alice", "player1")

	_, err := s.registry.Join("c2", model.JoinRequest{
		GameID:     string(gameID),
		PlayerName: "Mallory",
		Role:       "player1",
	})
	s.ErrorIs(err, model.ErrRoleAlreadyTaken)
}

func (s *RegistrySuite) TestJoinRejectsWhenFull() {
	gameID := s.createGame()
	s.join(gameID, "c1", "Alice", "player1")
	s.join(gameID, "c2", "Bob", "player2")

	_, err := s.registry.Join("c3", model.JoinRequest{
		GameID:     string(gameID),
		PlayerName: "Hostess",
		Role:       "host",
	})
	s.ErrorIs(err, model.ErrGameFull)
}

func (s *RegistrySuite) TestFailedJoinLeavesStateUntouched() {
	gameID := s.createGame()
	s.join(gameID, "c1", "Alice", "player1")
	s.broadcaster.reset()

	_, err := s.registry.Join("c2", model.JoinRequest{
		GameID:     string(gameID),
		PlayerName: "Mallory",
		Role:       "player1",
	})
	s.Require().Error(err)

	session, _ := s.registry.GameState(gameID)
	s.Len(session.Players, 1)
	s.Empty(s.broadcaster.events)
}

// Join success tests

func (s *RegistrySuite) TestJoinTrimsNameAndAssignsID() {
	gameID := s.createGame()
	s.random.QueueID("player-abc")

	att := s.join(gameID, "c1", "  Alice  ", "player1")

	s.Equal(model.PlayerID("player-abc"), att.PlayerID)
	s.Equal("Alice", att.PlayerName)
	s.Equal(model.RolePlayer1, att.Role)

	session, _ := s.registry.GameState(gameID)
	s.Equal("Alice", session.Players[0].Name)
	s.True(session.Players[0].Connected)
}

func (s *RegistrySuite) TestJoinBroadcastsUpdateAndConnected() {
	gameID := s.createGame()
	att := s.join(gameID, "c1", "Alice", "player1")

	updates := s.broadcaster.eventsOfType(model.EventGameUpdate)
	s.Require().Len(updates, 1)
	state := updates[0].Payload.(*model.Session)
	s.Len(state.Players, 1)

	connected := s.broadcaster.eventsOfType(model.EventPlayerConnected)
	s.Require().Len(connected, 1)
	player := connected[0].Payload.(model.Player)
	s.Equal(att.PlayerID, player.ID)
}

func (s *RegistrySuite) TestJoinAttachesConnectionToRoomBeforeEmitting() {
	gameID := s.createGame()
	s.join(gameID, "c1", "Alice", "player1")

	s.Equal([]model.ConnID{"c1"}, s.broadcaster.joins)
}

// Activation tests

func (s *RegistrySuite) TestGameStaysWaitingWithOnePlayer() {
	gameID := s.createGame()
	s.join(gameID, "c1", "Alice", "player1")

	session, _ := s.registry.GameState(gameID)
	s.Equal(model.GameStatusWaiting, session.Status)
	s.Empty(session.CurrentTurn)
}

func (s *RegistrySuite) TestGameActivatesAtTwoPlayersWithPlayer1Turn() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")
	s.join(gameID, "c2", "Bob", "player2")

	session, _ := s.registry.GameState(gameID)
	s.Equal(model.GameStatusActive, session.Status)
	s.Equal(alice.PlayerID, session.CurrentTurn)
}

func (s *RegistrySuite) TestHostDoesNotCountTowardActivation() {
	gameID := s.registry.CreateGame(model.GameConfig{MaxPlayers: 3})
	s.join(gameID, "c1", "Hostess", "host")
	s.join(gameID, "c2", "Alice", "player1")

	session, _ := s.registry.GameState(gameID)
	s.Equal(model.GameStatusWaiting, session.Status)

	s.join(gameID, "c3", "Bob", "player2")
	session, _ = s.registry.GameState(gameID)
	s.Equal(model.GameStatusActive, session.Status)
}

func (s *RegistrySuite) TestActivationTurnGoesToPlayer1RegardlessOfJoinOrder() {
	gameID := s.registry.CreateGame(model.GameConfig{MaxPlayers: 3})
	s.join(gameID, "c1", "Hostess", "host")
	s.join(gameID, "c2", "Bob", "player2")
	alice := s.join(gameID, "c3", "Alice", "player1")

	session, _ := s.registry.GameState(gameID)
	s.Equal(model.GameStatusActive, session.Status)
	s.Equal(alice.PlayerID, session.CurrentTurn)
}

func (s *RegistrySuite) TestActivationIsOneWay() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")
	bob := s.join(gameID, "c2", "Bob", "player2")

	s.registry.Leave("c2", bob.PlayerID)

	session, _ := s.registry.GameState(gameID)
	s.Equal(model.GameStatusActive, session.Status)
	s.Equal(alice.PlayerID, session.CurrentTurn)
}

// Reconnection tests

func (s *RegistrySuite) TestReconnectionPreservesIdentity() {
	gameID := s.createGame()
	joinedAt := s.clock.Now()
	alice := s.join(gameID, "c1", "Alice", "player1")

	s.registry.Leave("c1", alice.PlayerID)
	s.clock.Advance(5 * time.Second)

	att := s.join(gameID, "c2", "Alice Again", "player1")

	s.Equal(alice.PlayerID, att.PlayerID)

	session, _ := s.registry.GameState(gameID)
	s.Require().Len(session.Players, 1)
	s.Equal("Alice Again", session.Players[0].Name)
	s.True(session.Players[0].Connected)
	s.Equal(joinedAt, session.Players[0].JoinedAt)
}

func (s *RegistrySuite) TestReconnectionBypassesCapacity() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")
	s.join(gameID, "c2", "Bob", "player2")

	s.registry.Leave("c1", alice.PlayerID)

	// Roster is at capacity but Alice holds an existing slot
	att := s.join(gameID, "c3", "Alice", "player1")
	s.Equal(alice.PlayerID, att.PlayerID)
}

// Leave tests

func (s *RegistrySuite) TestLeaveMarksDisconnectedAndBroadcasts() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")
	s.broadcaster.reset()

	s.registry.Leave("c1", alice.PlayerID)

	session, _ := s.registry.GameState(gameID)
	s.Require().Len(session.Players, 1)
	s.False(session.Players[0].Connected)

	disconnected := s.broadcaster.eventsOfType(model.EventPlayerDisconnected)
	s.Require().Len(disconnected, 1)
	s.Equal(string(alice.PlayerID), disconnected[0].Payload)
	s.Equal([]model.ConnID{"c1"}, s.broadcaster.leaves)
}

func (s *RegistrySuite) TestLeaveIsIdempotent() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")

	s.registry.Leave("c1", alice.PlayerID)
	s.broadcaster.reset()

	s.registry.Leave("c1", alice.PlayerID)
	s.registry.Leave("c1", "")
	s.registry.Leave("c1", "unknown-player")

	s.Empty(s.broadcaster.events)

	session, err := s.registry.GameState(gameID)
	s.Require().NoError(err)
	s.Len(session.Players, 1)
}

func (s *RegistrySuite) TestLeavePreservesTurnPointer() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")
	s.join(gameID, "c2", "Bob", "player2")

	s.registry.Leave("c1", alice.PlayerID)

	session, _ := s.registry.GameState(gameID)
	s.Equal(alice.PlayerID, session.CurrentTurn)
}

// Reaper tests

func (s *RegistrySuite) TestReaperDeletesFullyDisconnectedSession() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")

	s.registry.Leave("c1", alice.PlayerID)
	s.clock.Advance(DefaultReapGrace)

	_, err := s.registry.GameState(gameID)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *RegistrySuite) TestReaperWaitsForGraceWindow() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")

	s.registry.Leave("c1", alice.PlayerID)
	s.clock.Advance(DefaultReapGrace - time.Second)

	_, err := s.registry.GameState(gameID)
	s.NoError(err)
}

func (s *RegistrySuite) TestReconnectionDefusesReaper() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")

	s.registry.Leave("c1", alice.PlayerID)
	s.clock.Advance(10 * time.Second)
	s.join(gameID, "c2", "Alice", "player1")

	s.clock.Advance(DefaultReapGrace)

	session, err := s.registry.GameState(gameID)
	s.Require().NoError(err)
	s.True(session.Players[0].Connected)
}

func (s *RegistrySuite) TestReaperSparesSessionWithRemainingConnection() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")
	s.join(gameID, "c2", "Bob", "player2")

	s.registry.Leave("c1", alice.PlayerID)
	s.clock.Advance(DefaultReapGrace)

	_, err := s.registry.GameState(gameID)
	s.NoError(err)
}

func (s *RegistrySuite) TestReapedPlayersCanNoLongerBeFound() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")

	s.registry.Leave("c1", alice.PlayerID)
	s.clock.Advance(DefaultReapGrace)
	s.broadcaster.reset()

	// Reverse index entry is gone, so a stale leave is a no-op
	s.registry.Leave("c1", alice.PlayerID)
	s.Empty(s.broadcaster.events)
}

func (s *RegistrySuite) TestCustomReapGrace() {
	reg := New(s.broadcaster, rules.NewNop(), s.clock, s.random, Config{ReapGrace: 5 * time.Second}, testutil.NopLogger())
	gameID := reg.CreateGame(model.DefaultGameConfig())
	att, err := reg.Join("c1", model.JoinRequest{GameID: string(gameID), PlayerName: "Alice", Role: "player1"})
	s.Require().NoError(err)

	reg.Leave("c1", att.PlayerID)
	s.clock.Advance(5 * time.Second)

	_, err = reg.GameState(gameID)
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Action tests

func (s *RegistrySuite) TestPerformActionBroadcastsUpdate() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")
	s.join(gameID, "c2", "Bob", "player2")
	s.broadcaster.reset()

	err := s.registry.PerformAction(s.ctx, gameID, alice.PlayerID, model.GameAction{Type: "move"})
	s.Require().NoError(err)

	s.Len(s.broadcaster.eventsOfType(model.EventGameUpdate), 1)
}

func (s *RegistrySuite) TestPerformActionRejectsOutOfTurn() {
	gameID := s.createGame()
	s.join(gameID, "c1", "Alice", "player1")
	bob := s.join(gameID, "c2", "Bob", "player2")
	s.broadcaster.reset()

	err := s.registry.PerformAction(s.ctx, gameID, bob.PlayerID, model.GameAction{Type: "move"})
	s.ErrorIs(err, model.ErrNotYourTurn)
	s.Empty(s.broadcaster.events)
}

func (s *RegistrySuite) TestPerformActionRejectsUnknownGame() {
	err := s.registry.PerformAction(s.ctx, "no-such-game", "p1", model.GameAction{Type: "move"})
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *RegistrySuite) TestPerformActionRejectsBeforeActivation() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")

	// Waiting games have no turn owner, so every action is out of turn
	err := s.registry.PerformAction(s.ctx, gameID, alice.PlayerID, model.GameAction{Type: "move"})
	s.ErrorIs(err, model.ErrNotYourTurn)
}

// EndTurn tests

func (s *RegistrySuite) TestEndTurnAdvancesInJoinOrder() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")
	bob := s.join(gameID, "c2", "Bob", "player2")

	err := s.registry.EndTurn(gameID, alice.PlayerID)
	s.Require().NoError(err)

	session, _ := s.registry.GameState(gameID)
	s.Equal(bob.PlayerID, session.CurrentTurn)
}

func (s *RegistrySuite) TestEndTurnWrapsAround() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")
	bob := s.join(gameID, "c2", "Bob", "player2")

	s.Require().NoError(s.registry.EndTurn(gameID, alice.PlayerID))
	s.Require().NoError(s.registry.EndTurn(gameID, bob.PlayerID))

	session, _ := s.registry.GameState(gameID)
	s.Equal(alice.PlayerID, session.CurrentTurn)
}

func (s *RegistrySuite) TestEndTurnIncludesDisconnectedPlayers() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")
	bob := s.join(gameID, "c2", "Bob", "player2")

	s.registry.Leave("c2", bob.PlayerID)

	s.Require().NoError(s.registry.EndTurn(gameID, alice.PlayerID))

	session, _ := s.registry.GameState(gameID)
	s.Equal(bob.PlayerID, session.CurrentTurn)
}

func (s *RegistrySuite) TestEndTurnRejectsOutOfTurn() {
	gameID := s.createGame()
	s.join(gameID, "c1", "Alice", "player1")
	bob := s.join(gameID, "c2", "Bob", "player2")

	err := s.registry.EndTurn(gameID, bob.PlayerID)
	s.ErrorIs(err, model.ErrCannotEndTurn)
}

func (s *RegistrySuite) TestEndTurnRejectsUnknownGame() {
	err := s.registry.EndTurn("no-such-game", "p1")
	s.ErrorIs(err, model.ErrCannotEndTurn)
}

func (s *RegistrySuite) TestEndTurnBroadcastsUpdate() {
	gameID := s.createGame()
	alice := s.join(gameID, "c1", "Alice", "player1")
	s.join(gameID, "c2", "Bob", "player2")
	s.broadcaster.reset()

	s.Require().NoError(s.registry.EndTurn(gameID, alice.PlayerID))
	s.Len(s.broadcaster.eventsOfType(model.EventGameUpdate), 1)
}

// Snapshot and stats tests

func (s *RegistrySuite) TestGameStateReturnsIndependentCopy() {
	gameID := s.createGame()
	s.join(gameID, "c1", "Alice", "player1")

	snap, _ := s.registry.GameState(gameID)
	snap.Players[0].Name = "Tampered"
	snap.Status = model.GameStatusFinished

	fresh, _ := s.registry.GameState(gameID)
	s.Equal("Alice", fresh.Players[0].Name)
	s.Equal(model.GameStatusWaiting, fresh.Status)
}

func (s *RegistrySuite) TestBroadcastUpdateRefreshesTimestamp() {
	gameID := s.createGame()
	s.join(gameID, "c1", "Alice", "player1")
	s.clock.Advance(time.Minute)
	s.broadcaster.reset()

	s.registry.BroadcastUpdate(gameID)

	updates := s.broadcaster.eventsOfType(model.EventGameUpdate)
	s.Require().Len(updates, 1)
	s.Equal(s.clock.Now(), updates[0].Payload.(*model.Session).UpdatedAt)
}

func (s *RegistrySuite) TestBroadcastUpdateIgnoresUnknownGame() {
	s.registry.BroadcastUpdate("no-such-game")
	s.Empty(s.broadcaster.events)
}

func (s *RegistrySuite) TestStatsCountActiveGamesAndPlayers() {
	g1 := s.createGame()
	s.join(g1, "c1", "Alice", "player1")
	s.join(g1, "c2", "Bob", "player2")

	g2 := s.createGame()
	s.join(g2, "c3", "Carol", "player1")

	s.Equal(1, s.registry.ActiveGameCount())
	s.Equal(3, s.registry.TotalConnectedPlayers())
}
