// Package room owns the authoritative state of running games. All intents
// for one room are serialized through that room's mutex; rooms never share
// state with each other.
package room

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/luminagames/ludo-backend/internal/apperror"
	"github.com/luminagames/ludo-backend/internal/bot"
	"github.com/luminagames/ludo-backend/internal/entity"
	"github.com/luminagames/ludo-backend/internal/rules"
)

// Room wraps one entity.Room behind a mutex and exposes the four intents.
// Every accepted transition touches lastActivity, mirrors the state and
// broadcasts a discrete event plus a full snapshot.
type Room struct {
	logger   *slog.Logger
	hub      Broadcaster
	mirror   Mirror
	selector *bot.Selector
	dice     func() int

	mu    sync.Mutex
	state *entity.Room
}

// Option configures a Room at construction time.
type Option func(*Room)

// WithDice replaces the uniform die, used by tests to script rolls.
func WithDice(dice func() int) Option {
	return func(r *Room) {
		r.dice = dice
	}
}

func NewRoom(logger *slog.Logger, hub Broadcaster, mirror Mirror, selector *bot.Selector, state *entity.Room, opts ...Option) *Room {
	room := &Room{
		logger:   logger.With("component", "room", "roomID", state.ID),
		hub:      hub,
		mirror:   mirror,
		selector: selector,
		state:    state,
		dice: func() int {
			return rand.Intn(entity.DiceMax) + entity.DiceMin //nolint: gosec // it's ok
		},
	}

	for _, opt := range opts {
		opt(room)
	}

	return room
}

// Snapshot returns a deep copy of the current state.
func (that *Room) Snapshot() *entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.Clone()
}

// Join attaches the player identity to this room. A known playerID
// reconnects to its existing player; an unknown one becomes a new player if
// the room is still waiting and has capacity.
func (that *Room) Join(playerID, name string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if existing := that.state.PlayerByID(playerID); existing != nil {
		if existing.Connected {
			return nil, apperror.ErrDuplicateConnection
		}

		existing.Connected = true
		that.commitLocked(ActionPlayerJoined, PlayerJoinedPayload{Player: existing, Reconnect: true})

		return that.state.Clone(), nil
	}

	if !that.state.IsWaiting() {
		return nil, apperror.ErrRoomNotWaiting
	}

	if that.state.HumanCount() >= that.state.MaxPlayers {
		return nil, apperror.ErrRoomFull
	}

	color, ok := that.state.NextColor()
	if !ok {
		return nil, apperror.ErrRoomFull
	}

	player := entity.NewPlayer(playerID, name, color, false)
	player.Connected = true
	that.state.AddPlayer(player)

	that.commitLocked(ActionPlayerJoined, PlayerJoinedPayload{Player: player})
	that.logger.Info("player joined", "playerID", playerID, "color", color)

	return that.state.Clone(), nil
}

// Disconnect marks the player offline without removing it or its pieces.
// If it was the disconnected player's turn, the turn moves on so the room
// does not stall waiting for them.
func (that *Room) Disconnect(playerID string) *entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.state.PlayerByID(playerID)
	if player == nil || !player.Connected || player.IsAI {
		return that.state.Clone()
	}

	player.Connected = false

	if that.abandonedLocked() {
		that.state.Phase = entity.PhaseAbandoned
		that.commitLocked(ActionPlayerLeft, PlayerLeftPayload{PlayerID: playerID})
		that.hub.Broadcast(that.state.ID, ActionGameEnded, GameEndedPayload{Abandoned: true})
		that.logger.Info("room abandoned", "playerID", playerID)

		return that.state.Clone()
	}

	if that.state.IsPlaying() && that.state.CurrentPlayer() == player {
		that.state.PendingRoll = 0
		that.state.CurrentTurn = rules.NextTurn(that.state)
	}

	that.commitLocked(ActionPlayerLeft, PlayerLeftPayload{PlayerID: playerID})
	that.maybeScheduleAILocked()

	return that.state.Clone()
}

// Start moves the room from waiting to playing. Host only; needs at least
// two players, one of them human.
func (that *Room) Start(playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.state.PlayerByID(playerID)
	if player == nil || !player.IsHost {
		return apperror.ErrNotHost
	}

	if !that.state.IsWaiting() {
		return apperror.ErrRoomNotWaiting
	}

	if len(that.state.Players) < entity.MinPlayers {
		return apperror.ErrNotEnoughPlayers
	}

	if that.state.HumanCount() < 1 {
		return apperror.ErrNoHumanPlayers
	}

	that.state.Phase = entity.PhasePlaying
	that.state.CurrentTurn = 0
	that.state.PendingRoll = 0

	that.commitLocked(ActionGameStarted, GameStartedPayload{CurrentTurn: 0})
	that.maybeScheduleAILocked()
	that.logger.Info("game started", "players", len(that.state.Players))

	return nil
}

// Roll produces the pending die value for the current player. A roll with
// no legal moves forfeits the turn, which is an outcome, not an error.
func (that *Room) Roll(playerID string) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.confirmTurnLocked(playerID); err != nil {
		return 0, err
	}

	if that.state.HasPendingRoll() {
		return 0, apperror.ErrAlreadyRolled
	}

	value := that.dice()
	that.rollLocked(playerID, value)

	return value, nil
}

// Move consumes the pending roll by moving one of the caller's pieces.
func (that *Room) Move(playerID string, pieceID, dice int) (*rules.Move, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.confirmTurnLocked(playerID); err != nil {
		return nil, err
	}

	if !that.state.HasPendingRoll() {
		return nil, apperror.ErrNoPendingRoll
	}

	if dice != that.state.PendingRoll {
		return nil, apperror.ErrDiceMismatch
	}

	player := that.state.PlayerByID(playerID)
	piece := that.state.PieceByID(pieceID)
	if piece == nil || piece.Color != player.Color {
		return nil, apperror.ErrInvalidPiece
	}

	move, ok := rules.FindMove(that.state, playerID, pieceID, dice)
	if !ok {
		return nil, apperror.ErrIllegalMove
	}

	that.applyMoveLocked(playerID, move, dice)

	return &move, nil
}

func (that *Room) confirmTurnLocked(playerID string) error {
	switch that.state.Phase {
	case entity.PhaseWaiting:
		return apperror.ErrGameNotStarted
	case entity.PhaseFinished, entity.PhaseAbandoned:
		return apperror.ErrGameFinished
	}

	current := that.state.CurrentPlayer()
	if current == nil {
		// Impossible turn index: give the room up rather than guessing.
		that.state.Phase = entity.PhaseAbandoned
		that.commitLocked(ActionGameEnded, GameEndedPayload{Abandoned: true})
		that.logger.Error("invalid turn index, abandoning room", "turn", that.state.CurrentTurn)

		return apperror.ErrGameFinished
	}

	if current.ID != playerID {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// rollLocked records the die value, or forfeits the turn when the value
// yields no legal moves.
func (that *Room) rollLocked(playerID string, value int) {
	moves := rules.LegalMoves(that.state, playerID, value)

	if len(moves) == 0 {
		if !rules.GrantsExtraTurn(value, 0) {
			that.state.CurrentTurn = rules.NextTurn(that.state)
		}

		that.commitLocked(ActionDiceRolled, DiceRolledPayload{PlayerID: playerID, Value: value, Forfeited: true})
		that.maybeScheduleAILocked()

		return
	}

	that.state.PendingRoll = value
	that.commitLocked(ActionDiceRolled, DiceRolledPayload{PlayerID: playerID, Value: value})
}

// applyMoveLocked commits a pre-validated move: relocates pieces, resolves
// win or turn advance, and broadcasts.
func (that *Room) applyMoveLocked(playerID string, move rules.Move, dice int) {
	next, captured := rules.ApplyMove(that.state, move)
	that.state = next
	that.state.PendingRoll = 0

	if rules.HasWon(that.state, playerID) {
		that.state.Phase = entity.PhaseFinished
		that.state.WinnerID = playerID

		that.hub.Broadcast(that.state.ID, ActionPieceMoved, PieceMovedPayload{PlayerID: playerID, Move: move})
		that.commitLocked(ActionGameEnded, GameEndedPayload{WinnerID: playerID})
		that.logger.Info("game finished", "winnerID", playerID)

		return
	}

	extra := rules.GrantsExtraTurn(dice, len(captured))
	if !extra {
		that.state.CurrentTurn = rules.NextTurn(that.state)
	}

	that.commitLocked(ActionPieceMoved, PieceMovedPayload{PlayerID: playerID, Move: move, ExtraTurn: extra})
	that.maybeScheduleAILocked()
}

// abandonedLocked evaluates the abandonment conditions after a connectivity
// change: no connected humans left, or a lone human in a running game with
// no AI opponents.
func (that *Room) abandonedLocked() bool {
	if that.state.IsAbandoned() {
		return false
	}

	humans := that.state.ConnectedHumanCount()
	if humans == 0 {
		return true
	}

	return that.state.IsPlaying() && humans == 1 && that.state.AICount() == 0
}

// maybeScheduleAILocked kicks off the AI turn when the game is running and
// the turn owner is computer-controlled.
func (that *Room) maybeScheduleAILocked() {
	if !that.state.IsPlaying() {
		return
	}

	current := that.state.CurrentPlayer()
	if current == nil || !current.IsAI || that.state.HasPendingRoll() {
		return
	}

	go that.runAITurn(current.ID, current.Difficulty)
}

// runAITurn rolls for the AI inside the critical section, picks the move
// outside it on an immutable snapshot, then re-enters and re-validates that
// the game has not advanced past the decision before applying it.
func (that *Room) runAITurn(playerID string, difficulty entity.Difficulty) {
	that.mu.Lock()

	if !that.state.IsPlaying() || that.state.HasPendingRoll() {
		that.mu.Unlock()
		return
	}

	if current := that.state.CurrentPlayer(); current == nil || current.ID != playerID {
		that.mu.Unlock()
		return
	}

	value := that.dice()
	that.rollLocked(playerID, value)

	if !that.state.HasPendingRoll() {
		// The roll had no legal moves and was forfeited in place.
		that.mu.Unlock()
		return
	}

	snapshot := that.state.Clone()
	that.mu.Unlock()

	time.Sleep(that.selector.ThinkDelay(difficulty))
	move := that.selector.SelectMove(snapshot, playerID, value, difficulty)

	that.mu.Lock()
	defer that.mu.Unlock()

	// The room may have moved on while the AI was thinking.
	if !that.state.IsPlaying() || that.state.PendingRoll != value {
		return
	}

	if current := that.state.CurrentPlayer(); current == nil || current.ID != playerID {
		return
	}

	if move == nil {
		// Should not happen: the roll was only kept pending because moves
		// existed. Forfeit rather than stall the room.
		that.state.PendingRoll = 0
		that.state.CurrentTurn = rules.NextTurn(that.state)
		that.commitLocked(ActionDiceRolled, DiceRolledPayload{PlayerID: playerID, Value: value, Forfeited: true})
		that.maybeScheduleAILocked()

		return
	}

	that.applyMoveLocked(playerID, *move, value)
}

// commitLocked finalizes an accepted transition: activity bump, durable
// mirror, discrete event, full snapshot broadcast.
func (that *Room) commitLocked(action string, payload any) {
	that.state.Touch()

	if that.mirror != nil {
		if err := that.mirror.Save(context.Background(), that.state); err != nil {
			that.logger.Error("failed to mirror room state", "error", err)
		}
	}

	that.hub.Broadcast(that.state.ID, action, payload)
	that.hub.Broadcast(that.state.ID, ActionRoomState, that.state.Clone())
}
