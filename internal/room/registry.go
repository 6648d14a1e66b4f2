package room

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luminagames/ludo-backend/internal/apperror"
	"github.com/luminagames/ludo-backend/internal/bot"
	"github.com/luminagames/ludo-backend/internal/entity"
	"github.com/luminagames/ludo-backend/internal/rules"
)

// Registry maps room identifiers to live rooms and routes every inbound
// intent to the right one. It is the only state shared across rooms.
type Registry struct {
	logger   *slog.Logger
	hub      Broadcaster
	mirror   Mirror
	selector *bot.Selector
	idleTTL  time.Duration
	roomOpts []Option

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry(logger *slog.Logger, hub Broadcaster, mirror Mirror, selector *bot.Selector, idleTTL time.Duration, roomOpts ...Option) *Registry {
	return &Registry{
		logger:   logger.With("component", "registry"),
		hub:      hub,
		mirror:   mirror,
		selector: selector,
		idleTTL:  idleTTL,
		roomOpts: roomOpts,
		rooms:    make(map[string]*Room),
	}
}

// CreateRoom builds a waiting room with a host player and the requested AI
// opponents, and returns the initial snapshot plus the host identity.
func (that *Registry) CreateRoom(hostName string, maxPlayers, aiCount int, difficulty entity.Difficulty) (*entity.Room, *entity.Player, error) {
	state := entity.NewRoom(uuid.NewString(), maxPlayers)

	host := entity.NewPlayer(uuid.NewString(), hostName, entity.Colors[0], true)
	state.AddPlayer(host)

	for i := 0; i < aiCount; i++ {
		color, ok := state.NextColor()
		if !ok {
			return nil, nil, apperror.ErrRoomFull
		}

		aiPlayer := entity.NewAIPlayer("bot-"+uuid.NewString(), fmt.Sprintf("Bot %d", i+1), color, difficulty)
		state.AddPlayer(aiPlayer)
	}

	instance := NewRoom(that.logger, that.hub, that.mirror, that.selector, state, that.roomOpts...)

	that.mu.Lock()
	that.rooms[state.ID] = instance
	that.mu.Unlock()

	that.logger.Info("room created", "roomID", state.ID, "aiCount", aiCount)

	return instance.Snapshot(), host, nil
}

// Rooms lists snapshots of rooms still open for joining.
func (that *Registry) Rooms() []*entity.Room {
	that.mu.RLock()
	instances := make([]*Room, 0, len(that.rooms))
	for _, instance := range that.rooms {
		instances = append(instances, instance)
	}
	that.mu.RUnlock()

	var open []*entity.Room
	for _, instance := range instances {
		if snapshot := instance.Snapshot(); snapshot.IsWaiting() {
			open = append(open, snapshot)
		}
	}

	return open
}

func (that *Registry) Get(roomID string) (*Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	instance, ok := that.rooms[roomID]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return instance, nil
}

func (that *Registry) Join(roomID, playerID, name string) (*entity.Room, error) {
	instance, err := that.Get(roomID)
	if err != nil {
		return nil, err
	}

	snapshot, err := instance.Join(playerID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", roomID, err)
	}

	return snapshot, nil
}

// Disconnect detaches the player identity and evicts the room right away if
// the disconnect abandoned it.
func (that *Registry) Disconnect(roomID, playerID string) {
	instance, err := that.Get(roomID)
	if err != nil {
		return
	}

	if snapshot := instance.Disconnect(playerID); snapshot.IsAbandoned() {
		that.evict(roomID)
	}
}

func (that *Registry) Start(roomID, playerID string) error {
	instance, err := that.Get(roomID)
	if err != nil {
		return err
	}

	return instance.Start(playerID)
}

func (that *Registry) Roll(roomID, playerID string) (int, error) {
	instance, err := that.Get(roomID)
	if err != nil {
		return 0, err
	}

	return instance.Roll(playerID)
}

func (that *Registry) Move(roomID, playerID string, pieceID, dice int) (*rules.Move, error) {
	instance, err := that.Get(roomID)
	if err != nil {
		return nil, err
	}

	return instance.Move(playerID, pieceID, dice)
}

// RunSweeper evicts idle and abandoned rooms until the context is canceled.
func (that *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.sweep()
		}
	}
}

func (that *Registry) sweep() {
	that.mu.RLock()
	ids := make([]string, 0, len(that.rooms))
	for id := range that.rooms {
		ids = append(ids, id)
	}
	that.mu.RUnlock()

	for _, id := range ids {
		instance, err := that.Get(id)
		if err != nil {
			continue
		}

		snapshot := instance.Snapshot()
		if snapshot.IsAbandoned() || time.Since(snapshot.LastActivity) > that.idleTTL {
			that.evict(id)
		}
	}
}

func (that *Registry) evict(roomID string) {
	that.mu.Lock()
	delete(that.rooms, roomID)
	that.mu.Unlock()

	if that.mirror != nil {
		if err := that.mirror.Delete(context.Background(), roomID); err != nil {
			that.logger.Error("failed to delete mirrored room", "roomID", roomID, "error", err)
		}
	}

	that.logger.Info("room evicted", "roomID", roomID)
}
