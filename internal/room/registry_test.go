package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminagames/ludo-backend/internal/apperror"
	"github.com/luminagames/ludo-backend/internal/entity"
)

func newTestRegistry(idleTTL time.Duration) (*Registry, *fakeHub) {
	hub := &fakeHub{}

	return NewRegistry(testLogger(), hub, nil, testSelector(), idleTTL), hub
}

func TestRegistry_CreateRoom(t *testing.T) {
	t.Run("Creates a waiting room with a host and AI opponents", func(t *testing.T) {
		registry, _ := newTestRegistry(time.Hour)

		snapshot, host, err := registry.CreateRoom("Ada", entity.MaxPlayers, 2, entity.DifficultyEasy)

		require.NoError(t, err)
		assert.True(t, snapshot.IsWaiting())
		require.Len(t, snapshot.Players, 3)

		assert.True(t, snapshot.PlayerByID(host.ID).IsHost)
		assert.Equal(t, entity.ColorRed, host.Color)

		// Then: the AI players are connected and colored in order
		assert.True(t, snapshot.Players[1].IsAI)
		assert.True(t, snapshot.Players[1].Connected)
		assert.Equal(t, entity.ColorBlue, snapshot.Players[1].Color)
		assert.Equal(t, entity.ColorGreen, snapshot.Players[2].Color)
	})

	t.Run("Each player owns four pieces at home", func(t *testing.T) {
		registry, _ := newTestRegistry(time.Hour)

		snapshot, _, err := registry.CreateRoom("Ada", entity.MaxPlayers, 1, "")

		require.NoError(t, err)
		require.Len(t, snapshot.Pieces, 2*entity.PiecesPerPlayer)
		for _, piece := range snapshot.Pieces {
			assert.True(t, piece.IsHome())
		}
	})
}

func TestRegistry_Routing(t *testing.T) {
	t.Run("Intents for unknown rooms are rejected", func(t *testing.T) {
		registry, _ := newTestRegistry(time.Hour)

		_, err := registry.Join("missing", "p1", "Ada")
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)

		assert.ErrorIs(t, registry.Start("missing", "p1"), apperror.ErrRoomNotFound)

		_, err = registry.Roll("missing", "p1")
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)

		_, err = registry.Move("missing", "p1", 0, 6)
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Join routes to the right room", func(t *testing.T) {
		registry, _ := newTestRegistry(time.Hour)

		first, _, err := registry.CreateRoom("Ada", entity.MaxPlayers, 0, "")
		require.NoError(t, err)
		second, _, err := registry.CreateRoom("Ben", entity.MaxPlayers, 0, "")
		require.NoError(t, err)

		snapshot, err := registry.Join(second.ID, "guest", "Cleo")
		require.NoError(t, err)

		assert.NotNil(t, snapshot.PlayerByID("guest"))

		firstInstance, err := registry.Get(first.ID)
		require.NoError(t, err)
		assert.Nil(t, firstInstance.Snapshot().PlayerByID("guest"))
	})

	t.Run("Rooms lists only waiting rooms", func(t *testing.T) {
		registry, _ := newTestRegistry(time.Hour)

		waiting, _, err := registry.CreateRoom("Ada", entity.MaxPlayers, 1, "")
		require.NoError(t, err)

		started, host, err := registry.CreateRoom("Ben", entity.MaxPlayers, 1, "")
		require.NoError(t, err)

		_, err = registry.Join(started.ID, host.ID, "Ben")
		require.NoError(t, err)
		require.NoError(t, registry.Start(started.ID, host.ID))

		open := registry.Rooms()

		require.Len(t, open, 1)
		assert.Equal(t, waiting.ID, open[0].ID)
	})
}

func TestRegistry_Eviction(t *testing.T) {
	t.Run("The sweep evicts idle rooms", func(t *testing.T) {
		// Given: a registry whose idle threshold is already exceeded
		registry, _ := newTestRegistry(time.Nanosecond)

		snapshot, _, err := registry.CreateRoom("Ada", entity.MaxPlayers, 0, "")
		require.NoError(t, err)

		time.Sleep(time.Millisecond)

		// When: the sweep runs
		registry.sweep()

		// Then: the room is gone
		_, err = registry.Get(snapshot.ID)
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("The sweep keeps active rooms", func(t *testing.T) {
		registry, _ := newTestRegistry(time.Hour)

		snapshot, _, err := registry.CreateRoom("Ada", entity.MaxPlayers, 0, "")
		require.NoError(t, err)

		registry.sweep()

		_, err = registry.Get(snapshot.ID)
		assert.NoError(t, err)
	})

	t.Run("An abandoning disconnect evicts the room immediately", func(t *testing.T) {
		registry, _ := newTestRegistry(time.Hour)

		snapshot, host, err := registry.CreateRoom("Ada", entity.MaxPlayers, 0, "")
		require.NoError(t, err)

		_, err = registry.Join(snapshot.ID, host.ID, "Ada")
		require.NoError(t, err)

		// When: the only human drops
		registry.Disconnect(snapshot.ID, host.ID)

		// Then: the abandoned room is already evicted
		_, err = registry.Get(snapshot.ID)
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}
