package bot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminagames/ludo-backend/internal/entity"
)

func newTestRoom(colors ...entity.Color) *entity.Room {
	room := entity.NewRoom("r1", entity.MaxPlayers)
	for i, color := range colors {
		player := entity.NewPlayer(string(color), string(color), color, i == 0)
		player.Connected = true
		room.AddPlayer(player)
	}
	room.Phase = entity.PhasePlaying

	return room
}

func newTestSelector() *Selector {
	return NewSelectorWithRand(rand.New(rand.NewSource(1)))
}

func TestSelectMove_NoLegalMoves(t *testing.T) {
	// Given: all red pieces at home and a roll that cannot leave home
	room := newTestRoom(entity.ColorRed, entity.ColorBlue)

	move := newTestSelector().SelectMove(room, "red", 3, entity.DifficultyMedium)

	assert.Nil(t, move)
}

func TestSelectMove_WinningMoveIsForced(t *testing.T) {
	// Given: three finished pieces and one a single step from the terminal cell
	room := newTestRoom(entity.ColorRed, entity.ColorBlue)
	pieces := room.PiecesOf(entity.ColorRed)
	for _, piece := range pieces[:3] {
		piece.Position = entity.StretchPosition(entity.FinishOffset)
	}
	pieces[3].Position = entity.StretchPosition(entity.FinishOffset - 1)

	move := newTestSelector().SelectMove(room, "red", 1, entity.DifficultyHard)

	require.NotNil(t, move)
	assert.Equal(t, pieces[3].ID, move.PieceID)
	assert.Equal(t, entity.StretchPosition(entity.FinishOffset), move.To)
}

func TestSelectMove_PrefersCaptureOverProgress(t *testing.T) {
	// Given: two red pieces where only one can capture
	room := newTestRoom(entity.ColorRed, entity.ColorBlue)
	red := room.PiecesOf(entity.ColorRed)
	blue := room.PiecesOf(entity.ColorBlue)
	red[0].Position = entity.PathPosition(1)
	red[1].Position = entity.PathPosition(30)
	blue[0].Position = entity.PathPosition(4)

	move := newTestSelector().SelectMove(room, "red", 3, entity.DifficultyHard)

	require.NotNil(t, move)
	assert.Equal(t, red[0].ID, move.PieceID)
	require.Len(t, move.Captures, 1)
}

func TestSelectMove_LeavesHomeOnSix(t *testing.T) {
	// Given: one red piece mid-path and three at home
	room := newTestRoom(entity.ColorRed, entity.ColorBlue)
	red := room.PiecesOf(entity.ColorRed)
	red[0].Position = entity.PathPosition(20)

	move := newTestSelector().SelectMove(room, "red", 6, entity.DifficultyHard)

	// Then: bringing a piece out beats plain advancement
	require.NotNil(t, move)
	assert.Equal(t, entity.ZoneHome, move.From.Zone)
}

func TestSelectMove_EasyDoesNotBlunderAwayClearBestMove(t *testing.T) {
	// Given: a capture far ahead of the runner-up on the base evaluation
	room := newTestRoom(entity.ColorRed, entity.ColorBlue)
	red := room.PiecesOf(entity.ColorRed)
	blue := room.PiecesOf(entity.ColorBlue)
	red[0].Position = entity.PathPosition(1)
	red[1].Position = entity.PathPosition(30)
	blue[0].Position = entity.PathPosition(4)

	selector := newTestSelector()

	// Then: easy never trades the capture for plain progress
	for i := 0; i < 100; i++ {
		move := selector.SelectMove(room, "red", 3, entity.DifficultyEasy)

		require.NotNil(t, move)
		assert.Equal(t, red[0].ID, move.PieceID)
	}
}

func TestSelectMove_EasyStillPicksLegalMoves(t *testing.T) {
	// Given: a spread of options under the jittery easy tier
	room := newTestRoom(entity.ColorRed, entity.ColorBlue)
	red := room.PiecesOf(entity.ColorRed)
	red[0].Position = entity.PathPosition(1)
	red[1].Position = entity.PathPosition(10)
	red[2].Position = entity.PathPosition(20)

	selector := newTestSelector()

	for i := 0; i < 50; i++ {
		move := selector.SelectMove(room, "red", 2, entity.DifficultyEasy)

		require.NotNil(t, move)
		owner := room.PieceByID(move.PieceID)
		assert.Equal(t, entity.ColorRed, owner.Color)
	}
}

func TestThinkDelay_WithinTierBounds(t *testing.T) {
	selector := newTestSelector()

	for i := 0; i < 20; i++ {
		easy := selector.ThinkDelay(entity.DifficultyEasy)
		assert.GreaterOrEqual(t, easy.Milliseconds(), int64(800))
		assert.LessOrEqual(t, easy.Milliseconds(), int64(2000))

		hard := selector.ThinkDelay(entity.DifficultyHard)
		assert.GreaterOrEqual(t, hard.Milliseconds(), int64(300))
		assert.LessOrEqual(t, hard.Milliseconds(), int64(1000))
	}
}

func TestCapturableNextRoll(t *testing.T) {
	t.Run("A piece within dice range of an opponent is capturable", func(t *testing.T) {
		// Given: blue three cells behind a red piece on a plain cell
		room := newTestRoom(entity.ColorRed, entity.ColorBlue)
		red := room.PiecesOf(entity.ColorRed)[0]
		blue := room.PiecesOf(entity.ColorBlue)[0]
		red.Position = entity.PathPosition(7)
		blue.Position = entity.PathPosition(4)

		assert.True(t, capturableNextRoll(room, red))
	})

	t.Run("A piece on a safe cell is never capturable", func(t *testing.T) {
		room := newTestRoom(entity.ColorRed, entity.ColorBlue)
		red := room.PiecesOf(entity.ColorRed)[0]
		blue := room.PiecesOf(entity.ColorBlue)[0]
		red.Position = entity.PathPosition(8)
		blue.Position = entity.PathPosition(4)

		assert.False(t, capturableNextRoll(room, red))
	})

	t.Run("A piece out of reach is not capturable", func(t *testing.T) {
		room := newTestRoom(entity.ColorRed, entity.ColorBlue)
		red := room.PiecesOf(entity.ColorRed)[0]
		blue := room.PiecesOf(entity.ColorBlue)[0]
		red.Position = entity.PathPosition(30)
		blue.Position = entity.PathPosition(4)

		assert.False(t, capturableNextRoll(room, red))
	})
}
