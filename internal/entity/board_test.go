package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoardGeometry(t *testing.T) {
	t.Run("Start cells are spaced 13 apart", func(t *testing.T) {
		// Given: the four colors in assignment order
		// Then: each start cell is 13 past the previous one
		for i, color := range Colors {
			assert.Equal(t, i*13, StartCell(color))
		}
	})

	t.Run("Every start cell is safe but not a star", func(t *testing.T) {
		for _, color := range Colors {
			assert.True(t, IsSafeCell(StartCell(color)))
			assert.False(t, IsStarCell(StartCell(color)))
		}
	})

	t.Run("Every star cell is safe", func(t *testing.T) {
		for _, cell := range []int{8, 21, 34, 47} {
			assert.True(t, IsStarCell(cell))
			assert.True(t, IsSafeCell(cell))
		}
	})

	t.Run("Exactly eight safe cells exist", func(t *testing.T) {
		count := 0
		for cell := 0; cell < PathLength; cell++ {
			if IsSafeCell(cell) {
				count++
			}
		}

		assert.Equal(t, 8, count)
	})

	t.Run("Entry cell lies 50 steps past the start", func(t *testing.T) {
		for _, color := range Colors {
			progress := (EntryCell(color) - StartCell(color) + PathLength) % PathLength
			assert.Equal(t, PathLength-2, progress)
		}
	})
}

func TestPiecePositions(t *testing.T) {
	t.Run("A piece at home is safe and unfinished", func(t *testing.T) {
		piece := &Piece{Color: ColorRed, Position: HomePosition()}

		assert.True(t, piece.IsHome())
		assert.True(t, piece.IsSafe())
		assert.False(t, piece.IsFinished())
	})

	t.Run("A piece on the terminal stretch offset is finished", func(t *testing.T) {
		piece := &Piece{Color: ColorRed, Position: StretchPosition(FinishOffset)}

		assert.True(t, piece.IsFinished())
		assert.Zero(t, piece.DistanceToFinish())
	})

	t.Run("Distance shrinks along the path", func(t *testing.T) {
		// Given: a blue piece on its start cell and one 10 steps ahead
		atStart := &Piece{Color: ColorBlue, Position: PathPosition(StartCell(ColorBlue))}
		ahead := &Piece{Color: ColorBlue, Position: PathPosition((StartCell(ColorBlue) + 10) % PathLength)}

		assert.Equal(t, atStart.DistanceToFinish()-10, ahead.DistanceToFinish())
	})

	t.Run("Progress wraps around the ring", func(t *testing.T) {
		// Given: a yellow piece that crossed cell zero
		piece := &Piece{Color: ColorYellow, Position: PathPosition(2)}

		// Then: progress counts from yellow's start at 39
		assert.Equal(t, 15, piece.Progress())
	})
}
