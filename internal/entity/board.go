package entity

// Board geometry. The shared path is a ring of 52 cells; each color owns a
// private home stretch of 6 cells, the last of which is the finished cell.
const (
	PathLength    = 52
	StretchLength = 6
	FinishOffset  = StretchLength - 1

	PiecesPerPlayer = 4

	MinPlayers = 2
	MaxPlayers = 4

	DiceMin = 1
	DiceMax = 6

	// RollToStart is the only dice value that lets a piece leave home.
	RollToStart = 6
)

type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
)

// Colors is the fixed assignment order for joining players.
var Colors = [MaxPlayers]Color{ColorRed, ColorBlue, ColorGreen, ColorYellow}

var startCells = map[Color]int{
	ColorRed:    0,
	ColorBlue:   13,
	ColorGreen:  26,
	ColorYellow: 39,
}

// entryCells is the last path cell each color visits before turning into
// its home stretch, 50 steps past its start.
var entryCells = map[Color]int{
	ColorRed:    50,
	ColorBlue:   11,
	ColorGreen:  24,
	ColorYellow: 37,
}

var safeCells = map[int]struct{}{
	0: {}, 8: {}, 13: {}, 21: {}, 26: {}, 34: {}, 39: {}, 47: {},
}

var starCells = map[int]struct{}{
	8: {}, 21: {}, 34: {}, 47: {},
}

// StartCell returns the path cell a piece of the given color enters on.
func StartCell(color Color) int {
	return startCells[color]
}

// EntryCell returns the path cell from which the given color turns into its
// home stretch.
func EntryCell(color Color) int {
	return entryCells[color]
}

// IsSafeCell reports whether captures are forbidden on the given path cell.
func IsSafeCell(cell int) bool {
	_, ok := safeCells[cell]
	return ok
}

// IsStarCell reports whether the given path cell is a star. Stars are safe
// cells with no rule difference beyond move scoring.
func IsStarCell(cell int) bool {
	_, ok := starCells[cell]
	return ok
}
