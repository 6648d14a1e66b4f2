package entity

type Zone string

const (
	ZoneHome    Zone = "home"
	ZonePath    Zone = "path"
	ZoneStretch Zone = "stretch"
)

// Position locates a piece: off the board at home, on a shared path cell, or
// at an offset inside its color's private home stretch.
type Position struct {
	Zone Zone `json:"zone"`
	Cell int  `json:"cell"`
}

func HomePosition() Position {
	return Position{Zone: ZoneHome, Cell: -1}
}

func PathPosition(cell int) Position {
	return Position{Zone: ZonePath, Cell: cell}
}

func StretchPosition(offset int) Position {
	return Position{Zone: ZoneStretch, Cell: offset}
}

type Piece struct {
	ID       int      `json:"id"`
	Color    Color    `json:"color"`
	Position Position `json:"position"`
}

func (that *Piece) IsHome() bool {
	return that.Position.Zone == ZoneHome
}

func (that *Piece) IsFinished() bool {
	return that.Position.Zone == ZoneStretch && that.Position.Cell == FinishOffset
}

// IsSafe is derived from position: home and the whole stretch are out of
// reach, and marked path cells forbid capture.
func (that *Piece) IsSafe() bool {
	switch that.Position.Zone {
	case ZoneHome, ZoneStretch:
		return true
	case ZonePath:
		return IsSafeCell(that.Position.Cell)
	default:
		return false
	}
}

// Progress returns how many path steps the piece has traveled from its
// color's start cell. Only meaningful for pieces on the path.
func (that *Piece) Progress() int {
	return (that.Position.Cell - StartCell(that.Color) + PathLength) % PathLength
}

// DistanceToFinish counts the steps remaining until the finished cell.
func (that *Piece) DistanceToFinish() int {
	switch that.Position.Zone {
	case ZoneHome:
		return PathLength - 1 + StretchLength
	case ZoneStretch:
		return FinishOffset - that.Position.Cell
	default:
		return (PathLength - 2 - that.Progress()) + StretchLength
	}
}
