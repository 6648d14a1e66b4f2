package entity

import (
	"time"
)

const (
	PhaseWaiting   = "waiting"
	PhasePlaying   = "playing"
	PhaseFinished  = "finished"
	PhaseAbandoned = "abandoned"
)

// Room is the aggregate root for one game: the ordered player list is the
// turn order, and every piece of every player lives in the flat Pieces list.
type Room struct {
	ID           string    `json:"id"`
	Players      []*Player `json:"players"`
	Pieces       []*Piece  `json:"pieces"`
	Phase        string    `json:"phase"`
	CurrentTurn  int       `json:"currentTurn"`
	PendingRoll  int       `json:"pendingRoll,omitempty"`
	WinnerID     string    `json:"winnerId,omitempty"`
	MaxPlayers   int       `json:"maxPlayers"`
	LastActivity time.Time `json:"-"`
}

func NewRoom(id string, maxPlayers int) *Room {
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		maxPlayers = MaxPlayers
	}

	return &Room{
		ID:           id,
		Phase:        PhaseWaiting,
		MaxPlayers:   maxPlayers,
		LastActivity: time.Now(),
	}
}

func (that *Room) IsWaiting() bool {
	return that.Phase == PhaseWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Phase == PhasePlaying
}

func (that *Room) IsFinished() bool {
	return that.Phase == PhaseFinished
}

func (that *Room) IsAbandoned() bool {
	return that.Phase == PhaseAbandoned
}

func (that *Room) HasPendingRoll() bool {
	return that.PendingRoll != 0
}

// AddPlayer appends the player to the turn order and deals their four pieces
// at home. Piece IDs are fixed per color so they survive reconnection.
func (that *Room) AddPlayer(player *Player) {
	that.Players = append(that.Players, player)

	colorIdx := 0
	for i, color := range Colors {
		if color == player.Color {
			colorIdx = i
			break
		}
	}

	for i := 0; i < PiecesPerPlayer; i++ {
		that.Pieces = append(that.Pieces, &Piece{
			ID:       colorIdx*PiecesPerPlayer + i,
			Color:    player.Color,
			Position: HomePosition(),
		})
	}
}

func (that *Room) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

func (that *Room) CurrentPlayer() *Player {
	if that.CurrentTurn < 0 || that.CurrentTurn >= len(that.Players) {
		return nil
	}

	return that.Players[that.CurrentTurn]
}

func (that *Room) PieceByID(id int) *Piece {
	for _, piece := range that.Pieces {
		if piece.ID == id {
			return piece
		}
	}

	return nil
}

func (that *Room) PiecesOf(color Color) []*Piece {
	pieces := make([]*Piece, 0, PiecesPerPlayer)
	for _, piece := range that.Pieces {
		if piece.Color == color {
			pieces = append(pieces, piece)
		}
	}

	return pieces
}

// PiecesAt returns every piece standing on the given path cell.
func (that *Room) PiecesAt(cell int) []*Piece {
	var pieces []*Piece
	for _, piece := range that.Pieces {
		if piece.Position.Zone == ZonePath && piece.Position.Cell == cell {
			pieces = append(pieces, piece)
		}
	}

	return pieces
}

// NextColor returns the first color not yet taken by a player.
func (that *Room) NextColor() (Color, bool) {
	taken := make(map[Color]struct{}, len(that.Players))
	for _, player := range that.Players {
		taken[player.Color] = struct{}{}
	}

	for _, color := range Colors {
		if _, ok := taken[color]; !ok {
			return color, true
		}
	}

	return "", false
}

func (that *Room) HumanCount() int {
	count := 0
	for _, player := range that.Players {
		if !player.IsAI {
			count++
		}
	}

	return count
}

func (that *Room) AICount() int {
	return len(that.Players) - that.HumanCount()
}

func (that *Room) ConnectedHumanCount() int {
	count := 0
	for _, player := range that.Players {
		if !player.IsAI && player.Connected {
			count++
		}
	}

	return count
}

func (that *Room) Touch() {
	that.LastActivity = time.Now()
}

// Clone returns a deep copy, used as an immutable snapshot for broadcasting
// and for move computation outside the room's critical section.
func (that *Room) Clone() *Room {
	clone := *that

	clone.Players = make([]*Player, len(that.Players))
	for i, player := range that.Players {
		p := *player
		clone.Players[i] = &p
	}

	clone.Pieces = make([]*Piece, len(that.Pieces))
	for i, piece := range that.Pieces {
		p := *piece
		clone.Pieces[i] = &p
	}

	return &clone
}
