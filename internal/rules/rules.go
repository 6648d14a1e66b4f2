// Package rules computes legal moves and their consequences. Every function
// is a pure function over a room snapshot; nothing here mutates the input.
package rules

import (
	"github.com/luminagames/ludo-backend/internal/entity"
)

// Move is an ephemeral description of one legal application of a roll to one
// piece. It is computed on demand and never stored.
type Move struct {
	PieceID  int             `json:"pieceId"`
	From     entity.Position `json:"from"`
	To       entity.Position `json:"to"`
	Captures []int           `json:"captures,omitempty"`
}

// LegalMoves produces at most one move per piece the player owns. Illegal
// options are simply omitted.
func LegalMoves(room *entity.Room, playerID string, roll int) []Move {
	player := room.PlayerByID(playerID)
	if player == nil || roll < entity.DiceMin || roll > entity.DiceMax {
		return nil
	}

	var moves []Move

	for _, piece := range room.PiecesOf(player.Color) {
		to, ok := destination(piece, roll)
		if !ok {
			continue
		}

		if blockedBySameColor(room, piece, to) {
			continue
		}

		moves = append(moves, Move{
			PieceID:  piece.ID,
			From:     piece.Position,
			To:       to,
			Captures: captures(room, piece.Color, to),
		})
	}

	return moves
}

// FindMove returns the legal move for the given piece under the given roll,
// if one exists.
func FindMove(room *entity.Room, playerID string, pieceID, roll int) (Move, bool) {
	for _, move := range LegalMoves(room, playerID, roll) {
		if move.PieceID == pieceID {
			return move, true
		}
	}

	return Move{}, false
}

// ApplyMove relocates the piece on a copy of the room and sends every
// captured piece home. The move must come from LegalMoves for the same
// snapshot.
func ApplyMove(room *entity.Room, move Move) (*entity.Room, []*entity.Piece) {
	next := room.Clone()

	piece := next.PieceByID(move.PieceID)
	piece.Position = move.To

	var captured []*entity.Piece
	for _, id := range move.Captures {
		victim := next.PieceByID(id)
		victim.Position = entity.HomePosition()
		captured = append(captured, victim)
	}

	return next, captured
}

// HasWon reports whether all of the player's pieces stand on the finished
// cell of their home stretch.
func HasWon(room *entity.Room, playerID string) bool {
	player := room.PlayerByID(playerID)
	if player == nil {
		return false
	}

	pieces := room.PiecesOf(player.Color)
	if len(pieces) == 0 {
		return false
	}

	for _, piece := range pieces {
		if !piece.IsFinished() {
			return false
		}
	}

	return true
}

// GrantsExtraTurn reports whether the player rolls again instead of passing
// the turn: after a six or after any capture.
func GrantsExtraTurn(roll, capturedCount int) bool {
	return roll == entity.DiceMax || capturedCount > 0
}

// NextTurn returns the index of the next player in join order, skipping
// disconnected players. If every other player is disconnected the turn stays
// where it is.
func NextTurn(room *entity.Room) int {
	total := len(room.Players)
	if total == 0 {
		return room.CurrentTurn
	}

	for step := 1; step < total; step++ {
		idx := (room.CurrentTurn + step) % total
		if room.Players[idx].Connected {
			return idx
		}
	}

	return room.CurrentTurn
}

// destination computes where the piece lands after roll steps, or reports
// that no landing exists.
func destination(piece *entity.Piece, roll int) (entity.Position, bool) {
	switch piece.Position.Zone {
	case entity.ZoneHome:
		if roll != entity.RollToStart {
			return entity.Position{}, false
		}
		return entity.PathPosition(entity.StartCell(piece.Color)), true

	case entity.ZoneStretch:
		offset := piece.Position.Cell + roll
		if offset > entity.FinishOffset {
			return entity.Position{}, false
		}
		return entity.StretchPosition(offset), true

	case entity.ZonePath:
		entryProgress := (entity.EntryCell(piece.Color) - entity.StartCell(piece.Color) + entity.PathLength) % entity.PathLength

		progress := piece.Progress() + roll
		if progress <= entryProgress {
			return entity.PathPosition((piece.Position.Cell + roll) % entity.PathLength), true
		}

		// Excess steps past the entry cell redirect into the stretch.
		offset := progress - entryProgress - 1
		if offset > entity.FinishOffset {
			return entity.Position{}, false
		}
		return entity.StretchPosition(offset), true

	default:
		return entity.Position{}, false
	}
}

// blockedBySameColor reports whether another piece of the mover's color
// already stands on the destination. Only path cells are exclusive; stretch
// cells are private to the color and may stack.
func blockedBySameColor(room *entity.Room, piece *entity.Piece, to entity.Position) bool {
	if to.Zone != entity.ZonePath {
		return false
	}

	for _, other := range room.PiecesAt(to.Cell) {
		if other.ID != piece.ID && other.Color == piece.Color {
			return true
		}
	}

	return false
}

// captures lists the opposing pieces a landing on the destination would send
// home. Captures never happen on safe cells or inside a home stretch.
func captures(room *entity.Room, mover entity.Color, to entity.Position) []int {
	if to.Zone != entity.ZonePath || entity.IsSafeCell(to.Cell) {
		return nil
	}

	var ids []int
	for _, other := range room.PiecesAt(to.Cell) {
		if other.Color != mover {
			ids = append(ids, other.ID)
		}
	}

	return ids
}
