package room

import (
	"context"

	"github.com/luminagames/ludo-backend/internal/entity"
	"github.com/luminagames/ludo-backend/internal/rules"
)

// Event actions broadcast to every connection subscribed to a room. Each
// accepted transition sends its discrete event followed by a full room
// snapshot under ActionRoomState.
const (
	ActionRoomState    = "room:state"
	ActionPlayerJoined = "player:joined"
	ActionPlayerLeft   = "player:left"
	ActionGameStarted  = "game:started"
	ActionDiceRolled   = "game:dice"
	ActionPieceMoved   = "game:move"
	ActionGameEnded    = "game:ended"
)

// Broadcaster delivers an event to every connection subscribed to a room.
// Implemented by the websocket transport.
type Broadcaster interface {
	Broadcast(roomID, action string, payload any)
}

// Mirror optionally copies room state to a durable store. The engine works
// the same with a nil mirror.
type Mirror interface {
	Save(ctx context.Context, room *entity.Room) error
	Delete(ctx context.Context, roomID string) error
}

type PlayerJoinedPayload struct {
	Player    *entity.Player `json:"player"`
	Reconnect bool           `json:"reconnect"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
}

type GameStartedPayload struct {
	CurrentTurn int `json:"currentTurn"`
}

type DiceRolledPayload struct {
	PlayerID  string `json:"playerId"`
	Value     int    `json:"value"`
	Forfeited bool   `json:"forfeited"`
}

type PieceMovedPayload struct {
	PlayerID  string     `json:"playerId"`
	Move      rules.Move `json:"move"`
	ExtraTurn bool       `json:"extraTurn"`
}

type GameEndedPayload struct {
	WinnerID  string `json:"winnerId,omitempty"`
	Abandoned bool   `json:"abandoned"`
}
