package websocket

import (
	"encoding/json"

	"github.com/luminagames/ludo-backend/internal/entity"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound intent payloads.
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
}

type StartGamePayload struct {
	RoomID string `json:"roomId"`
}

type RollDicePayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type MovePiecePayload struct {
	RoomID    string `json:"roomId"`
	PlayerID  string `json:"playerId"`
	PieceID   int    `json:"pieceId"`
	DiceValue int    `json:"diceValue"`
}

// ErrorPayload is sent only to the connection whose intent was rejected.
type ErrorPayload struct {
	Error string `json:"error"`
}

type JoinedPayload struct {
	Room     *entity.Room `json:"room"`
	PlayerID string       `json:"playerId"`
}
