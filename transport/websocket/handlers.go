package websocket

import (
	"encoding/json"
	"fmt"
)

func (that *Server) handleJoinRoom(c *client, raw json.RawMessage) error {
	log := that.logger.With("method", "handleJoinRoom")

	var payload JoinRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.RoomID == "" || payload.PlayerID == "" {
		return c.send("room:join", ErrorPayload{Error: "roomId and playerId are required"})
	}

	snapshot, err := that.registry.Join(payload.RoomID, payload.PlayerID, payload.Name)
	if err != nil {
		log.Error("failed to join room", "roomID", payload.RoomID, "playerID", payload.PlayerID, "error", err)
		return c.send("room:join", ErrorPayload{Error: err.Error()})
	}

	that.subscribe(c, payload.RoomID, payload.PlayerID)

	log.Info("player joined room", "roomID", payload.RoomID, "playerID", payload.PlayerID)

	return c.send("room:join", JoinedPayload{Room: snapshot, PlayerID: payload.PlayerID})
}

func (that *Server) handleStartGame(c *client, raw json.RawMessage) error {
	log := that.logger.With("method", "handleStartGame")

	var payload StartGamePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	roomID := payload.RoomID
	if roomID == "" {
		roomID = c.roomID
	}

	if err := that.registry.Start(roomID, c.playerID); err != nil {
		log.Error("failed to start game", "roomID", roomID, "error", err)
		return c.send("game:start", ErrorPayload{Error: err.Error()})
	}

	return nil
}

func (that *Server) handleRollDice(c *client, raw json.RawMessage) error {
	log := that.logger.With("method", "handleRollDice")

	var payload RollDicePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	roomID, playerID := c.roomID, c.playerID
	if payload.RoomID != "" {
		roomID = payload.RoomID
	}
	if payload.PlayerID != "" {
		playerID = payload.PlayerID
	}

	if _, err := that.registry.Roll(roomID, playerID); err != nil {
		log.Error("failed to roll dice", "roomID", roomID, "playerID", playerID, "error", err)
		return c.send("dice:roll", ErrorPayload{Error: err.Error()})
	}

	return nil
}

func (that *Server) handleMovePiece(c *client, raw json.RawMessage) error {
	log := that.logger.With("method", "handleMovePiece")

	var payload MovePiecePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	roomID, playerID := c.roomID, c.playerID
	if payload.RoomID != "" {
		roomID = payload.RoomID
	}
	if payload.PlayerID != "" {
		playerID = payload.PlayerID
	}

	if _, err := that.registry.Move(roomID, playerID, payload.PieceID, payload.DiceValue); err != nil {
		log.Error("failed to move piece", "roomID", roomID, "playerID", playerID, "pieceID", payload.PieceID, "error", err)
		return c.send("piece:move", ErrorPayload{Error: err.Error()})
	}

	return nil
}
