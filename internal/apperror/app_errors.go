package apperror

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrRoomNotWaiting      = errors.New("game has already started")
	ErrGameNotStarted      = errors.New("game is not started")
	ErrGameFinished        = errors.New("game is already finished")
	ErrNotYourTurn         = errors.New("it's not your turn")
	ErrNotHost             = errors.New("only the host can start the game")
	ErrNotEnoughPlayers    = errors.New("not enough players to start")
	ErrNoHumanPlayers      = errors.New("at least one human player is required")
	ErrAlreadyRolled       = errors.New("dice already rolled this turn")
	ErrNoPendingRoll       = errors.New("no dice roll to play")
	ErrDiceMismatch        = errors.New("dice value does not match the pending roll")
	ErrInvalidPiece        = errors.New("piece does not exist or is not yours")
	ErrIllegalMove         = errors.New("move is not legal")
	ErrDuplicateConnection = errors.New("player already has a live connection")
)
