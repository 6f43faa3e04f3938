package models

import "errors"

// Rule violations. Handlers match them with errors.Is and turn them into
// HTTP status codes or error events.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("invalid or existing username")
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrRoomNotFull      = errors.New("room not full")
	ErrGameNotFound     = errors.New("game not found")
	ErrNotInGame        = errors.New("player is not part of this game")
	ErrAlreadyPlaced    = errors.New("ships already placed")
	ErrInvalidPlacement = errors.New("invalid ship placement")
	ErrGameNotReady     = errors.New("game not ready")
	ErrGameOver         = errors.New("game is over")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrOutOfBounds      = errors.New("position out of bounds")
	ErrAlreadyFired     = errors.New("already fired here")
)
