package model

import "errors"

var (
	ErrGameFull           = errors.New("game is full")
	ErrNotInGame          = errors.New("player not in game")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrWaitingForOpponent = errors.New("waiting for opponent")
	ErrGameOver           = errors.New("game is over")
	ErrOutOfBounds        = errors.New("cell out of bounds")
	ErrAlreadyQueued      = errors.New("player already in queue")
	ErrNotAuthorized      = errors.New("not authorized to join this game")
	ErrAlreadyConnected   = errors.New("connection already exists")
)
