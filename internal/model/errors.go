package model

import "errors"

// Common errors used across the application
var (
	// Join validation errors
	ErrInvalidGameID     = errors.New("invalid game ID")
	ErrInvalidPlayerName = errors.New("invalid player name")
	ErrInvalidPlayerRole = errors.New("invalid player role")

	// Join conflict errors
	ErrRoleAlreadyTaken = errors.New("role already taken")
	ErrGameFull         = errors.New("game is full")

	// Lookup errors
	ErrGameNotFound = errors.New("game not found")

	// Turn-order errors
	ErrNotInAGame    = errors.New("not in a game")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrCannotEndTurn = errors.New("cannot end turn")
)
