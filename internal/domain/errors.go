package domain

import "errors"

var (
	// ErrUnknownAction rejects an action outside the fixed vocabulary.
	ErrUnknownAction = errors.New("unknown action")

	// ErrNegativeAmount rejects an event magnitude below zero.
	ErrNegativeAmount = errors.New("amount must be non-negative")

	// ErrInvalidSession rejects a non-positive session number.
	ErrInvalidSession = errors.New("session number must be positive")

	// ErrNoEligiblePlayers means no guild member holds the player role.
	ErrNoEligiblePlayers = errors.New("no members with the player role")
)
