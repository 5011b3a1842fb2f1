package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user with this name or email already exists")

	// Game errors
	ErrGameNotFound = errors.New("game not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
)
