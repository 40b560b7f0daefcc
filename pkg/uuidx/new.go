// Package uuidx generates the time-ordered identifiers used for call
// tracking.
package uuidx

import "github.com/google/uuid"

// New generates a v7 UUID and panics if generation fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString generates a v7 UUID rendered as a string.
func NewString() string {
	return New().String()
}
