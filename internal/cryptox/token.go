package cryptox

import "github.com/google/uuid"

// NewActionToken returns a fresh random (version 4) UUID used to confirm a
// self-registered account.
func NewActionToken() uuid.UUID {
	return uuid.New()
}
