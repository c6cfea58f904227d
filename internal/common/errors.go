// Package common defines shared constants and sentinel errors used across
// the account service layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Service-level errors.
	ErrorInvalidRequest = errors.New("invalid request")
	ErrorInternal       = errors.New("internal error")
	ErrorUnauthorized   = errors.New("unauthorized")
	ErrorForbidden      = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
