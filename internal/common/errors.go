// Package common defines shared constants and sentinel errors used across
// tabshare components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUsernameTaken     = errors.New("username already taken")

	// Tab store errors.
	ErrNotAllowed  = errors.New("file type not allowed")
	ErrIDCollision = errors.New("id collision")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
