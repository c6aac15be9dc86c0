package domain

import "errors"

// Sentinel errors shared by services and repositories. Handlers map these
// onto HTTP status codes.
var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotOwner           = errors.New("appointment belongs to another hospital")
	ErrNotPending         = errors.New("appointment already decided")
	ErrAlreadyCancelled   = errors.New("appointment already cancelled")
	ErrNoBedsAvailable    = errors.New("no beds available")
)
