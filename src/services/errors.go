package services

import "errors"

// Callers match these with errors.Is; details are wrapped around them with %w.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("invalid input")
	ErrStorage          = errors.New("storage failure")
	ErrConflict         = errors.New("already exists")
	ErrUnauthorized     = errors.New("unauthorized")
)
