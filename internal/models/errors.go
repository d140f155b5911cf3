package models

import "errors"

// Error taxonomy shared by the storage, ledger and service layers.
// Lower layers wrap these with context; callers match with errors.Is.
var (
	// ErrValidation marks malformed input rejected before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an unknown bill, item or user.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks a missing or unresolvable bearer credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict marks a write that contradicts existing state, such as a
	// reused bill id or a private id bound to another public id.
	ErrConflict = errors.New("conflict")
)
