package models

import "time"

// User represents a participant identity.
//
// ID is the public id and is freely shared with other viewers of a bill.
// PrivateID is the bearer credential: anyone holding it acts as this user,
// so it is excluded from JSON and only handed back to its owner explicitly.
type User struct {
	// ID is the public identifier (UUID format). Immutable once assigned.
	ID string `json:"id"`

	// PrivateID is the 36-character bearer credential.
	PrivateID string `json:"-"`

	// Name is the display name shown next to claims.
	Name string `json:"name"`

	// CreatedAt is when the user was first registered.
	CreatedAt time.Time `json:"-"`

	// UpdatedAt is when the display name last changed.
	UpdatedAt time.Time `json:"-"`
}
