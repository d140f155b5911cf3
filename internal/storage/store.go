// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitclaim/internal/models"
)

// BillStore persists bill records. It provides atomicity of a single record's
// write; serialising read-modify-write cycles per bill is the caller's job.
type BillStore interface {
	// CreateBill persists a new bill.
	// Returns models.ErrConflict if a bill with the same ID already exists.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by its ID.
	// Returns models.ErrNotFound if the bill does not exist.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// PutBill atomically overwrites the stored bill with the same ID.
	// Returns models.ErrNotFound if the bill does not exist.
	PutBill(ctx context.Context, bill *models.Bill) error
}

// UserStore persists the user directory.
type UserStore interface {
	// GetUser retrieves a user by public ID. PrivateID is left empty.
	// Returns models.ErrNotFound if the user does not exist.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserByPrivateID retrieves the user bound to a bearer credential.
	// Returns models.ErrNotFound if no user holds it.
	GetUserByPrivateID(ctx context.Context, privateID string) (*models.User, error)

	// UpsertUser inserts the (publicID, privateID, name) triple, or updates the
	// name of the user already bound to privateID. Returns models.ErrConflict if
	// privateID is bound to a different public ID, or publicID to another
	// credential.
	UpsertUser(ctx context.Context, privateID, publicID, name string) (*models.User, error)
}

// Store combines bill and user storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger or service layers.
type Store interface {
	BillStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
