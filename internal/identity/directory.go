// Package identity implements the user directory: opaque bearer credentials
// (private ids) mapped to public user ids and display names.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/splitclaim/internal/actor"
	"github.com/mmynk/splitclaim/internal/models"
	"github.com/mmynk/splitclaim/internal/storage"
)

var privateIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-]{36}$`)

// ValidPrivateID reports whether s has the shape of a bearer credential.
func ValidPrivateID(s string) bool {
	return privateIDPattern.MatchString(s)
}

// NewPrivateID mints a fresh bearer credential.
func NewPrivateID() string {
	return uuid.NewString()
}

// Directory resolves and maintains users. Mutations are serialised per
// private id so concurrent upserts of one user never interleave.
type Directory struct {
	store   storage.UserStore
	writers *actor.Registry[string]
}

// NewDirectory creates a directory backed by store.
func NewDirectory(store storage.UserStore) *Directory {
	return &Directory{
		store:   store,
		writers: actor.NewRegistry[string](),
	}
}

// Upsert inserts the (publicID, privateID, name) triple or renames the user
// already bound to privateID. A privateID bound to a different public id
// fails with models.ErrConflict.
func (d *Directory) Upsert(ctx context.Context, privateID, publicID, name string) (*models.User, error) {
	if !ValidPrivateID(privateID) {
		return nil, fmt.Errorf("%w: malformed private id", models.ErrValidation)
	}
	if publicID == "" {
		return nil, fmt.Errorf("%w: public id required", models.ErrValidation)
	}
	if err := models.ValidateUserName(name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	var user *models.User
	err := d.writers.Do(ctx, privateID, func(ctx context.Context) error {
		var err error
		user, err = d.store.UpsertUser(ctx, privateID, publicID, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("User upserted", "user_id", user.ID)
	return user, nil
}

// Register is the caller-facing upsert. A privateID that resolves keeps its
// identity and only the name changes; an empty or unknown one mints a fresh
// credential and public id.
func (d *Directory) Register(ctx context.Context, privateID, name string) (*models.User, error) {
	if privateID != "" && ValidPrivateID(privateID) {
		existing, err := d.store.GetUserByPrivateID(ctx, privateID)
		switch {
		case err == nil:
			return d.Upsert(ctx, privateID, existing.ID, name)
		case !errors.Is(err, models.ErrNotFound):
			return nil, err
		}
	}

	user, err := d.Upsert(ctx, NewPrivateID(), uuid.NewString(), name)
	if err != nil {
		return nil, err
	}
	slog.Info("User registered", "user_id", user.ID)
	return user, nil
}

// Resolve returns the user holding privateID, or models.ErrNotFound.
func (d *Directory) Resolve(ctx context.Context, privateID string) (*models.User, error) {
	if !ValidPrivateID(privateID) {
		return nil, fmt.Errorf("%w: user", models.ErrNotFound)
	}
	return d.store.GetUserByPrivateID(ctx, privateID)
}

// Authenticate is Resolve for callers acting on behalf of the user: a
// missing, malformed or unknown credential is models.ErrUnauthorized.
func (d *Directory) Authenticate(ctx context.Context, privateID string) (*models.User, error) {
	if privateID == "" {
		return nil, fmt.Errorf("%w: credential required", models.ErrUnauthorized)
	}

	user, err := d.Resolve(ctx, privateID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown credential", models.ErrUnauthorized)
	}
	return user, err
}

// Lookup returns the user with the given public id.
func (d *Directory) Lookup(ctx context.Context, userID string) (*models.User, error) {
	return d.store.GetUser(ctx, userID)
}

// DisplayName returns the name shown for a public user id.
func (d *Directory) DisplayName(ctx context.Context, userID string) (string, error) {
	user, err := d.Lookup(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}
