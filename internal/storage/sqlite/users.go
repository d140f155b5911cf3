package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/mmynk/splitclaim/internal/models"
)

// hashPrivateID returns the digest under which a bearer credential is stored.
func hashPrivateID(privateID string) string {
	sum := blake2b.Sum256([]byte(privateID))
	return hex.EncodeToString(sum[:])
}

// GetUser retrieves a user by their public ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByPrivateID retrieves the user holding the given bearer credential.
func (s *SQLiteStore) GetUserByPrivateID(ctx context.Context, privateID string) (*models.User, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM users
		WHERE private_id_hash = ?
	`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, hashPrivateID(privateID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by private ID: %w", err)
	}

	user.PrivateID = privateID
	return user, nil
}

// UpsertUser inserts a new user or renames the one bound to privateID.
func (s *SQLiteStore) UpsertUser(ctx context.Context, privateID, publicID, name string) (*models.User, error) {
	hash := hashPrivateID(privateID)
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanUser(tx.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM users WHERE private_id_hash = ?",
		hash,
	))

	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, private_id_hash, name, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT DO NOTHING`,
			publicID, hash, name, now.UnixMilli(), now.UnixMilli(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to check created user: %w", err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: public id %s already bound", models.ErrConflict, publicID)
		}
		existing = &models.User{ID: publicID, CreatedAt: now}

	case err != nil:
		return nil, fmt.Errorf("failed to get user by private ID: %w", err)

	default:
		if existing.ID != publicID {
			return nil, fmt.Errorf("%w: public id mismatch", models.ErrConflict)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET name = ?, updated_at = ? WHERE private_id_hash = ?",
			name, now.UnixMilli(), hash,
		); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	existing.PrivateID = privateID
	existing.Name = name
	existing.UpdatedAt = now
	return existing, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var createdAt, updatedAt int64
	if err := row.Scan(&user.ID, &user.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	user.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return user, nil
}
