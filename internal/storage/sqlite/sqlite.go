// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitclaim/internal/models"
	"github.com/mmynk/splitclaim/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps pragmas consistent and turns concurrent
	// writers from different bills into a queue instead of SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		return fmt.Errorf("%w: bill id required", models.ErrValidation)
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = time.Now().UTC()
	}

	items, err := encodeItems(bill.Items)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (id, name, created_at, items, total, currency)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		bill.ID, bill.Name, bill.CreatedAt.UnixMilli(), items, bill.Total, bill.Currency,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check inserted bill: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: bill %s already exists", models.ErrConflict, bill.ID)
	}

	return nil
}

// GetBill retrieves a bill by ID, including all items and their claimers.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var createdAt int64
	var items string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, items, total, currency FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.Name, &createdAt, &items, &bill.Total, &bill.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: bill %s", models.ErrNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	bill.CreatedAt = time.UnixMilli(createdAt).UTC()
	if err := json.Unmarshal([]byte(items), &bill.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items of bill %s: %w", billID, err)
	}

	return bill, nil
}

// PutBill overwrites the item list of an existing bill in one statement.
// Name, creation time, total and currency are immutable and left untouched.
func (s *SQLiteStore) PutBill(ctx context.Context, bill *models.Bill) error {
	items, err := encodeItems(bill.Items)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "UPDATE bills SET items = ? WHERE id = ?", items, bill.ID)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated bill: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: bill %s", models.ErrNotFound, bill.ID)
	}

	return nil
}

// encodeItems serialises items for storage, dropping anything derived.
func encodeItems(items []models.Item) (string, error) {
	stored := make([]models.Item, 0, len(items))
	for _, item := range items {
		if item.AutoDistributed {
			continue
		}
		if item.Claimers == nil {
			item.Claimers = []models.Claimer{}
		}
		stored = append(stored, item)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("failed to encode items: %w", err)
	}
	return string(data), nil
}
