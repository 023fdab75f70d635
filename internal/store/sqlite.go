package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores loan data as JSON documents in a single table.
type SQLite struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLite opens the database at dbPath and migrates its schema.
// Use ":memory:" for an in-memory database.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &SQLite{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS loan_data (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the loan data stored under id.
func (s *SQLite) Get(ctx context.Context, id string) (LoanData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM loan_data WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return LoanData{}, ErrNotFound
	}
	if err != nil {
		return LoanData{}, fmt.Errorf("failed to query loan data %s: %w", id, err)
	}

	var data LoanData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return LoanData{}, fmt.Errorf("failed to decode loan data %s: %w", id, err)
	}
	return data, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Save upserts data under id.
func (s *SQLite) Save(ctx context.Context, id string, data LoanData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := upsert(ctx, s.db, id, data)
	return err
}

// Update merges partial into the data stored under id inside one
// transaction.
func (s *SQLite) Update(ctx context.Context, id string, partial LoanData) (LoanData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LoanData{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT data FROM loan_data WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return LoanData{}, ErrNotFound
	}
	if err != nil {
		return LoanData{}, fmt.Errorf("failed to query loan data %s: %w", id, err)
	}

	var existing LoanData
	if err := json.Unmarshal([]byte(raw), &existing); err != nil {
		return LoanData{}, fmt.Errorf("failed to decode loan data %s: %w", id, err)
	}

	merged, err := upsert(ctx, tx, id, existing.Merge(partial))
	if err != nil {
		return LoanData{}, err
	}
	if err := tx.Commit(); err != nil {
		return LoanData{}, fmt.Errorf("failed to commit loan data %s: %w", id, err)
	}
	return merged, nil
}

func upsert(ctx context.Context, db execer, id string, data LoanData) (LoanData, error) {
	data.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(data)
	if err != nil {
		return LoanData{}, fmt.Errorf("failed to encode loan data %s: %w", id, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO loan_data (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, id, string(raw), data.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return LoanData{}, fmt.Errorf("failed to save loan data %s: %w", id, err)
	}
	return data, nil
}
