package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evenmoney/bookbot/internal/logger"
	"github.com/evenmoney/bookbot/internal/models"
)

// PGXDB is the subset of pgxpool.Pool the Postgres store needs. It lets
// tests inject a pool or a transaction.
type PGXDB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ PGXDB = (*pgxpool.Pool)(nil)

// Connect establishes a connection pool to the PostgreSQL database.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// PGStore persists the document as a single JSONB row in Postgres. The
// document contract is identical to the file backend: one slot, loaded
// and rewritten wholesale. The upsert makes each save one statement, so
// concurrent processes degrade to last-write-wins rather than torn
// documents.
type PGStore struct {
	db       PGXDB
	defaults models.AppState
}

// NewPGStore creates the app_state table if needed and returns the store.
// A missing or malformed document row loads as defaults.
func NewPGStore(ctx context.Context, db PGXDB, defaults models.AppState) (*PGStore, error) {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS app_state (
			key TEXT PRIMARY KEY,
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create app_state table: %w", err)
	}
	return &PGStore{db: db, defaults: defaults}, nil
}

// Load reads the document row. A missing row is a fresh install.
func (s *PGStore) Load(ctx context.Context) models.AppState {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT doc FROM app_state WHERE key = $1`, StateKey).Scan(&data)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			logger.Log.Error().Err(err).Msg("Failed to read state row")
		}
		return s.defaults
	}
	return decodeState(data, s.defaults)
}

// Save upserts the document row.
func (s *PGStore) Save(ctx context.Context, state models.AppState) {
	data := encodeState(state)
	if data == nil {
		return
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO app_state (key, doc) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
	`, StateKey, data)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to write state row")
	}
}

// Clear deletes the document row.
func (s *PGStore) Clear(ctx context.Context) {
	if _, err := s.db.Exec(ctx, `DELETE FROM app_state WHERE key = $1`, StateKey); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to delete state row")
	}
}
