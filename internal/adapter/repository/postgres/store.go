package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/alphacore/alphacore-backend/internal/domain"
)

const (
	keyPositions = "positions"
	keyTrades    = "trades"
)

// DB is the shared PostgreSQL connection handle
type DB struct {
	*sql.DB
}

// NewDB opens and pings a PostgreSQL connection. connectionString is a lib/pq
// DSN, e.g. "host=localhost port=5432 user=postgres dbname=alphacore
// sslmode=disable".
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// ledgerStore implements domain.LedgerStore on PostgreSQL. The layout matches
// the other adapters: a two-row key-value table holding the position snapshot
// and the trade log as JSON documents.
type ledgerStore struct {
	db *DB
}

// NewLedgerStore creates a new postgres ledger store and ensures the ledger
// table exists
func NewLedgerStore(db *DB) (domain.LedgerStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ledger (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger table: %w", err)
	}

	return &ledgerStore{db: db}, nil
}

// LoadPositions retrieves the stored snapshot
func (r *ledgerStore) LoadPositions(ctx context.Context) (domain.PositionSet, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, "SELECT value FROM ledger WHERE key = $1", keyPositions).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	var positions domain.PositionSet
	if err := json.Unmarshal(raw, &positions); err != nil {
		return nil, fmt.Errorf("failed to decode positions: %w", err)
	}
	return positions, nil
}

// SavePositions replaces the stored snapshot
func (r *ledgerStore) SavePositions(ctx context.Context, positions domain.PositionSet) error {
	raw, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("failed to encode positions: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, upsertQuery, keyPositions, raw, time.Now()); err != nil {
		return fmt.Errorf("failed to save positions: %w", err)
	}
	return nil
}

// ListTrades returns all trades, most recent first
func (r *ledgerStore) ListTrades(ctx context.Context) ([]domain.TradeRecord, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, "SELECT value FROM ledger WHERE key = $1", keyTrades).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.TradeRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}

	var trades []domain.TradeRecord
	if err := json.Unmarshal(raw, &trades); err != nil {
		return nil, fmt.Errorf("failed to decode trades: %w", err)
	}
	return trades, nil
}

// RecordTrade replaces the snapshot and prepends the trade to the log in a
// single database transaction
func (r *ledgerStore) RecordTrade(ctx context.Context, positions domain.PositionSet, trade domain.TradeRecord) error {
	trades, err := r.ListTrades(ctx)
	if err != nil {
		return err
	}
	trades = append([]domain.TradeRecord{trade}, trades...)

	rawPositions, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("failed to encode positions: %w", err)
	}
	rawTrades, err := json.Marshal(trades)
	if err != nil {
		return fmt.Errorf("failed to encode trades: %w", err)
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	now := time.Now()
	if _, err := dbTx.ExecContext(ctx, upsertQuery, keyPositions, rawPositions, now); err != nil {
		return fmt.Errorf("failed to save positions: %w", err)
	}
	if _, err := dbTx.ExecContext(ctx, upsertQuery, keyTrades, rawTrades, now); err != nil {
		return fmt.Errorf("failed to save trades: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const upsertQuery = `
	INSERT INTO ledger (key, value, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`
