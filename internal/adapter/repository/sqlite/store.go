// Package sqlite implements domain.LedgerStore on a local SQLite file: the
// durable single-user store. State lives in a two-row key-value table, one
// JSON document for the position snapshot and one for the trade log.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite" // pure-Go SQLite driver

	"github.com/alphacore/alphacore-backend/internal/domain"
)

const (
	keyPositions = "positions"
	keyTrades    = "trades"
)

// Store is a SQLite-backed ledger store
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the ledger database at path
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ledger (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadPositions retrieves the stored snapshot
func (s *Store) LoadPositions(ctx context.Context) (domain.PositionSet, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM ledger WHERE key = ?", keyPositions).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	var positions domain.PositionSet
	if err := json.Unmarshal([]byte(raw), &positions); err != nil {
		return nil, fmt.Errorf("failed to decode positions: %w", err)
	}
	return positions, nil
}

// SavePositions replaces the stored snapshot
func (s *Store) SavePositions(ctx context.Context, positions domain.PositionSet) error {
	raw, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("failed to encode positions: %w", err)
	}
	if err := s.upsert(ctx, s.db, keyPositions, raw); err != nil {
		return fmt.Errorf("failed to save positions: %w", err)
	}
	return nil
}

// ListTrades returns all trades, most recent first
func (s *Store) ListTrades(ctx context.Context) ([]domain.TradeRecord, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM ledger WHERE key = ?", keyTrades).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.TradeRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}

	var trades []domain.TradeRecord
	if err := json.Unmarshal([]byte(raw), &trades); err != nil {
		return nil, fmt.Errorf("failed to decode trades: %w", err)
	}
	return trades, nil
}

// RecordTrade replaces the snapshot and prepends the trade to the log inside
// one SQLite transaction
func (s *Store) RecordTrade(ctx context.Context, positions domain.PositionSet, trade domain.TradeRecord) error {
	trades, err := s.ListTrades(ctx)
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.upsert(ctx, tx, keyPositions, rawPositions); err != nil {
		return fmt.Errorf("failed to save positions: %w", err)
	}
	if err := s.upsert(ctx, tx, keyTrades, rawTrades); err != nil {
		return fmt.Errorf("failed to save trades: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// execer covers both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) upsert(ctx context.Context, db execer, key string, value []byte) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO ledger (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, string(value), time.Now().Unix(),
	)
	return err
}
