// Package redis implements domain.LedgerStore using go-redis/v9. The ledger
// occupies two keys, one JSON document for the position snapshot and one for
// the trade log.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alphacore/alphacore-backend/internal/domain"
)

const (
	keyPositions = "alphacore:positions"
	keyTrades    = "alphacore:trades"
)

// Config holds connection parameters for the Redis client
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store is a Redis-backed ledger store
type Store struct {
	rdb *redis.Client
}

// NewStore creates a new Redis ledger store and pings it to verify
// connectivity
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &Store{rdb: rdb}, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.rdb.Close()
}

// LoadPositions retrieves the stored snapshot
func (s *Store) LoadPositions(ctx context.Context) (domain.PositionSet, error) {
	raw, err := s.rdb.Get(ctx, keyPositions).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get positions: %w", err)
	}

	var positions domain.PositionSet
	if err := json.Unmarshal(raw, &positions); err != nil {
		return nil, fmt.Errorf("redis: decode positions: %w", err)
	}
	return positions, nil
}

// SavePositions replaces the stored snapshot
func (s *Store) SavePositions(ctx context.Context, positions domain.PositionSet) error {
	raw, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("redis: encode positions: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPositions, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis: set positions: %w", err)
	}
	return nil
}

// ListTrades returns all trades, most recent first
func (s *Store) ListTrades(ctx context.Context) ([]domain.TradeRecord, error) {
	raw, err := s.rdb.Get(ctx, keyTrades).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.TradeRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get trades: %w", err)
	}

	var trades []domain.TradeRecord
	if err := json.Unmarshal(raw, &trades); err != nil {
		return nil, fmt.Errorf("redis: decode trades: %w", err)
	}
	return trades, nil
}

// RecordTrade replaces the snapshot and prepends the trade to the log. Both
// SETs go through one MULTI/EXEC pipeline so they land together.
func (s *Store) RecordTrade(ctx context.Context, positions domain.PositionSet, trade domain.TradeRecord) error {
	trades, err := s.ListTrades(ctx)
	if err != nil {
		return err
	}
	trades = append([]domain.TradeRecord{trade}, trades...)

	rawPositions, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("redis: encode positions: %w", err)
	}
	rawTrades, err := json.Marshal(trades)
	if err != nil {
		return fmt.Errorf("redis: encode trades: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, keyPositions, rawPositions, 0)
	pipe.Set(ctx, keyTrades, rawTrades, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: record trade: %w", err)
	}
	return nil
}
