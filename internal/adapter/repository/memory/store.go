// Package memory implements domain.LedgerStore with process-local state.
// It backs tests and quote-simulation runs that need no durability.
package memory

import (
	"context"
	"sync"

	"github.com/alphacore/alphacore-backend/internal/domain"
)

// Store is an in-memory ledger store. All methods deep-copy on the way in and
// out so callers can never alias the stored snapshot.
type Store struct {
	mu          sync.RWMutex
	hasSnapshot bool
	positions   domain.PositionSet
	trades      []domain.TradeRecord
}

// NewStore creates an empty in-memory ledger store
func NewStore() *Store {
	return &Store{}
}

// LoadPositions retrieves the stored snapshot
func (s *Store) LoadPositions(ctx context.Context) (domain.PositionSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasSnapshot {
		return nil, domain.ErrNotFound
	}
	return s.positions.Clone(), nil
}

// SavePositions replaces the stored snapshot
func (s *Store) SavePositions(ctx context.Context, positions domain.PositionSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positions = positions.Clone()
	s.hasSnapshot = true
	return nil
}

// ListTrades returns all trades, most recent first
func (s *Store) ListTrades(ctx context.Context) ([]domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TradeRecord, len(s.trades))
	copy(out, s.trades)
	return out, nil
}

// RecordTrade replaces the snapshot and prepends the trade under one lock,
// so both writes land together
func (s *Store) RecordTrade(ctx context.Context, positions domain.PositionSet, trade domain.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positions = positions.Clone()
	s.hasSnapshot = true
	s.trades = append([]domain.TradeRecord{trade}, s.trades...)
	return nil
}
