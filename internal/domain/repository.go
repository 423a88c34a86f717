package domain

import "context"

// LedgerStore defines the interface for durable ledger persistence. It holds
// two independent collections: the current position snapshot and the
// append-only trade log. Pure storage; no business rules.
type LedgerStore interface {
	// LoadPositions retrieves the stored position snapshot.
	// Returns ErrNotFound when no snapshot has ever been written.
	LoadPositions(ctx context.Context) (PositionSet, error)

	// SavePositions replaces the stored snapshot with the given set
	SavePositions(ctx context.Context, positions PositionSet) error

	// ListTrades retrieves all recorded trades, most recent first.
	// Returns an empty slice when none exist.
	ListTrades(ctx context.Context) ([]TradeRecord, error)

	// RecordTrade replaces the stored snapshot and prepends the trade to the
	// log as a single atomic unit: either both writes land or neither does
	RecordTrade(ctx context.Context, positions PositionSet, trade TradeRecord) error
}
