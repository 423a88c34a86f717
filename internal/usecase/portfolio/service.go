package portfolio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphacore/alphacore-backend/internal/domain"
	"github.com/alphacore/alphacore-backend/internal/usecase/accounting"
)

// PortfolioService is the trade-execution and position-accounting engine. It
// owns all ledger invariants: conservation of value, non-negative balances
// and the weighted-average-cost rule. Storage is injected so tests can run
// against an in-memory fake.
type PortfolioService struct {
	Store domain.LedgerStore

	// mu serializes the fetch-validate-persist cycle of ExecuteOrder and
	// AppendManualPosition. Both load the latest snapshot under this lock,
	// so a writer can never validate against a snapshot another writer is
	// about to replace.
	mu sync.Mutex
}

// NewPortfolioService creates a new PortfolioService instance
func NewPortfolioService(store domain.LedgerStore) *PortfolioService {
	return &PortfolioService{Store: store}
}

// LoadPositions returns the current position set. If the store holds no
// snapshot the default allocation is written and returned instead. A storage
// read failure is treated as "no data", never surfaced: the caller always
// gets a usable set.
func (s *PortfolioService) LoadPositions(ctx context.Context) (domain.PositionSet, error) {
	positions, err := s.Store.LoadPositions(ctx)
	if err == nil {
		return positions, nil
	}

	seed := DefaultAllocation()

	// A failed seed write still hands back the default set; the next
	// LoadPositions simply retries the seeding.
	_ = s.Store.SavePositions(ctx, seed)

	return seed, nil
}

// ExecuteOrder validates the order against the latest stored snapshot,
// applies the weighted-average-cost accounting rule and persists the
// resulting snapshot together with the trade record as one atomic unit.
// Logic:
//  1. Load the current snapshot. The mutex is held across the whole
//     fetch-validate-persist cycle, so no two orders can validate against
//     the same snapshot and overwrite each other's result
//  2. Apply the order to a copy of the snapshot (no partial application:
//     validation failures leave everything untouched)
//  3. Build the trade record
//  4. Persist snapshot + trade via LedgerStore.RecordTrade; a storage failure
//     surfaces as ErrPersistence and discards the in-memory result
//  5. Return the new snapshot and the record so the caller can re-render
//     without a re-read
func (s *PortfolioService) ExecuteOrder(ctx context.Context, order domain.Order) (domain.PositionSet, *domain.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.LoadPositions(ctx)
	if err != nil {
		return nil, nil, err
	}

	next, err := accounting.ApplyOrder(current, order)
	if err != nil {
		return nil, nil, err
	}

	trade := domain.NewTradeRecord(order, time.Now())

	if err := s.Store.RecordTrade(ctx, next, trade); err != nil {
		return nil, nil, fmt.Errorf("%w: recording trade: %s", domain.ErrPersistence, err)
	}

	return next, &trade, nil
}

// ListTrades returns all recorded trades, most recent first. An empty ledger
// yields an empty slice, not an error.
func (s *PortfolioService) ListTrades(ctx context.Context) ([]domain.TradeRecord, error) {
	trades, err := s.Store.ListTrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing trades: %s", domain.ErrPersistence, err)
	}
	if trades == nil {
		trades = []domain.TradeRecord{}
	}
	return trades, nil
}

// AppendManualPosition adds a position outside the buy/sell flow (e.g. an
// initial import), assigns a fresh id, persists and returns the new set. A
// symbol that is already held is merged under the weighted-average-cost rule
// so the set never grows a duplicate row.
func (s *PortfolioService) AppendManualPosition(ctx context.Context, pos domain.Position) (domain.PositionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.LoadPositions(ctx)
	if err != nil {
		return nil, err
	}

	next, err := accounting.MergePosition(current, pos)
	if err != nil {
		return nil, err
	}

	if err := s.Store.SavePositions(ctx, next); err != nil {
		return nil, fmt.Errorf("%w: saving positions: %s", domain.ErrPersistence, err)
	}

	return next, nil
}

// Summary aggregates a snapshot for presentation callers
type Summary struct {
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	TotalProfit   decimal.Decimal `json:"totalProfit"`
	ProfitPercent decimal.Decimal `json:"profitPercent"`
	CashBalance   decimal.Decimal `json:"cashBalance"`
}

// Summarize values a snapshot against the given price map. A symbol with no
// quoted price is valued at its average cost (book value), matching how the
// ledger displays holdings when quotes are unavailable.
func Summarize(positions domain.PositionSet, prices map[string]decimal.Decimal) Summary {
	var (
		totalValue = decimal.Zero
		totalCost  = decimal.Zero
	)

	for i := range positions {
		p := &positions[i]
		if p.Kind == domain.AssetKindCash {
			totalValue = totalValue.Add(p.Quantity)
			continue
		}

		price, ok := prices[p.Symbol]
		if !ok {
			price = p.AverageCost
		}

		totalValue = totalValue.Add(p.MarketValue(price))
		totalCost = totalCost.Add(p.BookValue())
	}

	cash := positions.CashBalance()
	profit := totalValue.Sub(cash).Sub(totalCost)

	profitPercent := decimal.Zero
	if totalCost.IsPositive() {
		profitPercent = profit.Div(totalCost).Mul(decimal.NewFromInt(100))
	}

	return Summary{
		TotalValue:    totalValue,
		TotalCost:     totalCost,
		TotalProfit:   profit,
		ProfitPercent: profitPercent,
		CashBalance:   cash,
	}
}
