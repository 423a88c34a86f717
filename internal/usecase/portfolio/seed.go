package portfolio

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alphacore/alphacore-backend/internal/domain"
)

// Fixed UUIDs for the seeded positions so repeated seeding of an empty store
// produces the identical default set
var (
	SeedCashID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	SeedAAPLID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	SeedTSLAID = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	SeedNVDAID = uuid.MustParse("00000000-0000-0000-0000-000000000004")
)

// DefaultCash is the initial simulated cash balance
var DefaultCash = decimal.NewFromInt(100000)

// DefaultAllocation returns the seed position set written on first access to
// an empty ledger: the simulated cash balance plus a handful of sample
// holdings
func DefaultAllocation() domain.PositionSet {
	one := decimal.NewFromInt(1)

	return domain.PositionSet{
		{
			ID:          SeedCashID,
			Symbol:      "USD",
			Name:        "Cash Balance",
			Quantity:    DefaultCash,
			AverageCost: one,
			Kind:        domain.AssetKindCash,
		},
		{
			ID:          SeedAAPLID,
			Symbol:      "AAPL",
			Name:        "Apple Inc.",
			Quantity:    decimal.NewFromInt(100),
			AverageCost: decimal.NewFromFloat(145.5),
			Kind:        domain.AssetKindStock,
		},
		{
			ID:          SeedTSLAID,
			Symbol:      "TSLA",
			Name:        "Tesla Inc.",
			Quantity:    decimal.NewFromInt(20),
			AverageCost: decimal.NewFromFloat(210.0),
			Kind:        domain.AssetKindStock,
		},
		{
			ID:          SeedNVDAID,
			Symbol:      "NVDA",
			Name:        "NVIDIA Corp",
			Quantity:    decimal.NewFromInt(10),
			AverageCost: decimal.NewFromFloat(450.0),
			Kind:        domain.AssetKindStock,
		},
	}
}
