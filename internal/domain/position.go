package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetKind represents the kind of instrument a position holds
type AssetKind string

const (
	AssetKindCash   AssetKind = "CASH"
	AssetKindStock  AssetKind = "STOCK"
	AssetKindCrypto AssetKind = "CRYPTO"
	AssetKindOther  AssetKind = "OTHER"
)

// ValidKind reports whether k is one of the closed set of asset kinds
func ValidKind(k AssetKind) bool {
	switch k {
	case AssetKindCash, AssetKindStock, AssetKindCrypto, AssetKindOther:
		return true
	}
	return false
}

// Position represents a holding of one instrument in the domain layer.
// For CASH positions Quantity is the cash balance and AverageCost is always 1.
type Position struct {
	ID          uuid.UUID       `json:"id"`
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"averageCost"`
	Kind        AssetKind       `json:"kind"`
}

// Validate ensures the position adheres to domain rules
// Returns an error if validation fails
func (p *Position) Validate() error {
	if strings.TrimSpace(p.Symbol) == "" {
		return errors.New("position symbol cannot be empty")
	}

	if !ValidKind(p.Kind) {
		return errors.New("position kind must be CASH, STOCK, CRYPTO or OTHER")
	}

	if p.Quantity.IsNegative() {
		return errors.New("position quantity cannot be negative")
	}

	if p.AverageCost.IsNegative() {
		return errors.New("position average cost cannot be negative")
	}

	// Cash is always priced at 1 per unit
	if p.Kind == AssetKindCash && !p.AverageCost.Equal(decimal.NewFromInt(1)) {
		return errors.New("cash position average cost must be 1")
	}

	return nil
}

// MarketValue returns the value of the position at the given unit price.
// Cash ignores the supplied price and is always valued at 1 per unit.
func (p *Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	if p.Kind == AssetKindCash {
		return p.Quantity
	}
	return p.Quantity.Mul(price)
}

// BookValue returns quantity * averageCost
func (p *Position) BookValue() decimal.Decimal {
	if p.Kind == AssetKindCash {
		return p.Quantity
	}
	return p.Quantity.Mul(p.AverageCost)
}

// PositionSet is the complete collection of positions at a point in time.
// Operations on a set never mutate it in place; callers receive fresh copies.
type PositionSet []Position

// Clone returns a deep copy of the set so callers can never alias the
// snapshot held by the engine or the store
func (ps PositionSet) Clone() PositionSet {
	if ps == nil {
		return nil
	}
	out := make(PositionSet, len(ps))
	copy(out, ps)
	return out
}

// IndexCash returns the index of the cash position, or -1 if absent
func (ps PositionSet) IndexCash() int {
	for i := range ps {
		if ps[i].Kind == AssetKindCash {
			return i
		}
	}
	return -1
}

// IndexHolding returns the index of the non-cash position with the given
// symbol, or -1 if absent
func (ps PositionSet) IndexHolding(symbol string) int {
	for i := range ps {
		if ps[i].Kind != AssetKindCash && ps[i].Symbol == symbol {
			return i
		}
	}
	return -1
}

// CashBalance returns the quantity of the cash position, or zero if absent
func (ps PositionSet) CashBalance() decimal.Decimal {
	if i := ps.IndexCash(); i >= 0 {
		return ps[i].Quantity
	}
	return decimal.Zero
}

// Validate ensures every position is valid and that the (symbol, kind) pair
// is unique across the set: at most one CASH position and at most one
// non-cash position per symbol
func (ps PositionSet) Validate() error {
	cashSeen := false
	symbols := make(map[string]struct{}, len(ps))

	for i := range ps {
		if err := ps[i].Validate(); err != nil {
			return err
		}

		if ps[i].Kind == AssetKindCash {
			if cashSeen {
				return errors.New("position set cannot contain more than one cash position")
			}
			cashSeen = true
			continue
		}

		if _, dup := symbols[ps[i].Symbol]; dup {
			return errors.New("position set cannot contain duplicate symbol " + ps[i].Symbol)
		}
		symbols[ps[i].Symbol] = struct{}{}
	}

	return nil
}
