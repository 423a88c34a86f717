package accounting

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alphacore/alphacore-backend/internal/domain"
)

// ApplyOrder applies a validated order to a position snapshot and returns the
// resulting snapshot. The input set is never mutated; the result is a fresh
// copy (copy-on-write). No I/O happens here, which keeps every trade a pure
// function of (order, snapshot).
//
// Logic, BUY:
//  1. Locate the CASH position; its absence fails with ErrMissingCashAccount
//  2. Reject when cash < price * quantity (ErrInsufficientFunds) before any change
//  3. Decrement cash by the total cost
//  4. If the symbol is already held, recompute the volume-weighted average cost:
//     newAvg = (oldAvg*oldQty + totalCost) / (oldQty + qty)
//  5. Otherwise append a new position with averageCost = price
//
// Logic, SELL:
//  1. Locate the holding; absence or quantity < order quantity fails with
//     ErrInsufficientHoldings
//  2. Increment cash by price * quantity
//  3. Decrement the holding; a holding that reaches exactly zero is removed
//     from the set. Average cost is never changed by a sell.
func ApplyOrder(positions domain.PositionSet, order domain.Order) (domain.PositionSet, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	next := positions.Clone()
	total := order.Total()

	cashIdx := next.IndexCash()
	if cashIdx < 0 {
		return nil, fmt.Errorf("%w: no CASH position in snapshot", domain.ErrMissingCashAccount)
	}

	if order.Type == domain.OrderTypeBuy {
		return applyBuy(next, order, total, cashIdx)
	}
	return applySell(next, order, total, cashIdx)
}

func applyBuy(next domain.PositionSet, order domain.Order, total decimal.Decimal, cashIdx int) (domain.PositionSet, error) {
	if next[cashIdx].Quantity.LessThan(total) {
		return nil, fmt.Errorf("%w: need %s, have %s",
			domain.ErrInsufficientFunds, total, next[cashIdx].Quantity)
	}

	next[cashIdx].Quantity = next[cashIdx].Quantity.Sub(total)

	if idx := next.IndexHolding(order.Symbol); idx >= 0 {
		held := next[idx]
		newQty := held.Quantity.Add(order.Quantity)
		// Running volume-weighted mean over all historical buys
		newAvg := held.AverageCost.Mul(held.Quantity).Add(total).Div(newQty)
		next[idx].Quantity = newQty
		next[idx].AverageCost = newAvg
		return next, nil
	}

	kind := order.Kind
	if kind == "" {
		kind = domain.AssetKindStock
	}

	next = append(next, domain.Position{
		ID:          uuid.New(),
		Symbol:      order.Symbol,
		Name:        order.Symbol,
		Quantity:    order.Quantity,
		AverageCost: order.Price,
		Kind:        kind,
	})

	return next, nil
}

func applySell(next domain.PositionSet, order domain.Order, total decimal.Decimal, cashIdx int) (domain.PositionSet, error) {
	idx := next.IndexHolding(order.Symbol)
	if idx < 0 {
		return nil, fmt.Errorf("%w: no position in %s", domain.ErrInsufficientHoldings, order.Symbol)
	}

	if next[idx].Quantity.LessThan(order.Quantity) {
		return nil, fmt.Errorf("%w: selling %s, holding %s of %s",
			domain.ErrInsufficientHoldings, order.Quantity, next[idx].Quantity, order.Symbol)
	}

	next[cashIdx].Quantity = next[cashIdx].Quantity.Add(total)

	remaining := next[idx].Quantity.Sub(order.Quantity)
	if remaining.IsZero() {
		// A position sold down to zero leaves the set entirely
		next = append(next[:idx], next[idx+1:]...)
		return next, nil
	}

	// Average cost is left untouched on partial sells; realized gain/loss is
	// a call-site computation, not engine state
	next[idx].Quantity = remaining

	return next, nil
}

// MergePosition adds a position obtained outside the buy/sell flow (manual
// import) to a snapshot. To keep the one-position-per-(symbol, kind) rule, an
// already-held symbol is merged using the same weighted-average-cost rule a
// BUY uses instead of creating a duplicate row. Cash merges by adding
// balances. The input set is never mutated.
func MergePosition(positions domain.PositionSet, pos domain.Position) (domain.PositionSet, error) {
	pos.ID = uuid.New()
	if pos.Name == "" {
		pos.Name = pos.Symbol
	}
	if pos.Kind == domain.AssetKindCash {
		pos.AverageCost = decimal.NewFromInt(1)
	}

	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidOrderInput, err)
	}

	next := positions.Clone()

	if pos.Kind == domain.AssetKindCash {
		if idx := next.IndexCash(); idx >= 0 {
			next[idx].Quantity = next[idx].Quantity.Add(pos.Quantity)
			return next, nil
		}
		next = append(next, pos)
		return next, nil
	}

	if idx := next.IndexHolding(pos.Symbol); idx >= 0 {
		held := next[idx]
		newQty := held.Quantity.Add(pos.Quantity)
		if newQty.IsPositive() {
			next[idx].AverageCost = held.AverageCost.Mul(held.Quantity).
				Add(pos.AverageCost.Mul(pos.Quantity)).Div(newQty)
		}
		next[idx].Quantity = newQty
		return next, nil
	}

	next = append(next, pos)
	return next, nil
}
