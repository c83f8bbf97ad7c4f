package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Holding represents the current aggregated position in one instrument.
// Quantity and cost basis are maintained by the trade execution path and
// supplied to the valuation engine as-is; the engine never recomputes
// them from the raw ledger.
type Holding struct {
	Symbol    string
	Quantity  decimal.Decimal
	AvgPrice  decimal.Decimal // cost basis per unit
	TotalCost decimal.Decimal // cumulative cash paid for the held quantity
}

// Validate ensures the holding adheres to domain rules.
func (h *Holding) Validate() error {
	if h.Symbol == "" {
		return errors.New("holding symbol cannot be empty")
	}
	if h.Quantity.LessThanOrEqual(decimal.Zero) {
		return errors.New("holding quantity must be positive")
	}
	if h.AvgPrice.IsNegative() {
		return errors.New("holding average price cannot be negative")
	}
	return nil
}
