package trade

import (
	"github.com/shopspring/decimal"
	"github.com/smartinvest/backend/internal/domain"
)

// Side represents the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ResolveQuantity converts a user-entered cash amount into the share
// quantity to execute.
//
// The buy/sell asymmetry is deliberate and must not be "fixed":
//   - Buy: the commission is paid out of the cash amount, so only the
//     remainder buys shares: quantity = (amount - commission) / price.
//   - Sell: the cash amount is the net the user wants to receive, so
//     gross proceeds must cover the commission on top:
//     quantity = (amount + commission) / price.
//
// The result is not rounded; lot-size and display rounding belong to
// the caller. Invalid inputs are rejected with InvalidTradeInputError
// before anything else happens, never defaulted to a "safe" quantity.
func ResolveQuantity(side Side, cashAmount, unitPrice, commission decimal.Decimal) (decimal.Decimal, error) {
	if cashAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.NewInvalidTradeInput("amount must be positive")
	}
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.NewInvalidTradeInput("price must be positive")
	}
	if commission.IsNegative() {
		return decimal.Zero, domain.NewInvalidTradeInput("commission cannot be negative")
	}

	var cashForShares decimal.Decimal
	switch side {
	case SideBuy:
		cashForShares = cashAmount.Sub(commission)
		if cashForShares.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, domain.NewInvalidTradeInput("amount must exceed commission")
		}
	case SideSell:
		cashForShares = cashAmount.Add(commission)
	default:
		return decimal.Zero, domain.NewInvalidTradeInput("side must be buy or sell")
	}

	quantity := cashForShares.Div(unitPrice)
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.NewInvalidTradeInput("resulting quantity is not positive")
	}

	return quantity, nil
}
