package valuation

import (
	"github.com/shopspring/decimal"
	"github.com/smartinvest/backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Compute derives the full financial state of an account from its
// snapshot and a set of already-resolved quotes. It is a pure function:
// no I/O, no side effects, identical inputs yield identical output.
//
// Logic:
//  1. Walk the holdings once, accumulating portfolio value and invested
//     amount side by side. Each holding is priced at its live quote; an
//     unavailable or missing quote degrades to the holding's average
//     price so one dead symbol never sinks the whole valuation.
//  2. Walk the ledger once for the cash aggregates: deposits and
//     liquidations add to net contributions, withdrawals subtract, and
//     buy/sell commissions are summed.
//  3. Close the books on the accounting identities:
//     equity = balance + portfolio value,
//     overall P/L = equity - contributions,
//     unrealized P/L = portfolio value - invested,
//     realized P/L = overall - unrealized (derived, never measured).
//
// Empty holdings or an empty ledger are valid inputs and produce zeroed
// metrics, not an error.
func Compute(snapshot domain.AccountSnapshot, quotes map[string]domain.Quote) domain.ValuationResult {
	var portfolioValue, investedAmount decimal.Decimal

	positions := make([]domain.Position, 0, len(snapshot.Holdings))
	for _, holding := range snapshot.Holdings {
		price := holding.AvgPrice
		if quote, ok := quotes[holding.Symbol]; ok && !quote.Unavailable() {
			price = quote.CurrentPrice
		}

		currentValue := holding.Quantity.Mul(price)
		portfolioValue = portfolioValue.Add(currentValue)
		investedAmount = investedAmount.Add(holding.TotalCost)

		positions = append(positions, domain.Position{
			Holding:      holding,
			CurrentPrice: price,
			CurrentValue: currentValue,
			UnrealizedPL: currentValue.Sub(holding.TotalCost),
		})
	}

	var netContributions, totalCommissions decimal.Decimal
	for _, tx := range snapshot.Transactions {
		switch event := tx.(type) {
		case domain.Deposit:
			netContributions = netContributions.Add(event.Amount)
		case domain.Liquidation:
			netContributions = netContributions.Add(event.Amount)
		case domain.Withdrawal:
			netContributions = netContributions.Sub(event.Amount)
		case domain.Buy:
			totalCommissions = totalCommissions.Add(event.Commission)
		case domain.Sell:
			totalCommissions = totalCommissions.Add(event.Commission)
		}
	}

	totalEquity := snapshot.Balance.Add(portfolioValue)
	overallPL := totalEquity.Sub(netContributions)
	unrealizedPL := portfolioValue.Sub(investedAmount)
	realizedPL := overallPL.Sub(unrealizedPL)

	// Guard the division: a brand new account has no contributions and
	// must report 0%, not NaN.
	overallPLPercentage := decimal.Zero
	if netContributions.IsPositive() {
		overallPLPercentage = overallPL.Div(netContributions).Mul(hundred)
	}

	return domain.ValuationResult{
		Balance:             snapshot.Balance,
		TotalPortfolioValue: portfolioValue,
		InvestedAmount:      investedAmount,
		TotalEquity:         totalEquity,
		NetContributions:    netContributions,
		TotalCommissions:    totalCommissions,
		UnrealizedPL:        unrealizedPL,
		RealizedPL:          realizedPL,
		OverallPL:           overallPL,
		OverallPLPercentage: overallPLPercentage,
		Positions:           positions,
	}
}
