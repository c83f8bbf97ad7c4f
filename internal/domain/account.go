package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountSnapshot is the read-only input to the valuation engine: the
// cash balance, the current holdings, and the ordered ledger of events
// that produced them.
type AccountSnapshot struct {
	Balance      decimal.Decimal
	Holdings     []Holding
	Transactions []Transaction
}

// Account is a user's brokerage account as supplied by the account
// store. The embedded snapshot is what the valuation engine consumes.
type Account struct {
	UserID   uuid.UUID
	Name     string
	IsPublic bool
	Snapshot AccountSnapshot
}

// Position is a holding annotated with live market data.
type Position struct {
	Holding
	CurrentPrice decimal.Decimal
	CurrentValue decimal.Decimal
	UnrealizedPL decimal.Decimal
}

// ValuationResult is the derived financial state of one account at one
// instant. It is recomputed on every request and never persisted.
//
/// The fields are bound by accounting identities:
//
//	TotalEquity   = Balance + TotalPortfolioValue
//	OverallPL     = TotalEquity - NetContributions
//	UnrealizedPL  = TotalPortfolioValue - InvestedAmount
//	RealizedPL    = OverallPL - UnrealizedPL
type ValuationResult struct {
	Balance             decimal.Decimal
	TotalPortfolioValue decimal.Decimal
	InvestedAmount      decimal.Decimal
	TotalEquity         decimal.Decimal
	NetContributions    decimal.Decimal
	TotalCommissions    decimal.Decimal
	UnrealizedPL        decimal.Decimal
	RealizedPL          decimal.Decimal
	OverallPL           decimal.Decimal
	OverallPLPercentage decimal.Decimal
	Positions           []Position
}
