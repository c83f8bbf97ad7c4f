package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies the kind of ledger event.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypeBuy         TransactionType = "buy"
	TransactionTypeSell        TransactionType = "sell"
	TransactionTypeLiquidation TransactionType = "liquidation"
)

// Transaction is a single immutable event in an account's ledger.
// It is a closed set of variants (Deposit, Withdrawal, Buy, Sell,
// Liquidation), each carrying only the fields that make sense for it:
// a buy always has a symbol and a price, a deposit never does.
// The ledger itself is owned by the account store; this core only
// reads an ordered sequence of these events.
type Transaction interface {
	Type() TransactionType
	Timestamp() time.Time
}

// Deposit represents external cash added to the account.
type Deposit struct {
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// Withdrawal represents external cash removed from the account.
type Withdrawal struct {
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// Buy represents shares purchased for cash.
type Buy struct {
	Symbol     string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Commission decimal.Decimal
	Date       time.Time
}

// Sell represents shares sold for cash.
type Sell struct {
	Symbol     string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Commission decimal.Decimal
	Date       time.Time
}

// Liquidation represents a position converted to cash outside a normal
// sell order (e.g., automatic cleanup of sub-dollar holdings). Like a
// deposit, it counts toward net contributions.
type Liquidation struct {
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

func (d Deposit) Type() TransactionType     { return TransactionTypeDeposit }
func (w Withdrawal) Type() TransactionType  { return TransactionTypeWithdrawal }
func (b Buy) Type() TransactionType         { return TransactionTypeBuy }
func (s Sell) Type() TransactionType        { return TransactionTypeSell }
func (l Liquidation) Type() TransactionType { return TransactionTypeLiquidation }

func (d Deposit) Timestamp() time.Time     { return d.Date }
func (w Withdrawal) Timestamp() time.Time  { return w.Date }
func (b Buy) Timestamp() time.Time         { return b.Date }
func (s Sell) Timestamp() time.Time        { return s.Date }
func (l Liquidation) Timestamp() time.Time { return l.Date }
