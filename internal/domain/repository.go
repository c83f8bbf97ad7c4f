package domain

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account persistence operations.
// The transaction ledger is append-only: implementations may add events
// but never rewrite past ones.
type AccountRepository interface {
	// GetByUserID retrieves the account for a user.
	// Returns ErrAccountNotFound when no account exists.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Account, error)

	// ListPublic retrieves all accounts whose profile is public.
	ListPublic(ctx context.Context) ([]*Account, error)

	// ApplyEvent atomically replaces the account's balance and holdings
	// with the snapshot's and appends the event to the ledger.
	ApplyEvent(ctx context.Context, userID uuid.UUID, snapshot AccountSnapshot, tx Transaction) error
}

// QuoteSource defines the interface to the external market data
// provider. Implementations may be rate-limited or transiently
// unavailable; callers bound each call with a context timeout.
type QuoteSource interface {
	// Quote fetches the current and previous-close price for a symbol.
	Quote(ctx context.Context, symbol string) (Quote, error)

	// Search returns symbols matching a text fragment, at most 7.
	Search(ctx context.Context, fragment string) ([]SymbolMatch, error)
}
