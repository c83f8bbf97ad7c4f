package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartinvest/backend/internal/domain"
	"github.com/smartinvest/backend/internal/usecase/valuation"
)

// dustValueThreshold is the market value below which a holding is
// auto-liquidated back into cash. Sub-dollar positions are leftovers of
// cash-to-share quantity resolution and only clutter the portfolio.
var dustValueThreshold = decimal.NewFromInt(1)

// Profile is a user's account with its live valuation attached.
type Profile struct {
	UserID    uuid.UUID
	Name      string
	IsPublic  bool
	Valuation domain.ValuationResult
}

// Service assembles profile views: it resolves live quotes for the
// user's holdings, sweeps dust positions, and computes the valuation.
type Service struct {
	AccountRepo  domain.AccountRepository
	Source       domain.QuoteSource
	QuoteTimeout time.Duration
}

// NewService creates a new profile Service instance.
func NewService(accountRepo domain.AccountRepository, source domain.QuoteSource) *Service {
	return &Service{
		AccountRepo:  accountRepo,
		Source:       source,
		QuoteTimeout: 5 * time.Second,
	}
}

// GetProfile returns the caller's own profile with live valuation.
//
// Before valuing, holdings currently worth under one dollar are swept:
// their market value is credited to the cash balance and a single
// Liquidation event records the cleanup. The sweep is persisted, so the
// returned profile reflects the cleaned account.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	account, err := s.AccountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	quotes := s.resolveQuotes(ctx, account.Snapshot.Holdings)

	account, err = s.sweepDust(ctx, account, quotes)
	if err != nil {
		return nil, err
	}

	return &Profile{
		UserID:    account.UserID,
		Name:      account.Name,
		IsPublic:  account.IsPublic,
		Valuation: valuation.Compute(account.Snapshot, quotes),
	}, nil
}

// GetPublicProfile returns another user's profile, valued the same way
// but without the dust sweep (only the owner's own view mutates the
// account).
func (s *Service) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	account, err := s.AccountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !account.IsPublic {
		return nil, domain.ErrAccountNotFound
	}

	quotes := s.resolveQuotes(ctx, account.Snapshot.Holdings)

	return &Profile{
		UserID:    account.UserID,
		Name:      account.Name,
		IsPublic:  true,
		Valuation: valuation.Compute(account.Snapshot, quotes),
	}, nil
}

// resolveQuotes fetches one quote per held symbol. Failures become
// per-symbol error markers; the valuation engine degrades those line
// items to their average price.
func (s *Service) resolveQuotes(ctx context.Context, holdings []domain.Holding) map[string]domain.Quote {
	quotes := make(map[string]domain.Quote, len(holdings))
	for _, holding := range holdings {
		fetchCtx, cancel := context.WithTimeout(ctx, s.QuoteTimeout)
		quote, err := s.Source.Quote(fetchCtx, holding.Symbol)
		cancel()
		if err != nil {
			quotes[holding.Symbol] = domain.Quote{
				Symbol: holding.Symbol,
				Err:    fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err),
			}
			continue
		}
		quotes[holding.Symbol] = quote
	}
	return quotes
}

// sweepDust liquidates holdings whose current market value is below the
// dust threshold and persists the cleaned snapshot.
func (s *Service) sweepDust(ctx context.Context, account *domain.Account, quotes map[string]domain.Quote) (*domain.Account, error) {
	var (
		kept      []domain.Holding
		dustValue decimal.Decimal
		dustSyms  []string
	)

	for _, holding := range account.Snapshot.Holdings {
		price := holding.AvgPrice
		if quote, ok := quotes[holding.Symbol]; ok && !quote.Unavailable() {
			price = quote.CurrentPrice
		}
		value := holding.Quantity.Mul(price)
		if value.LessThan(dustValueThreshold) {
			dustValue = dustValue.Add(value)
			dustSyms = append(dustSyms, holding.Symbol)
			continue
		}
		kept = append(kept, holding)
	}

	if len(dustSyms) == 0 {
		return account, nil
	}

	snapshot := account.Snapshot
	snapshot.Holdings = kept
	snapshot.Balance = snapshot.Balance.Add(dustValue)

	event := domain.Liquidation{
		Amount:      dustValue,
		Date:        time.Now().UTC(),
		Description: "Auto-liquidation of small holdings: " + strings.Join(dustSyms, ", "),
	}
	if err := s.AccountRepo.ApplyEvent(ctx, account.UserID, snapshot, event); err != nil {
		return nil, fmt.Errorf("failed to liquidate dust holdings: %w", err)
	}

	snapshot.Transactions = append(snapshot.Transactions, event)
	account.Snapshot = snapshot
	return account, nil
}
