package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/smartinvest/backend/internal/domain"
)

// cacheKey is the quote cache purpose key for the leaderboard universe.
const cacheKey = "leaderboard"

// QuoteCache is the slice of the quote cache the leaderboard needs.
type QuoteCache interface {
	GetQuotes(ctx context.Context, key string, symbols []string) (domain.QuoteSet, error)
}

// Service produces the ranked top-users view from public accounts and
// cached quotes.
type Service struct {
	AccountRepo domain.AccountRepository
	Cache       QuoteCache
}

// NewService creates a new leaderboard Service instance.
func NewService(accountRepo domain.AccountRepository, cache QuoteCache) *Service {
	return &Service{AccountRepo: accountRepo, Cache: cache}
}

// TopUsers ranks all public accounts and returns the first limit
// entries. The stale flag mirrors the quote payload so callers can
// render a staleness indicator instead of an error page.
func (s *Service) TopUsers(ctx context.Context, timeframe Timeframe, sortKey SortKey, limit int) ([]Entry, bool, error) {
	accounts, err := s.AccountRepo.ListPublic(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list public accounts: %w", err)
	}

	quotes, err := s.Cache.GetQuotes(ctx, cacheKey, Symbols(accounts))
	if err != nil {
		return nil, false, err
	}

	entries, err := Rank(ctx, accounts, quotes, timeframe, sortKey, time.Now())
	if err != nil {
		return nil, false, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, quotes.Stale, nil
}
