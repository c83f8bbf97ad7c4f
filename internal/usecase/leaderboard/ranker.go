package leaderboard

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/smartinvest/backend/internal/domain"
	"github.com/smartinvest/backend/internal/usecase/valuation"
)

// Timeframe selects how much of the ledger contributes to the ranking.
type Timeframe string

const (
	Timeframe24H Timeframe = "24h"
	Timeframe1M  Timeframe = "1m"
	TimeframeAll Timeframe = "all"
)

// SortKey selects the metric the ranking is ordered by.
type SortKey string

const (
	SortByOverallPL           SortKey = "overall_pl"
	SortByOverallPLPercentage SortKey = "overall_pl_percentage"
)

// Entry is one ranked user with their freshly computed valuation.
type Entry struct {
	UserID    string
	Name      string
	Valuation domain.ValuationResult
}

// Rank values every account against live quotes and produces a total
// order on the chosen sort key, descending.
//
// Whatever order the accounts arrive in is discarded: it was computed
// before live prices were applied and is necessarily stale. Each
// account is valued independently (and in parallel), then sorted in one
// single-threaded pass. Ties break by UserID ascending so the output is
// deterministic.
//
// The timeframe filters the transaction sequence only. Holdings and
// quotes always reflect current state; historical position sizes are
// not reconstructed for past windows.
func Rank(ctx context.Context, accounts []*domain.Account, quotes domain.QuoteSet, timeframe Timeframe, sortKey SortKey, now time.Time) ([]Entry, error) {
	entries := make([]Entry, len(accounts))

	g, _ := errgroup.WithContext(ctx)
	for i, account := range accounts {
		i, account := i, account
		g.Go(func() error {
			snapshot := account.Snapshot
			snapshot.Transactions = filterByTimeframe(snapshot.Transactions, timeframe, now)

			resolved := make(map[string]domain.Quote, len(snapshot.Holdings))
			for _, holding := range snapshot.Holdings {
				resolved[holding.Symbol] = quotes.Resolve(holding.Symbol)
			}

			entries[i] = Entry{
				UserID:    account.UserID.String(),
				Name:      account.Name,
				Valuation: valuation.Compute(snapshot, resolved),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := metric(entries[i], sortKey), metric(entries[j], sortKey)
		if a.Equal(b) {
			return entries[i].UserID < entries[j].UserID
		}
		return a.GreaterThan(b)
	})

	return entries, nil
}

// Symbols returns the distinct symbols held across all accounts, in
// first-seen order. This is the quote universe a ranking needs.
func Symbols(accounts []*domain.Account) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, account := range accounts {
		for _, holding := range account.Snapshot.Holdings {
			if !seen[holding.Symbol] {
				seen[holding.Symbol] = true
				symbols = append(symbols, holding.Symbol)
			}
		}
	}
	return symbols
}

func metric(e Entry, key SortKey) decimal.Decimal {
	if key == SortByOverallPLPercentage {
		return e.Valuation.OverallPLPercentage
	}
	return e.Valuation.OverallPL
}

func filterByTimeframe(transactions []domain.Transaction, timeframe Timeframe, now time.Time) []domain.Transaction {
	var cutoff time.Time
	switch timeframe {
	case Timeframe24H:
		cutoff = now.Add(-24 * time.Hour)
	case Timeframe1M:
		cutoff = now.AddDate(0, 0, -30)
	default:
		return transactions
	}

	filtered := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if !tx.Timestamp().Before(cutoff) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}
