package movers

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/smartinvest/backend/internal/domain"
)

// cacheKey is the quote cache purpose key for the hot list universe.
const cacheKey = "movers"

// topCount is how many gainers the hot list shows.
const topCount = 6

// DefaultUniverse is the fixed set of liquid, well-known symbols the
// hot list is built from.
var DefaultUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "TSLA", "META", "ADBE", "CRM", "INTC",
	"JPM", "BAC", "WFC", "GS", "MS", "V", "MA",
	"JNJ", "UNH", "PFE", "MRK", "ABBV",
	"HD", "MCD", "NKE", "SBUX", "WMT", "COST",
	"BA", "CAT", "XOM", "CVX", "DIS",
}

// Mover is one entry in the hot list.
type Mover struct {
	Symbol             string
	CurrentPrice       decimal.Decimal
	DailyChangePercent decimal.Decimal
}

// QuoteCache is the slice of the quote cache the hot list needs.
type QuoteCache interface {
	GetQuotes(ctx context.Context, key string, symbols []string) (domain.QuoteSet, error)
}

// Service builds the "top gainers" hot list by scanning a fixed symbol
// universe through the quote cache.
type Service struct {
	Cache    QuoteCache
	Universe []string
}

// NewService creates a new movers Service instance over the default universe.
func NewService(cache QuoteCache) *Service {
	return &Service{Cache: cache, Universe: DefaultUniverse}
}

// TopGainers returns the best daily performers of the universe,
// descending by daily change, at most six. Symbols with an unavailable
// quote or a zero previous close are skipped. The stale flag mirrors
// the cache payload so callers can show a staleness indicator.
func (s *Service) TopGainers(ctx context.Context) ([]Mover, bool, error) {
	set, err := s.Cache.GetQuotes(ctx, cacheKey, s.Universe)
	if err != nil {
		return nil, false, err
	}

	gainers := make([]Mover, 0, len(s.Universe))
	for _, symbol := range s.Universe {
		quote := set.Resolve(symbol)
		change, ok := quote.DailyChangePercent()
		if !ok {
			continue
		}
		gainers = append(gainers, Mover{
			Symbol:             symbol,
			CurrentPrice:       quote.CurrentPrice,
			DailyChangePercent: change,
		})
	}

	sort.SliceStable(gainers, func(i, j int) bool {
		return gainers[i].DailyChangePercent.GreaterThan(gainers[j].DailyChangePercent)
	})

	if len(gainers) > topCount {
		gainers = gainers[:topCount]
	}
	return gainers, set.Stale, nil
}
