package quotes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/smartinvest/backend/internal/domain"
)

const (
	// DefaultTTL is the quote freshness window.
	DefaultTTL = 5 * time.Minute

	defaultFetchTimeout = 5 * time.Second
	defaultConcurrency  = 8
)

// Cache wraps a QuoteSource for callers that scan a whole symbol
// universe at once (leaderboard, hot list). It holds one snapshot per
// logical purpose key and serves stale data on upstream outage instead
// of propagating the failure.
//
// The cache is an explicit object owned by the wiring in main, not
// ambient state: construct it once and pass it to whatever needs it.
type Cache struct {
	source       domain.QuoteSource
	ttl          time.Duration
	fetchTimeout time.Duration
	concurrency  int

	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]domain.QuoteSet
}

// NewCache creates a new Cache instance around the given source.
// A non-positive ttl falls back to DefaultTTL.
func NewCache(source domain.QuoteSource, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		source:       source,
		ttl:          ttl,
		fetchTimeout: defaultFetchTimeout,
		concurrency:  defaultConcurrency,
		entries:      make(map[string]domain.QuoteSet),
	}
}

// GetQuotes returns a quote for every requested symbol under the given
// purpose key.
//
// A fresh cache entry is served without contacting the source. Past the
// freshness window the whole batch is refetched, one concurrent fetch
// per symbol; individual failures become per-symbol error markers and
// never abort the batch. When the entire refresh fails and a previous
// payload exists, that payload is returned with Stale=true. Concurrent
// callers of the same key share a single in-flight refresh.
func (c *Cache) GetQuotes(ctx context.Context, key string, symbols []string) (domain.QuoteSet, error) {
	if set, ok := c.fresh(key); ok {
		return set, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A caller that was queued behind the previous flight may find
		// the entry fresh by the time it gets here.
		if set, ok := c.fresh(key); ok {
			return set, nil
		}
		return c.refresh(ctx, key, symbols)
	})
	if err != nil {
		return domain.QuoteSet{}, err
	}
	return v.(domain.QuoteSet), nil
}

// fresh returns the cached payload for key when it is inside the
// freshness window.
func (c *Cache) fresh(key string) (domain.QuoteSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	set, ok := c.entries[key]
	if !ok || time.Since(set.FetchedAt) >= c.ttl {
		return domain.QuoteSet{}, false
	}
	return set, true
}

// refresh fan-outs one fetch per symbol and assembles the new payload.
func (c *Cache) refresh(ctx context.Context, key string, symbols []string) (domain.QuoteSet, error) {
	results := make([]domain.Quote, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, c.fetchTimeout)
			defer cancel()

			quote, err := c.source.Quote(fetchCtx, symbol)
			if err != nil {
				// A slow fetch that hits the timeout lands here too: it
				// is a per-symbol failure, not a fatal one.
				results[i] = domain.Quote{
					Symbol: symbol,
					Err:    fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err),
				}
				return nil
			}
			results[i] = quote
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.QuoteSet{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.QuoteSet{}, err
	}

	failed := 0
	payload := make(map[string]domain.Quote, len(results))
	for _, quote := range results {
		payload[quote.Symbol] = quote
		if quote.Unavailable() {
			failed++
		}
	}

	if len(symbols) > 0 && failed == len(symbols) {
		// Upstream outage. Serve the previous payload when there is
		// one; its old FetchedAt keeps it expired, so the next caller
		// retries the refresh.
		c.mu.RLock()
		prev, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			prev.Stale = true
			return prev, nil
		}
		return domain.QuoteSet{Quotes: payload, FetchedAt: time.Now()}, nil
	}

	set := domain.QuoteSet{Quotes: payload, FetchedAt: time.Now()}
	c.mu.Lock()
	c.entries[key] = set
	c.mu.Unlock()
	return set, nil
}
